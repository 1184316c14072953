// Package locale formats counts for diagnostic prose (instructions
// scanned, facts recorded, blocks built) with English thousands
// grouping.
package locale

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Count wraps an integer count for locale-aware formatting. Its String
// method groups digits the way %d would if asked to, e.g. "12,345".
type Count int

func (c Count) String() string {
	return printer.Sprintf("%d", int(c))
}

// Format renders n the same way Count.String does, for callers that
// would rather not wrap a local variable in the Count type.
func Format(n int) string {
	return printer.Sprintf("%d", n)
}

var _ fmt.Stringer = Count(0)
