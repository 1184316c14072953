package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mvanbem/decompiler/pkg/discover"
	"github.com/mvanbem/decompiler/pkg/fact"
	"github.com/mvanbem/decompiler/pkg/ppc"
)

// WriteDot writes a Graphviz description of the basic-block CFG: one box
// node per block, labeled with its address range and instruction
// listing, and one edge per successor.
func WriteDot(w io.Writer, db *fact.Database, reader discover.WordReader) error {
	if _, err := fmt.Fprintln(w, "digraph cfg {"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, `  node [shape=box, fontname="monospace"];`); err != nil {
		return err
	}

	for _, addr := range db.IterAddressesOfKind(fact.KindBasicBlock) {
		f, _ := db.Get(addr, fact.KindBasicBlock)
		bb := f.(*fact.BasicBlock)

		label := blockLabel(addr, bb, reader)
		if _, err := fmt.Fprintf(w, "  %q [label=%q];\n", addr.String(), label); err != nil {
			return err
		}
		for _, succ := range bb.Successors {
			if _, err := fmt.Fprintf(w, "  %q -> %q;\n", addr.String(), succ.String()); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

func blockLabel(start fact.Address, bb *fact.BasicBlock, reader discover.WordReader) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("%s..%s", start, bb.End))
	for a := start; a < bb.End; a += 4 {
		word := reader.Read(uint32(a))
		instr, err := ppc.Decode(word, uint32(a))
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s  <parse error>", a))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s  %s", a, instr))
	}
	return strings.Join(lines, "\n")
}
