// Package render turns an analyzed fact database into the two output
// forms spec.md §6 names: an annotated assembly listing and a Graphviz
// CFG.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mvanbem/decompiler/pkg/discover"
	"github.com/mvanbem/decompiler/pkg/fact"
	"github.com/mvanbem/decompiler/pkg/ppc"
)

// WriteListing writes one line per discovered instruction address,
// ascending, prefixed by `#[subroutine]` and/or
// `#[branch_target(sources=[...])]` annotations where those facts exist.
func WriteListing(w io.Writer, db *fact.Database, reader discover.WordReader) error {
	for _, addr := range instructionAddresses(db) {
		if _, ok := db.Get(addr, fact.KindSubroutine); ok {
			if _, err := fmt.Fprintln(w, "#[subroutine]"); err != nil {
				return err
			}
		}
		if f, ok := db.Get(addr, fact.KindBranchTarget); ok {
			bt := f.(*fact.BranchTarget)
			if _, err := fmt.Fprintf(w, "#[branch_target(sources=%s)]\n", formatAddresses(bt.Sources)); err != nil {
				return err
			}
		}

		if f, ok := db.Get(addr, fact.KindParseError); ok {
			if _, err := fmt.Fprintf(w, "%s  <parse error: %s>\n", addr, f.(*fact.ParseError).Err); err != nil {
				return err
			}
			continue
		}

		word := reader.Read(uint32(addr))
		instr, err := ppc.Decode(word, uint32(addr))
		if err != nil {
			if _, werr := fmt.Fprintf(w, "%s  <parse error: %s>\n", addr, err); werr != nil {
				return werr
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s  %s\n", addr, instr); err != nil {
			return err
		}
	}
	return nil
}

// WriteErrorsSection writes a dedicated "errors" section listing every
// distinct parse-error message recorded in db, sorted. It is a no-op
// (writes nothing) when db has no ParseError facts.
func WriteErrorsSection(w io.Writer, db *fact.Database) error {
	addrs := db.IterAddressesOfKind(fact.KindParseError)
	if len(addrs) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	for _, addr := range addrs {
		f, _ := db.Get(addr, fact.KindParseError)
		seen[f.(*fact.ParseError).Err.Error()] = struct{}{}
	}
	messages := make([]string, 0, len(seen))
	for msg := range seen {
		messages = append(messages, msg)
	}
	sort.Strings(messages)

	if _, err := fmt.Fprintln(w, "#[errors]"); err != nil {
		return err
	}
	for _, msg := range messages {
		if _, err := fmt.Fprintf(w, "  %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}

func formatAddresses(addrs []fact.Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// instructionAddresses returns every address this database has a decoded
// instruction at, ascending: every word spanned by a BasicBlock fact,
// plus every address a ParseError was recorded at.
func instructionAddresses(db *fact.Database) []fact.Address {
	seen := make(map[fact.Address]bool)
	for _, addr := range db.IterAddressesOfKind(fact.KindBasicBlock) {
		f, _ := db.Get(addr, fact.KindBasicBlock)
		bb := f.(*fact.BasicBlock)
		for a := addr; a < bb.End; a += 4 {
			seen[a] = true
		}
	}
	for _, addr := range db.IterAddressesOfKind(fact.KindParseError) {
		seen[addr] = true
	}

	out := make([]fact.Address, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
