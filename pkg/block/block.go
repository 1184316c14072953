// Package block materializes BasicBlock facts from the raw facts the
// discovery pass records.
package block

import (
	"sort"

	"github.com/mvanbem/decompiler/pkg/discover"
	"github.com/mvanbem/decompiler/pkg/fact"
)

// Build walks the CFG from entry, driven by a second work set of basic
// block start addresses, and materializes a BasicBlock fact for each one
// (end address and successors); it then performs a predecessor-fill
// sweep over every materialized block.
func Build(db *fact.Database, entry fact.Address) {
	ws := discover.New[fact.Address]()
	ws.Insert(entry)

	starts := []fact.Address{}
	for {
		start, ok := ws.Pop()
		if !ok {
			break
		}
		starts = append(starts, start)

		end, successors := scanBlock(db, start)
		db.InsertOnce(start, &fact.BasicBlock{
			End:        end,
			Successors: successors,
		})
		for _, s := range successors {
			ws.Insert(s)
		}
	}

	fillPredecessors(db, starts)
}

// scanBlock walks forward in steps of 4 from start until it finds a
// BasicBlockEnd fact (successors taken from that fact) or a BranchTarget
// fact at address+4 (fall-through, single successor address+4).
func scanBlock(db *fact.Database, start fact.Address) (end fact.Address, successors []fact.Address) {
	addr := start
	for {
		if f, ok := db.Get(addr, fact.KindBasicBlockEnd); ok {
			succ := append([]fact.Address(nil), f.(*fact.BasicBlockEnd).Successors...)
			sort.Slice(succ, func(i, j int) bool { return succ[i] < succ[j] })
			return addr + 4, succ
		}
		if _, ok := db.Get(addr+4, fact.KindBranchTarget); ok {
			return addr + 4, []fact.Address{addr + 4}
		}
		addr += 4
	}
}

func fillPredecessors(db *fact.Database, starts []fact.Address) {
	predecessors := make(map[fact.Address][]fact.Address)
	for _, a := range starts {
		f, ok := db.Get(a, fact.KindBasicBlock)
		if !ok {
			continue
		}
		for _, s := range f.(*fact.BasicBlock).Successors {
			predecessors[s] = append(predecessors[s], a)
		}
	}
	for _, a := range starts {
		f, ok := db.Get(a, fact.KindBasicBlock)
		if !ok {
			continue
		}
		bb := f.(*fact.BasicBlock)
		preds := append([]fact.Address(nil), predecessors[a]...)
		sort.Slice(preds, func(i, j int) bool { return preds[i] < preds[j] })
		bb.Predecessors = preds
	}
}
