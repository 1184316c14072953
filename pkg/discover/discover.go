package discover

import (
	"github.com/mvanbem/decompiler/pkg/fact"
	"github.com/mvanbem/decompiler/pkg/ppc"
)

// WordReader is the flat executable-image interface the discovery pass
// (and everything downstream of it) consumes: a big-endian 32-bit word at
// a load address.
type WordReader interface {
	Read(addr uint32) uint32
}

// Run performs the discovery pass from entry: a worklist-driven linear
// scanner that records parse-error, branch-target, subroutine,
// subroutine-call, and basic-block-end facts into db.
func Run(db *fact.Database, reader WordReader, entry fact.Address) {
	db.InsertOnce(entry, &fact.Subroutine{})

	ws := New[fact.Address]()
	ws.Insert(entry)
	for {
		start, ok := ws.Pop()
		if !ok {
			break
		}
		scan(db, reader, ws, start)
	}
}

func scan(db *fact.Database, reader WordReader, ws *WorkSet[fact.Address], start fact.Address) {
	addr := start
	for {
		if addr != start {
			if !ws.Close(addr) {
				return // already closed by a previous scan
			}
		}

		word := reader.Read(uint32(addr))
		instr, err := ppc.Decode(word, uint32(addr))
		if err != nil {
			db.InsertOnce(addr, &fact.ParseError{Err: err})
			return
		}

		if branch, ok := instr.(ppc.Branch); ok {
			info := branch.BranchInfo()
			switch {
			case info.Target != nil:
				target := fact.Address(*info.Target)
				db.BranchTargetAt(target).RecordSource(addr)
				ws.Insert(target)
				if info.Link {
					db.InsertOnce(addr, &fact.SubroutineCall{Target: target})
					db.InsertOnce(target, &fact.Subroutine{})
				} else {
					end := db.BasicBlockEndAt(addr)
					end.RecordSuccessor(target)
					if info.IsConditional() {
						end.RecordSuccessor(addr + 4)
					}
				}
			case !info.Link:
				db.InsertOnce(addr, &fact.BasicBlockEnd{})
			}
			if info.Diverges() {
				return
			}
		}

		addr += 4
	}
}
