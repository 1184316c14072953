// Package pipeline runs the three-pass expression pipeline over a fact
// database that discovery and block building have already populated:
// forward symbolic execution, backward rooting with φ synthesis, and
// final resolution of variable chains into concrete expression trees.
package pipeline

import (
	"github.com/mvanbem/decompiler/pkg/discover"
	"github.com/mvanbem/decompiler/pkg/fact"
	"github.com/mvanbem/decompiler/pkg/ppc"
	"github.com/mvanbem/decompiler/pkg/symbolic"
	"github.com/mvanbem/decompiler/pkg/symexec"
)

// Result carries the per-pipeline-run outputs that don't live in the fact
// database itself: the R3 return-value expression for every exit block
// (a block with no successors).
type Result struct {
	ReturnValues map[fact.Address]symbolic.ExprRef
}

// Run executes all three passes in order and returns the resolved return
// values. The fact database's BasicBlock.Writes are rewritten in place by
// Pass 3.
func Run(db *fact.Database, reader discover.WordReader, ctx *symexec.Context, numbered *symexec.NumberedAllocator, entry fact.Address) *Result {
	Pass1Forward(db, reader, ctx, numbered)
	roots := Pass2BackwardRoot(db, ctx, entry)
	return Pass3Resolve(db, ctx, roots)
}

// Pass1Forward walks every basic block in ascending address order,
// symbolically executing its instructions against a fresh machine state
// whose initial register reads are that block's RegisterEntering
// variables. Writes accumulate onto the block's fact; on exit, every
// register the state touched is bound to a RegisterLeaving variable.
func Pass1Forward(db *fact.Database, reader discover.WordReader, ctx *symexec.Context, numbered *symexec.NumberedAllocator) {
	for _, addr := range db.IterAddressesOfKind(fact.KindBasicBlock) {
		f, _ := db.Get(addr, fact.KindBasicBlock)
		bb := f.(*fact.BasicBlock)

		state := symexec.NewMachineState(addr)
		for pc := addr; pc < bb.End; pc += 4 {
			word := reader.Read(uint32(pc))
			instr, err := ppc.Decode(word, uint32(pc))
			if err != nil {
				// Pass 1 only ever runs over addresses discovery already
				// decoded without error; a failure here is a programmer
				// error in how the block's bounds were computed.
				panic(err)
			}
			update := symexec.PrepareUpdate(ctx, numbered, pc, instr, state)
			bb.Writes = append(bb.Writes, symexec.Apply(state, update)...)
		}

		for _, reg := range state.Written() {
			leaving := symexec.RegisterLeaving(ctx, addr, reg)
			ctx.Assign(leaving, state.Get(ctx, reg))
		}
	}
}

// Pass2BackwardRoot seeds a worklist with every block's write
// addresses/data (except writes that decompose to this function's own
// stack frame) and every exit block's R3 RegisterLeaving variable, then
// traces backward: non-variable expressions push their leaves, assigned
// variables push their assignment, and unassigned RegisterEntering /
// RegisterLeaving variables are resolved by φ synthesis / forwarding to
// RegisterEntering respectively. It returns the R3 root for each exit
// block, for Pass 3 to resolve.
func Pass2BackwardRoot(db *fact.Database, ctx *symexec.Context, entry fact.Address) map[fact.Address]symbolic.ExprRef {
	entryR1 := symexec.RegisterEntering(ctx, entry, ppc.RegisterFromGpr(1))

	var worklist []symbolic.ExprRef
	seen := make(map[symbolic.ExprRef]bool)
	push := func(e symbolic.ExprRef) {
		if !seen[e] {
			seen[e] = true
			worklist = append(worklist, e)
		}
	}

	returns := make(map[fact.Address]symbolic.ExprRef)
	for _, addr := range db.IterAddressesOfKind(fact.KindBasicBlock) {
		f, _ := db.Get(addr, fact.KindBasicBlock)
		bb := f.(*fact.BasicBlock)

		for _, w := range bb.Writes {
			if isOwnStackFrame(ctx, w.Addr, entryR1) {
				continue
			}
			push(w.Addr)
			push(w.Data)
		}

		if len(bb.Successors) == 0 {
			r3 := symexec.RegisterLeaving(ctx, addr, ppc.RegisterFromGpr(3))
			returns[addr] = r3
			push(r3)
		}
	}

	for len(worklist) > 0 {
		e := worklist[0]
		worklist = worklist[1:]

		v, isVar := ctx.IsVariable(e)
		if !isVar {
			for _, leaf := range ctx.Leaves(e) {
				push(leaf)
			}
			continue
		}
		if assigned, ok := ctx.Lookup(e); ok {
			push(assigned)
			continue
		}

		sv := v
		switch sv.Kind {
		case symexec.VarGarbage, symexec.VarReturn:
			// No action: these never resolve further.
		case symexec.VarRegisterEntering:
			preds := predecessorsOf(db, sv.Block)
			if len(preds) == 0 {
				continue // a true root: the function's own entry state
			}
			leavings := make([]symbolic.ExprRef, len(preds))
			for i, p := range preds {
				leavings[i] = symexec.RegisterLeaving(ctx, p, sv.Register)
			}
			phi := ctx.Phi(leavings)
			ctx.Assign(e, phi)
			push(phi)
		case symexec.VarRegisterLeaving:
			entering := symexec.RegisterEntering(ctx, sv.Block, sv.Register)
			ctx.Assign(e, entering)
			push(entering)
		case symexec.VarNumbered:
			// Already covered by the Lookup branch above when assigned
			// (e.g. a load's Read); otherwise it's a genuine root, such
			// as Rlwinm/Srawi/Addze's not-exactly-representable results.
		}
	}

	return returns
}

func predecessorsOf(db *fact.Database, block fact.Address) []fact.Address {
	f, ok := db.Get(block, fact.KindBasicBlock)
	if !ok {
		return nil
	}
	return f.(*fact.BasicBlock).Predecessors
}

// isOwnStackFrame reports whether addr decomposes to entryR1 plus an
// offset that is exactly 4 or negative (spec.md §4.8's carve-out for writes that live
// entirely within this function's own stack frame).
func isOwnStackFrame(ctx *symexec.Context, addr symbolic.ExprRef, entryR1 symbolic.ExprRef) bool {
	base, offset, ok := ExtractBaseOffset(ctx, addr)
	if !ok || base != entryR1 {
		return false
	}
	return offset == 4 || offset < 0
}

// ExtractBaseOffset implements spec.md §4.9: a Literal decomposes to
// (literal 0, the literal's value); a Variable decomposes to (itself,
// 0); a 2-ary Add of exactly one variable and exactly one literal
// decomposes to (the variable, the literal). Anything else, including a
// 2-ary Add of two literals or two variables, yields no decomposition.
func ExtractBaseOffset(ctx *symexec.Context, e symbolic.ExprRef) (base symbolic.ExprRef, offset int32, ok bool) {
	if lit, litOk := ctx.IsLiteral(e); litOk {
		return ctx.Literal(0), int32(lit), true
	}
	if _, varOk := ctx.IsVariable(e); varOk {
		return e, 0, true
	}
	kind, known := ctx.Get(e)
	if !known || kind != "add" {
		return 0, 0, false
	}
	leaves := ctx.Leaves(e)
	if len(leaves) != 2 {
		return 0, 0, false
	}
	var lit uint32
	var litFound, varFound bool
	var variable symbolic.ExprRef
	for _, l := range leaves {
		if v, litOk := ctx.IsLiteral(l); litOk {
			if litFound {
				return 0, 0, false
			}
			lit, litFound = v, true
			continue
		}
		if _, varOk := ctx.IsVariable(l); varOk {
			if varFound {
				return 0, 0, false
			}
			variable, varFound = l, true
			continue
		}
		return 0, 0, false
	}
	if !litFound || !varFound {
		return 0, 0, false
	}
	return variable, int32(lit), true
}

// Pass3Resolve rewrites every block's writes, and every exit block's
// return-value root, by following variable assignment chains to their
// end. roots is Pass2BackwardRoot's return value.
func Pass3Resolve(db *fact.Database, ctx *symexec.Context, roots map[fact.Address]symbolic.ExprRef) *Result {
	for _, addr := range db.IterAddressesOfKind(fact.KindBasicBlock) {
		f, _ := db.Get(addr, fact.KindBasicBlock)
		bb := f.(*fact.BasicBlock)
		for i := range bb.Writes {
			bb.Writes[i].Addr = resolve(ctx, bb.Writes[i].Addr)
			bb.Writes[i].Data = resolve(ctx, bb.Writes[i].Data)
		}
	}

	resolved := make(map[fact.Address]symbolic.ExprRef, len(roots))
	for addr, e := range roots {
		resolved[addr] = resolve(ctx, e)
	}
	return &Result{ReturnValues: resolved}
}

func resolve(ctx *symexec.Context, e symbolic.ExprRef) symbolic.ExprRef {
	return ctx.MapLeaves(e, resolveLeaf)
}

// resolveLeaf repeatedly follows a variable's assignment until it reaches
// a non-variable or an unassigned variable, per spec.md §4.8's resolver.
// A self-assignment (which normal construction never produces) is
// tolerated by stopping as soon as a reference repeats.
func resolveLeaf(ctx *symbolic.Context[symexec.Var], e symbolic.ExprRef) symbolic.ExprRef {
	visited := make(map[symbolic.ExprRef]bool)
	cur := e
	for {
		if visited[cur] {
			return cur
		}
		visited[cur] = true
		if _, ok := ctx.IsVariable(cur); !ok {
			return cur
		}
		next, ok := ctx.Lookup(cur)
		if !ok {
			return cur
		}
		cur = next
	}
}
