package symexec

import (
	"github.com/mvanbem/decompiler/pkg/fact"
	"github.com/mvanbem/decompiler/pkg/ppc"
	"github.com/mvanbem/decompiler/pkg/symbolic"
)

// clobberedGprs and clobberedSprs are the registers the PowerEKABI says a
// linking branch may have trashed; PrepareUpdate binds every one of them
// to Garbage rather than pretending they are preserved.
var clobberedGprs = []ppc.Gpr{0, 5, 6, 7, 8, 9, 10, 11, 12}
var clobberedSprs = []ppc.Spr{ppc.SprXER, ppc.SprLR, ppc.SprCTR}

func clobberedConditionBits() []ppc.ConditionBit {
	bits := make([]ppc.ConditionBit, 0, 20)
	for b := uint32(0); b < 8; b++ {
		bits = append(bits, ppc.ConditionBit(b))
	}
	for b := uint32(20); b < 32; b++ {
		bits = append(bits, ppc.ConditionBit(b))
	}
	return bits
}

// PrepareUpdate symbolically executes instr, which was fetched at addr,
// against state and returns the resulting Update. It does not apply the
// update's register writes to state (reading a register not yet seen
// still binds it to its RegisterEntering variable in state); the caller
// applies the update with Apply.
func PrepareUpdate(ctx *Context, numbered *NumberedAllocator, addr fact.Address, instr ppc.Instruction, state *MachineState) *Update {
	u := NewUpdate()

	if br, ok := instr.(ppc.Branch); ok {
		prepareBranch(ctx, u, addr, br.BranchInfo())
		return u
	}

	switch i := instr.(type) {
	case ppc.Addi:
		src := state.Get(ctx, ppc.RegisterFromGprOrZero(i.Src))
		result := ctx.Add([]symbolic.ExprRef{src, ctx.Literal(uint32(i.Imm))})
		u.SetRegister(ppc.RegisterFromGpr(i.Dst), result)

	case ppc.Addis:
		src := state.Get(ctx, ppc.RegisterFromGprOrZero(i.Src))
		result := ctx.Add([]symbolic.ExprRef{src, ctx.Literal(uint32(i.Imm) << 16)})
		u.SetRegister(ppc.RegisterFromGpr(i.Dst), result)

	case ppc.Addze:
		// XER[CA] is not tracked, so the sum is not representable.
		fresh := numbered.Next(ctx)
		u.SetRegister(ppc.RegisterFromGpr(i.Dst), fresh)
		if i.Rc {
			setCr0(ctx, u, fresh)
		}

	case ppc.Cmpi:
		src := state.Get(ctx, ppc.RegisterFromGpr(i.Src))
		imm := ctx.Literal(uint32(i.Imm))
		writeCompare(ctx, u, i.Crf, src, imm, true)

	case ppc.Cmpl:
		a := state.Get(ctx, ppc.RegisterFromGpr(i.SrcA))
		b := state.Get(ctx, ppc.RegisterFromGpr(i.SrcB))
		writeCompare(ctx, u, i.Crf, a, b, false)

	case ppc.Cmpli:
		src := state.Get(ctx, ppc.RegisterFromGpr(i.Src))
		imm := ctx.Literal(i.Imm)
		writeCompare(ctx, u, i.Crf, src, imm, false)

	case ppc.Crxor:
		a := state.Get(ctx, ppc.RegisterFromBit(i.SrcA))
		b := state.Get(ctx, ppc.RegisterFromBit(i.SrcB))
		// Condition bits are always 0/1-valued, so XOR is "not equal",
		// expressed as the double-Equal the algebra actually has.
		result := ctx.Equal(ctx.Equal(a, b), ctx.Literal(0))
		u.SetRegister(ppc.RegisterFromBit(i.Dst), result)

	case ppc.Lbz:
		prepareLoad(ctx, numbered, u, state, i.Dst, i.Offset, i.Base)

	case ppc.Lha:
		prepareLoad(ctx, numbered, u, state, i.Dst, i.Offset, i.Base)

	case ppc.Lwz:
		prepareLoad(ctx, numbered, u, state, i.Dst, i.Offset, i.Base)

	case ppc.Mfspr:
		src := state.Get(ctx, ppc.RegisterFromSpr(i.Spr))
		u.SetRegister(ppc.RegisterFromGpr(i.Dst), src)

	case ppc.Mtspr:
		src := state.Get(ctx, ppc.RegisterFromGpr(i.Src))
		u.SetRegister(ppc.RegisterFromSpr(i.Spr), src)

	case ppc.Or:
		a := state.Get(ctx, ppc.RegisterFromGpr(i.SrcA))
		b := state.Get(ctx, ppc.RegisterFromGpr(i.SrcB))
		result := ctx.BitOr([]symbolic.ExprRef{a, b})
		u.SetRegister(ppc.RegisterFromGpr(i.Dst), result)
		if i.Rc {
			setCr0(ctx, u, result)
		}

	case ppc.Rlwinm:
		src := state.Get(ctx, ppc.RegisterFromGpr(i.Src))
		var result symbolic.ExprRef
		if i.Shift == 0 {
			mask := rlwinmMask(i.MaskBegin, i.MaskEnd)
			result = ctx.BitAnd([]symbolic.ExprRef{src, ctx.Literal(mask)})
		} else {
			// A genuine rotate-by-constant has no node in the algebra.
			result = ctx.Variable(Var{Kind: VarNumbered, Number: numbered.next})
			numbered.next++
		}
		u.SetRegister(ppc.RegisterFromGpr(i.Dst), result)
		if i.Rc {
			setCr0(ctx, u, result)
		}

	case ppc.Srawi:
		src := state.Get(ctx, ppc.RegisterFromGpr(i.Src))
		var result symbolic.ExprRef
		if i.Shift == 0 {
			result = src
		} else {
			result = ctx.Variable(Var{Kind: VarNumbered, Number: numbered.next})
			numbered.next++
		}
		u.SetRegister(ppc.RegisterFromGpr(i.Dst), result)
		if i.Rc {
			setCr0(ctx, u, result)
		}

	case ppc.Stmw:
		base := state.Get(ctx, ppc.RegisterFromGprOrZero(i.Base))
		for k := uint32(0); int(i.Src)+int(k) <= 31; k++ {
			reg, _ := ppc.NewGpr(uint32(i.Src) + k)
			val := state.Get(ctx, ppc.RegisterFromGpr(reg))
			addrExpr := ctx.Add([]symbolic.ExprRef{ctx.Literal(uint32(i.Offset + int32(4*k))), base})
			u.AddWrite(Write{Width: AccessWord, Addr: addrExpr, Data: val})
		}

	case ppc.Stw:
		src := state.Get(ctx, ppc.RegisterFromGpr(i.Src))
		base := state.Get(ctx, ppc.RegisterFromGprOrZero(i.Base))
		addrExpr := ctx.Add([]symbolic.ExprRef{ctx.Literal(uint32(i.Offset)), base})
		u.AddWrite(Write{Width: AccessWord, Addr: addrExpr, Data: src})

	case ppc.Stwu:
		src := state.Get(ctx, ppc.RegisterFromGpr(i.Src))
		base := state.Get(ctx, ppc.RegisterFromGpr(i.Base))
		addrExpr := ctx.Add([]symbolic.ExprRef{ctx.Literal(uint32(i.Offset)), base})
		u.AddWrite(Write{Width: AccessWord, Addr: addrExpr, Data: src})
		u.SetRegister(ppc.RegisterFromGpr(i.Base), addrExpr)
	}

	return u
}

func prepareLoad(ctx *Context, numbered *NumberedAllocator, u *Update, state *MachineState, dst ppc.Gpr, offset int32, base ppc.GprOrZero) {
	baseExpr := state.Get(ctx, ppc.RegisterFromGprOrZero(base))
	addrExpr := ctx.Add([]symbolic.ExprRef{ctx.Literal(uint32(offset)), baseExpr})
	fresh := numbered.Next(ctx)
	ctx.Assign(fresh, ctx.Read(addrExpr))
	u.SetRegister(ppc.RegisterFromGpr(dst), fresh)
}

// writeCompare records the three condition bits a compare instruction
// defines. EQ is always Equal(a,b); LT/GT use the signed or unsigned
// ordering depending on signed.
func writeCompare(ctx *Context, u *Update, crf ppc.Crf, a, b symbolic.ExprRef, signed bool) {
	var lt, gt symbolic.ExprRef
	if signed {
		lt = ctx.LessSigned(a, b)
		gt = ctx.LessSigned(b, a)
	} else {
		lt = ctx.LessUnsigned(a, b)
		gt = ctx.LessUnsigned(b, a)
	}
	eq := ctx.Equal(a, b)
	u.SetRegister(ppc.RegisterFromBit(ppc.ConditionBitOf(crf, ppc.ConditionLT)), lt)
	u.SetRegister(ppc.RegisterFromBit(ppc.ConditionBitOf(crf, ppc.ConditionGT)), gt)
	u.SetRegister(ppc.RegisterFromBit(ppc.ConditionBitOf(crf, ppc.ConditionEQ)), eq)
}

// setCr0 records the record-form (Rc) condition bits a result defines:
// signed comparison of result against zero.
func setCr0(ctx *Context, u *Update, result symbolic.ExprRef) {
	zero := ctx.Literal(0)
	u.SetRegister(ppc.RegisterFromBit(ppc.ConditionBitOf(0, ppc.ConditionLT)), ctx.LessSigned(result, zero))
	u.SetRegister(ppc.RegisterFromBit(ppc.ConditionBitOf(0, ppc.ConditionGT)), ctx.LessSigned(zero, result))
	u.SetRegister(ppc.RegisterFromBit(ppc.ConditionBitOf(0, ppc.ConditionEQ)), ctx.Equal(result, zero))
}

// prepareBranch handles the register-update side of a branch. A linking
// branch clobbers the volatile register set and binds r3 to the callee's
// return value; a non-linking branch touches nothing here (block linkage
// itself is discovery's job, not symbolic execution's).
func prepareBranch(ctx *Context, u *Update, addr fact.Address, info ppc.BranchInfo) {
	if !info.Link {
		return
	}
	garbage := Garbage(ctx)
	for _, g := range clobberedGprs {
		u.SetRegister(ppc.RegisterFromGpr(g), garbage)
	}
	for _, s := range clobberedSprs {
		u.SetRegister(ppc.RegisterFromSpr(s), garbage)
	}
	for _, b := range clobberedConditionBits() {
		u.SetRegister(ppc.RegisterFromBit(b), garbage)
	}
	u.SetRegister(ppc.RegisterFromGpr(3), Return(ctx, addr))
}

// rlwinmMask computes the standard PowerPC MASK(mb,me) bit pattern: the
// inclusive range of bits [mb,me] set, MSB=0 numbered, wrapping around
// bit 31 back to bit 0 when mb > me.
func rlwinmMask(mb, me uint32) uint32 {
	if mb <= me {
		width := me - mb + 1
		return ((uint32(1) << width) - 1) << (31 - me)
	}
	return rlwinmMask(0, me) | rlwinmMask(mb, 31)
}
