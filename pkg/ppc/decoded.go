package ppc

import "fmt"

// Instruction is the closed sum type over every decoded PowerPC
// instruction this package recognizes. Each concrete type carries only
// the operands relevant to its own semantics.
type Instruction interface {
	fmt.Stringer
	isInstruction()
}

// Branch is implemented by every Instruction that can transfer control.
type Branch interface {
	Instruction
	BranchInfo() BranchInfo
}

func recordSuffix(rc bool) string {
	if rc {
		return "."
	}
	return ""
}

// Addi is `addi`/`addis`-family immediate add: dst <- (src|0) + imm.
type Addi struct {
	Dst Gpr
	Src GprOrZero
	Imm int32
}

func (Addi) isInstruction() {}
func (i Addi) String() string {
	if i.Src.IsZero() {
		return fmt.Sprintf("li %s, %d", i.Dst, i.Imm)
	}
	return fmt.Sprintf("addi %s, %s, %d", i.Dst, i.Src, i.Imm)
}

// Addis is `addis`: dst <- (src|0) + (imm << 16).
type Addis struct {
	Dst Gpr
	Src GprOrZero
	Imm uint16 // unshifted upper-halfword immediate
}

func (Addis) isInstruction() {}
func (i Addis) String() string {
	if i.Src.IsZero() {
		return fmt.Sprintf("lis %s, %d", i.Dst, i.Imm)
	}
	return fmt.Sprintf("addis %s, %s, %d", i.Dst, i.Src, i.Imm)
}

// Addze is `addze[.]`: dst <- src + XER[CA].
type Addze struct {
	Dst, Src Gpr
	Oe, Rc   bool
}

func (Addze) isInstruction() {}
func (i Addze) String() string {
	return fmt.Sprintf("addze%s %s, %s", recordSuffix(i.Rc), i.Dst, i.Src)
}

// B is an unconditional branch, `b`/`bl`.
type B struct {
	Target uint32
	Link   bool
}

func (B) isInstruction() {}
func (i B) BranchInfo() BranchInfo {
	t := i.Target
	return BranchInfo{Condition: ConditionBehavior{Kind: ConditionAlways}, Ctr: CtrNone, Link: i.Link, Target: &t}
}
func (i B) String() string {
	name := "b"
	if i.Link {
		name = "bl"
	}
	return fmt.Sprintf("%s 0x%08x", name, i.Target)
}

// Bc is a conditional branch to a statically known target, `bc`.
type Bc struct {
	Condition ConditionBehavior
	Ctr       CtrBehaviorKind
	Link      bool
	Target    uint32
}

func (Bc) isInstruction() {}
func (i Bc) BranchInfo() BranchInfo {
	t := i.Target
	return BranchInfo{Condition: i.Condition, Ctr: i.Ctr, Link: i.Link, Target: &t}
}
func (i Bc) String() string {
	return fmt.Sprintf("bc%s if %s ctr(%s) -> 0x%08x", recordSuffix(i.Link), i.Condition, i.Ctr, i.Target)
}

// Bclr is a branch to the link register, `bclr`/`bclrl`/`blr`. Its target
// is never statically known.
type Bclr struct {
	Condition ConditionBehavior
	Ctr       CtrBehaviorKind
	Link      bool
}

func (Bclr) isInstruction() {}
func (i Bclr) BranchInfo() BranchInfo {
	return BranchInfo{Condition: i.Condition, Ctr: i.Ctr, Link: i.Link, Target: nil}
}
func (i Bclr) String() string {
	if i.Condition.Kind == ConditionAlways && i.Ctr == CtrNone && !i.Link {
		return "blr"
	}
	return fmt.Sprintf("bclr%s if %s ctr(%s)", recordSuffix(i.Link), i.Condition, i.Ctr)
}

// Cmpi is `cmpwi`: signed compare of a register against an immediate.
type Cmpi struct {
	Crf Crf
	Src Gpr
	Imm int32
}

func (Cmpi) isInstruction() {}
func (i Cmpi) String() string { return fmt.Sprintf("cmpwi %s, %s, %d", i.Crf, i.Src, i.Imm) }

// Cmpl is `cmplw`: unsigned compare of two registers.
type Cmpl struct {
	Crf        Crf
	SrcA, SrcB Gpr
}

func (Cmpl) isInstruction() {}
func (i Cmpl) String() string { return fmt.Sprintf("cmplw %s, %s, %s", i.Crf, i.SrcA, i.SrcB) }

// Cmpli is `cmplwi`: unsigned compare of a register against an immediate.
type Cmpli struct {
	Crf Crf
	Src Gpr
	Imm uint32
}

func (Cmpli) isInstruction() {}
func (i Cmpli) String() string { return fmt.Sprintf("cmplwi %s, %s, %d", i.Crf, i.Src, i.Imm) }

// Crxor is `crxor`: bitwise XOR of two condition bits.
type Crxor struct {
	Dst, SrcA, SrcB ConditionBit
}

func (Crxor) isInstruction() {}
func (i Crxor) String() string { return fmt.Sprintf("crxor %s, %s, %s", i.Dst, i.SrcA, i.SrcB) }

// Lbz is `lbz`: load a zero-extended byte.
type Lbz struct {
	Dst    Gpr
	Offset int32
	Base   GprOrZero
}

func (Lbz) isInstruction() {}
func (i Lbz) String() string { return fmt.Sprintf("lbz %s, %d(%s)", i.Dst, i.Offset, i.Base) }

// Lha is `lha`: load a sign-extended halfword.
type Lha struct {
	Dst    Gpr
	Offset int32
	Base   GprOrZero
}

func (Lha) isInstruction() {}
func (i Lha) String() string { return fmt.Sprintf("lha %s, %d(%s)", i.Dst, i.Offset, i.Base) }

// Lwz is `lwz`: load a word.
type Lwz struct {
	Dst    Gpr
	Offset int32
	Base   GprOrZero
}

func (Lwz) isInstruction() {}
func (i Lwz) String() string { return fmt.Sprintf("lwz %s, %d(%s)", i.Dst, i.Offset, i.Base) }

// Mfspr is `mfspr`/`mflr`/`mfctr`: copy an SPR into a GPR.
type Mfspr struct {
	Dst Gpr
	Spr Spr
}

func (Mfspr) isInstruction() {}
func (i Mfspr) String() string { return fmt.Sprintf("mf%s %s", i.Spr, i.Dst) }

// Mtspr is `mtspr`/`mtlr`/`mtctr`: copy a GPR into an SPR.
type Mtspr struct {
	Spr Spr
	Src Gpr
}

func (Mtspr) isInstruction() {}
func (i Mtspr) String() string { return fmt.Sprintf("mt%s %s", i.Spr, i.Src) }

// Or is `or[.]`/`mr[.]`: bitwise OR of two registers.
type Or struct {
	Dst, SrcA, SrcB Gpr
	Rc              bool
}

func (Or) isInstruction() {}
func (i Or) String() string {
	if i.SrcA == i.SrcB {
		return fmt.Sprintf("mr%s %s, %s", recordSuffix(i.Rc), i.Dst, i.SrcA)
	}
	return fmt.Sprintf("or%s %s, %s, %s", recordSuffix(i.Rc), i.Dst, i.SrcA, i.SrcB)
}

// Rlwinm is `rlwinm[.]`: rotate left by Shift, then mask to [MaskBegin,
// MaskEnd].
type Rlwinm struct {
	Dst, Src             Gpr
	Shift, MaskBegin, MaskEnd uint32
	Rc                   bool
}

func (Rlwinm) isInstruction() {}
func (i Rlwinm) String() string {
	return fmt.Sprintf("rlwinm%s %s, %s, %d, %d, %d", recordSuffix(i.Rc), i.Dst, i.Src, i.Shift, i.MaskBegin, i.MaskEnd)
}

// Srawi is `srawi[.]`: arithmetic shift right by a constant.
type Srawi struct {
	Dst, Src Gpr
	Shift    uint32
	Rc       bool
}

func (Srawi) isInstruction() {}
func (i Srawi) String() string {
	return fmt.Sprintf("srawi%s %s, %s, %d", recordSuffix(i.Rc), i.Dst, i.Src, i.Shift)
}

// Stmw is `stmw`: store multiple words, Src..r31, at ascending offsets.
type Stmw struct {
	Src    Gpr
	Offset int32
	Base   GprOrZero
}

func (Stmw) isInstruction() {}
func (i Stmw) String() string { return fmt.Sprintf("stmw %s, %d(%s)", i.Src, i.Offset, i.Base) }

// Stw is `stw`: store a word.
type Stw struct {
	Src    Gpr
	Offset int32
	Base   GprOrZero
}

func (Stw) isInstruction() {}
func (i Stw) String() string { return fmt.Sprintf("stw %s, %d(%s)", i.Src, i.Offset, i.Base) }

// Stwu is `stwu`: store a word, then write the computed address back into
// Base (which may not be the literal zero).
type Stwu struct {
	Src    Gpr
	Offset int32
	Base   Gpr
}

func (Stwu) isInstruction() {}
func (i Stwu) String() string { return fmt.Sprintf("stwu %s, %d(%s)", i.Src, i.Offset, i.Base) }
