package ppc

// Decode parses a 32-bit PowerPC instruction word at the given address
// into a recognized Instruction, or returns a ParseError.
func Decode(word uint32, addr uint32) (Instruction, error) {
	e := EncodedInstruction(word)
	switch e.Opcode() {
	case 10: // cmpli
		if e.bits(9, 10) != 0 {
			return nil, illegalEncoding("cmpli reserved bits set")
		}
		return Cmpli{Crf: e.CrfD(), Src: e.GprAOrZero().mustGpr(), Imm: uint32(e.UnsignedImmediate())}, nil

	case 11: // cmpi
		if e.bits(9, 10) != 0 {
			return nil, illegalEncoding("cmpi reserved bits set")
		}
		return Cmpi{Crf: e.CrfD(), Src: e.GprAOrZero().mustGpr(), Imm: e.SignedImmediate()}, nil

	case 14: // addi
		return Addi{Dst: e.GprC(), Src: e.GprAOrZero(), Imm: e.SignedImmediate()}, nil

	case 15: // addis
		return Addis{Dst: e.GprC(), Src: e.GprAOrZero(), Imm: e.UnsignedImmediate()}, nil

	case 16: // bc
		target := AbsoluteAddress(addr, e.SmallBranchOffset(), e.Aa())
		cond, ctr := decodeBo(e.Bo(), e.Bi())
		return Bc{Condition: cond, Ctr: ctr, Link: e.Lk(), Target: target}, nil

	case 18: // b
		target := AbsoluteAddress(addr, e.LargeBranchOffset(), e.Aa())
		return B{Target: target, Link: e.Lk()}, nil

	case 19: // X-form / XL-form extended opcodes
		switch e.ExtendedOpcode() {
		case 16: // bclr
			if e.bits(16, 20) != 0 {
				return nil, illegalEncoding("bclr reserved bits set")
			}
			cond, ctr := decodeBo(e.Bo(), e.Bi())
			return Bclr{Condition: cond, Ctr: ctr, Link: e.Lk()}, nil
		case 193: // crxor
			return Crxor{Dst: e.CrBitD(), SrcA: e.CrBitA(), SrcB: e.CrBitB()}, nil
		default:
			return nil, unimplementedExtendedOpcode(e.Opcode(), e.ExtendedOpcode())
		}

	case 21: // rlwinm
		return Rlwinm{
			Dst: e.GprA(), Src: e.GprC(),
			Shift: e.ShiftAmount(), MaskBegin: e.MaskBegin(), MaskEnd: e.MaskEnd(),
			Rc: e.Rc(),
		}, nil

	case 31:
		if xo := e.bits(22, 30); xo == 202 { // addze (XO-form)
			return Addze{Dst: e.GprC(), Src: e.GprAOrZero().mustGpr(), Oe: e.Oe(), Rc: e.Rc()}, nil
		}
		switch e.ExtendedOpcode() {
		case 32: // cmpl
			if e.bits(9, 10) != 0 {
				return nil, illegalEncoding("cmpl reserved bits set")
			}
			return Cmpl{Crf: e.CrfD(), SrcA: e.GprAOrZero().mustGpr(), SrcB: e.GprB()}, nil
		case 339: // mfspr
			spr, ok := e.TrySpr()
			if !ok {
				return nil, illegalEncoding("unrecognized spr")
			}
			return Mfspr{Dst: e.GprC(), Spr: spr}, nil
		case 444: // or / mr
			return Or{Dst: e.GprA(), SrcA: e.GprC(), SrcB: e.GprB(), Rc: e.Rc()}, nil
		case 467: // mtspr
			spr, ok := e.TrySpr()
			if !ok {
				return nil, illegalEncoding("unrecognized spr")
			}
			return Mtspr{Spr: spr, Src: e.GprC()}, nil
		case 824: // srawi
			return Srawi{Dst: e.GprA(), Src: e.GprC(), Shift: e.bits(16, 20), Rc: e.Rc()}, nil
		default:
			return nil, unimplementedExtendedOpcode(e.Opcode(), e.ExtendedOpcode())
		}

	case 32: // lwz
		return Lwz{Dst: e.GprC(), Offset: e.SignedImmediate(), Base: e.GprAOrZero()}, nil

	case 34: // lbz
		return Lbz{Dst: e.GprC(), Offset: e.SignedImmediate(), Base: e.GprAOrZero()}, nil

	case 36: // stw
		return Stw{Src: e.GprC(), Offset: e.SignedImmediate(), Base: e.GprAOrZero()}, nil

	case 37: // stwu
		base, ok := e.GprAOrZero().Gpr()
		if !ok {
			return nil, illegalEncoding("stwu requires a nonzero base register")
		}
		return Stwu{Src: e.GprC(), Offset: e.SignedImmediate(), Base: base}, nil

	case 42: // lha
		return Lha{Dst: e.GprC(), Offset: e.SignedImmediate(), Base: e.GprAOrZero()}, nil

	case 47: // stmw
		return Stmw{Src: e.GprC(), Offset: e.SignedImmediate(), Base: e.GprAOrZero()}, nil

	default:
		return nil, unimplementedOpcode(e.Opcode())
	}
}

// mustGpr treats a GprOrZero as a plain Gpr: PowerPC's "(rA|0)" convention
// still names register 0 when the field is used as a compare/arithmetic
// source here, since these forms read the literal value 0 exactly as
// reading r0 would if r0 held zero — callers that need the literal-zero
// distinction use GprAOrZero directly instead (e.g. Addi/Lwz/Stw's base).
func (g GprOrZero) mustGpr() Gpr { return Gpr(g) }
