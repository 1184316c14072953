package ppc

// EncodedInstruction is a raw, undecoded 32-bit PowerPC instruction word.
type EncodedInstruction uint32

// bits extracts the inclusive bit range [from, to] using PowerPC's MSB=0,
// LSB=31 numbering.
func (e EncodedInstruction) bits(from, to uint32) uint32 {
	width := to - from + 1
	shift := 31 - to
	mask := uint32(1)<<width - 1
	return (uint32(e) >> shift) & mask
}

func (e EncodedInstruction) bit(n uint32) bool { return e.bits(n, n) != 0 }

// Opcode returns the primary opcode, bits 0..5.
func (e EncodedInstruction) Opcode() uint32 { return e.bits(0, 5) }

// ExtendedOpcode returns the extended opcode used by X-form/XL-form
// instructions, bits 21..30.
func (e EncodedInstruction) ExtendedOpcode() uint32 { return e.bits(21, 30) }

// GprA returns the rA field, bits 11..15, as a plain GPR index.
func (e EncodedInstruction) GprA() Gpr { return Gpr(e.bits(11, 15)) }

// GprAOrZero returns the rA field under the "(rA|0)" convention.
func (e EncodedInstruction) GprAOrZero() GprOrZero { return GprOrZero(e.bits(11, 15)) }

// GprB returns the rB field, bits 16..20.
func (e EncodedInstruction) GprB() Gpr { return Gpr(e.bits(16, 20)) }

// GprC returns the rD/rS field, bits 6..10: the destination register of
// loads and arithmetic, or the source register of stores and of the
// X-form logical/shift instructions (whose destination is rA).
func (e EncodedInstruction) GprC() Gpr { return Gpr(e.bits(6, 10)) }

// Bi returns the BI field (bits 11..15) as a ConditionBit.
func (e EncodedInstruction) Bi() ConditionBit { return ConditionBit(e.bits(11, 15)) }

// Bo returns the raw BO field, bits 6..10.
func (e EncodedInstruction) Bo() uint32 { return e.bits(6, 10) }

// CrfD returns the destination condition register field, bits 6..8.
func (e EncodedInstruction) CrfD() Crf { return Crf(e.bits(6, 8)) }

// CrfS returns a source condition register field, bits 11..13 (used by
// instructions whose first operand is itself a crf, e.g. mcrf-style
// forms; Cmpl/Cmpi reuse CrfD for their destination field).
func (e EncodedInstruction) CrfS() Crf { return Crf(e.bits(11, 13)) }

// CrBitD, CrBitA, CrBitB return the three 5-bit condition-bit fields used
// by XL-form condition-register logic instructions (e.g. Crxor): bits
// 6..10, 11..15, 16..20 respectively.
func (e EncodedInstruction) CrBitD() ConditionBit { return ConditionBit(e.bits(6, 10)) }
func (e EncodedInstruction) CrBitA() ConditionBit { return ConditionBit(e.bits(11, 15)) }
func (e EncodedInstruction) CrBitB() ConditionBit { return ConditionBit(e.bits(16, 20)) }

// Rc returns the record bit, bit 31, shared by every form that has one.
func (e EncodedInstruction) Rc() bool { return e.bit(31) }

// Lk returns the link bit, bit 31 (same position as Rc; named separately
// because branch forms call it LK).
func (e EncodedInstruction) Lk() bool { return e.bit(31) }

// Aa returns the absolute-address bit, bit 30, used by branch forms.
func (e EncodedInstruction) Aa() bool { return e.bit(30) }

// Oe returns the overflow-enable bit, bit 21, used by add/subtract forms.
func (e EncodedInstruction) Oe() bool { return e.bit(21) }

// L returns the L bit used by the 64-bit-mode-selector position in
// Cmpi/Cmpl/Cmpli (bit 10 in all three forms); callers pass the bit
// index.
func (e EncodedInstruction) L(bitIndex uint32) bool { return e.bit(bitIndex) }

// TrySpr reads the 10-bit SPR index used by Mfspr/Mtspr (bits 11..20),
// with its two 5-bit halves swapped as PowerPC's encoding requires, and
// maps it to a recognized Spr.
func (e EncodedInstruction) TrySpr() (Spr, bool) {
	raw := (e.bits(16, 20) << 5) | e.bits(11, 15)
	return NewSpr(raw)
}

// UnsignedImmediate returns the 16-bit D-form immediate field, bits 16..31.
func (e EncodedInstruction) UnsignedImmediate() uint16 { return uint16(e.bits(16, 31)) }

// SignedImmediate returns the 16-bit D-form immediate field, sign-extended.
func (e EncodedInstruction) SignedImmediate() int32 {
	return int32(int16(e.UnsignedImmediate()))
}

// ShiftAmount returns the 5-bit SH field used by Rlwinm/Srawi, bits 16..20.
func (e EncodedInstruction) ShiftAmount() uint32 { return e.bits(16, 20) }

// MaskBegin returns the MB field used by Rlwinm, bits 21..25.
func (e EncodedInstruction) MaskBegin() uint32 { return e.bits(21, 25) }

// MaskEnd returns the ME field used by Rlwinm, bits 26..30.
func (e EncodedInstruction) MaskEnd() uint32 { return e.bits(26, 30) }

// SmallBranchOffset returns the 14-bit BD field of a Bc instruction,
// sign-extended and masked to a word-aligned halfword-scaled offset.
func (e EncodedInstruction) SmallBranchOffset() int32 {
	raw := e.bits(16, 29) << 2
	signed := int32(raw<<16) >> 16
	return signed &^ 0x3
}

// LargeBranchOffset returns the 24-bit LI field of a B instruction,
// sign-extended and masked the same way.
func (e EncodedInstruction) LargeBranchOffset() int32 {
	raw := e.bits(6, 29) << 2
	signed := int32(raw<<6) >> 6
	return signed &^ 0x3
}

// AbsoluteAddress combines a branch offset with AA/the current address:
// when aa is set the offset is the absolute target; otherwise it is
// relative to addr.
func AbsoluteAddress(addr uint32, offset int32, aa bool) uint32 {
	if aa {
		return uint32(offset)
	}
	return addr + uint32(offset)
}
