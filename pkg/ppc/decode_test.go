package ppc

import "testing"

func TestDecodeTinyBlock(t *testing.T) {
	// spec.md §8 scenario 1: addi r3, 0, 5 at 0x1000.
	instr, err := Decode(0x38600005, 0x1000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	addi, ok := instr.(Addi)
	if !ok {
		t.Fatalf("got %T, want Addi", instr)
	}
	if addi.Dst != 3 {
		t.Errorf("Dst = %v, want r3", addi.Dst)
	}
	if !addi.Src.IsZero() {
		t.Errorf("Src = %v, want zero", addi.Src)
	}
	if addi.Imm != 5 {
		t.Errorf("Imm = %d, want 5", addi.Imm)
	}
}

func TestDecodeUnconditionalBranch(t *testing.T) {
	// spec.md §8 scenario 2: b 0x1008 at 0x1000.
	instr, err := Decode(0x48000008, 0x1000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b, ok := instr.(B)
	if !ok {
		t.Fatalf("got %T, want B", instr)
	}
	if b.Target != 0x1008 {
		t.Errorf("Target = 0x%x, want 0x1008", b.Target)
	}
	if b.Link {
		t.Errorf("Link = true, want false")
	}
	info := b.BranchInfo()
	if !info.Diverges() {
		t.Errorf("Diverges() = false, want true for an unconditional non-linking branch")
	}
}

func TestDecodeConditionalBranch(t *testing.T) {
	// spec.md §8 scenario 3: beq +12 at 0x1000.
	instr, err := Decode(0x4182000c, 0x1000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	bc, ok := instr.(Bc)
	if !ok {
		t.Fatalf("got %T, want Bc", instr)
	}
	if bc.Target != 0x100c {
		t.Errorf("Target = 0x%x, want 0x100c", bc.Target)
	}
	info := bc.BranchInfo()
	if !info.IsConditional() {
		t.Errorf("IsConditional() = false, want true")
	}
	if info.Diverges() {
		t.Errorf("Diverges() = true, want false for a conditional branch")
	}
}

func TestDecodeSubroutineCall(t *testing.T) {
	// spec.md §8 scenario 4: bl +4 at 0x1000.
	instr, err := Decode(0x48000005, 0x1000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b, ok := instr.(B)
	if !ok {
		t.Fatalf("got %T, want B", instr)
	}
	if !b.Link {
		t.Errorf("Link = false, want true")
	}
	if b.Target != 0x1004 {
		t.Errorf("Target = 0x%x, want 0x1004", b.Target)
	}
	info := b.BranchInfo()
	if info.Diverges() {
		t.Errorf("Diverges() = true, want false for a linking branch")
	}
}

func TestDecodeUnimplementedOpcode(t *testing.T) {
	_, err := Decode(0x00000000, 0x1000)
	if err == nil {
		t.Fatal("expected an error for opcode 0")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("got %T, want *ParseError", err)
	}
	if pe.Kind != ErrUnimplementedOpcode {
		t.Errorf("Kind = %v, want ErrUnimplementedOpcode", pe.Kind)
	}
}

func TestDecodeStwuRequiresNonzeroBase(t *testing.T) {
	// stwu r3, 4(0) -- opcode 37, rA=0.
	word := uint32(37)<<26 | uint32(3)<<21 | uint32(0)<<16 | uint32(4)
	_, err := Decode(word, 0x1000)
	if err == nil {
		t.Fatal("expected IllegalEncoding for stwu with zero base")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrIllegalEncoding {
		t.Fatalf("got %v, want IllegalEncoding", err)
	}
}

func TestDecodeOrIsMoveRegisterWhenOperandsMatch(t *testing.T) {
	// or r3, r4, r4  (mr r3, r4) -- opcode 31, ext 444.
	// Fields: rS (bits 6..10) = 4, rA (bits 11..15) = 3, rB (bits 16..20) = 4.
	word := uint32(31)<<26 | uint32(4)<<21 | uint32(3)<<16 | uint32(4)<<11 | uint32(444)<<1
	instr, err := Decode(word, 0x1000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	or, ok := instr.(Or)
	if !ok {
		t.Fatalf("got %T, want Or", instr)
	}
	if or.String() != "mr r3, r4" {
		t.Errorf("String() = %q, want %q", or.String(), "mr r3, r4")
	}
}
