package discover

import (
	"testing"

	"github.com/mvanbem/decompiler/pkg/fact"
)

type memReader map[uint32]uint32

func (m memReader) Read(addr uint32) uint32 { return m[addr] }

func TestBranchTargetLinkage(t *testing.T) {
	// spec.md §8 scenario 2.
	reader := memReader{
		0x1000: 0x48000008, // b 0x1008
		0x1004: 0x60000000, // never scanned
		0x1008: 0x38000000, // addi r0, 0, 0
	}
	db := fact.NewDatabase()
	Run(db, reader, 0x1000)

	end, ok := db.Get(0x1000, fact.KindBasicBlockEnd)
	if !ok {
		t.Fatal("expected a BasicBlockEnd fact at 0x1000")
	}
	succ := end.(*fact.BasicBlockEnd).Successors
	if len(succ) != 1 || succ[0] != 0x1008 {
		t.Errorf("successors = %v, want [0x1008]", succ)
	}

	bt, ok := db.Get(0x1008, fact.KindBranchTarget)
	if !ok {
		t.Fatal("expected a BranchTarget fact at 0x1008")
	}
	if srcs := bt.(*fact.BranchTarget).Sources; len(srcs) != 1 || srcs[0] != 0x1000 {
		t.Errorf("sources = %v, want [0x1000]", srcs)
	}

	if _, ok := db.Get(0x1004, fact.KindBasicBlockEnd); ok {
		t.Error("0x1004 should never have been scanned")
	}
	if _, ok := db.Get(0x1004, fact.KindParseError); ok {
		t.Error("0x1004 should never have been scanned")
	}
}

func TestConditionalBranchBothSuccessors(t *testing.T) {
	// spec.md §8 scenario 3: beq +12 at 0x1000.
	reader := memReader{0x1000: 0x4182000c}
	db := fact.NewDatabase()
	Run(db, reader, 0x1000)

	end, ok := db.Get(0x1000, fact.KindBasicBlockEnd)
	if !ok {
		t.Fatal("expected a BasicBlockEnd fact at 0x1000")
	}
	succ := end.(*fact.BasicBlockEnd).Successors
	want := map[uint32]bool{0x100C: true, 0x1004: true}
	if len(succ) != 2 {
		t.Fatalf("successors = %v, want two entries", succ)
	}
	for _, s := range succ {
		if !want[uint32(s)] {
			t.Errorf("unexpected successor %s", s)
		}
	}
}

func TestSubroutineCallDoesNotEndBlock(t *testing.T) {
	// spec.md §8 scenario 4: bl +4 at 0x1000, scanning continues at 0x1004.
	reader := memReader{
		0x1000: 0x48000005, // bl 0x1004
		0x1004: 0x4e800020, // blr
	}
	db := fact.NewDatabase()
	Run(db, reader, 0x1000)

	call, ok := db.Get(0x1000, fact.KindSubroutineCall)
	if !ok {
		t.Fatal("expected a SubroutineCall fact at 0x1000")
	}
	if target := call.(*fact.SubroutineCall).Target; target != 0x1004 {
		t.Errorf("Target = %s, want 0x1004", target)
	}
	if _, ok := db.Get(0x1004, fact.KindSubroutine); !ok {
		t.Error("expected a Subroutine fact at 0x1004")
	}
	if _, ok := db.Get(0x1004, fact.KindBranchTarget); !ok {
		t.Error("expected a BranchTarget fact at 0x1004")
	}
	if _, ok := db.Get(0x1000, fact.KindBasicBlockEnd); ok {
		t.Error("a linking branch must not end the block")
	}
}
