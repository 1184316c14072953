package block

import (
	"testing"

	"github.com/mvanbem/decompiler/pkg/discover"
	"github.com/mvanbem/decompiler/pkg/fact"
)

type memReader map[uint32]uint32

func (m memReader) Read(addr uint32) uint32 { return m[addr] }

func TestBuildLinksConditionalBranchSuccessors(t *testing.T) {
	// spec.md §8 scenario 3 carried through block construction: beq +12
	// at 0x1000 ends a one-instruction block with two successors, each of
	// which starts its own block. The fall-through block at 0x1004 runs up
	// to the branch target and falls into it, so the branch-target block
	// has two predecessors.
	reader := memReader{
		0x1000: 0x4182000c, // beq 0x100c
		0x1004: 0x38000000, // addi r0, 0, 0  (fall-through block)
		0x1008: 0x60000000, // last word of the fall-through block
		0x100c: 0x4e800020, // blr            (branch-target block)
	}
	db := fact.NewDatabase()
	discover.Run(db, reader, 0x1000)
	Build(db, 0x1000)

	f, ok := db.Get(0x1000, fact.KindBasicBlock)
	if !ok {
		t.Fatal("expected a BasicBlock fact at 0x1000")
	}
	bb := f.(*fact.BasicBlock)
	if bb.End != 0x1004 {
		t.Errorf("End = %s, want 0x1004", bb.End)
	}
	if len(bb.Successors) != 2 {
		t.Fatalf("Successors = %v, want two entries", bb.Successors)
	}

	fallthroughBlock, ok := db.Get(0x1004, fact.KindBasicBlock)
	if !ok {
		t.Fatal("expected a BasicBlock fact at the fall-through address 0x1004")
	}
	fb := fallthroughBlock.(*fact.BasicBlock)
	if len(fb.Predecessors) != 1 || fb.Predecessors[0] != 0x1000 {
		t.Errorf("fall-through predecessors = %v, want [0x1000]", fb.Predecessors)
	}

	targetBlock, ok := db.Get(0x100c, fact.KindBasicBlock)
	if !ok {
		t.Fatal("expected a BasicBlock fact at the branch target 0x100c")
	}
	tb := targetBlock.(*fact.BasicBlock)
	if len(tb.Predecessors) != 2 || tb.Predecessors[0] != 0x1000 || tb.Predecessors[1] != 0x1004 {
		t.Errorf("branch-target predecessors = %v, want [0x1000 0x1004]", tb.Predecessors)
	}
}

func TestBuildSubroutineCallStaysInOneBlock(t *testing.T) {
	// spec.md §8 scenario 4: a linking branch records no BasicBlockEnd, so
	// the call does not end the block by itself. Here the call target
	// 0x1004 is also a branch target, so the block ends there by
	// fall-through; it still covers the call instruction.
	reader := memReader{
		0x1000: 0x48000005, // bl 0x1004
		0x1004: 0x4e800020, // blr
	}
	db := fact.NewDatabase()
	discover.Run(db, reader, 0x1000)
	Build(db, 0x1000)

	f, ok := db.Get(0x1000, fact.KindBasicBlock)
	if !ok {
		t.Fatal("expected a BasicBlock fact at 0x1000")
	}
	bb := f.(*fact.BasicBlock)
	if bb.End <= 0x1000 {
		t.Errorf("End = %s, want an address past the block's start", bb.End)
	}
}

func TestBuildEmptyBlockListHasConsistentPredecessors(t *testing.T) {
	reader := memReader{0x1000: 0x4e800020} // blr
	db := fact.NewDatabase()
	discover.Run(db, reader, 0x1000)
	Build(db, 0x1000)

	f, ok := db.Get(0x1000, fact.KindBasicBlock)
	if !ok {
		t.Fatal("expected a BasicBlock fact at 0x1000")
	}
	bb := f.(*fact.BasicBlock)
	if len(bb.Predecessors) != 0 {
		t.Errorf("Predecessors = %v, want none (entry block)", bb.Predecessors)
	}
	if len(bb.Successors) != 0 {
		t.Errorf("Successors = %v, want none (blr diverges)", bb.Successors)
	}
}
