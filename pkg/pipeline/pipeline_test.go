package pipeline

import (
	"testing"

	"github.com/mvanbem/decompiler/pkg/block"
	"github.com/mvanbem/decompiler/pkg/discover"
	"github.com/mvanbem/decompiler/pkg/fact"
	"github.com/mvanbem/decompiler/pkg/ppc"
	"github.com/mvanbem/decompiler/pkg/symbolic"
	"github.com/mvanbem/decompiler/pkg/symexec"
)

type memReader map[uint32]uint32

func (m memReader) Read(addr uint32) uint32 { return m[addr] }

// TestStackWriteNotRooted is spec.md §8 scenario 5: a write whose address
// normalizes to the entry point's own R1-entering variable plus a
// negative offset lives entirely in this function's stack frame and must
// not be pushed as a root.
func TestStackWriteNotRooted(t *testing.T) {
	reader := memReader{
		0x2000: 0x93E1FFF0, // stw r31, -16(r1)
		0x2004: 0x4e800020, // blr
	}
	db := fact.NewDatabase()
	discover.Run(db, reader, 0x2000)
	block.Build(db, 0x2000)

	ctx := symexec.NewContext()
	numbered := &symexec.NumberedAllocator{}
	Pass1Forward(db, reader, ctx, numbered)
	Pass2BackwardRoot(db, ctx, 0x2000)

	entryR1 := symexec.RegisterEntering(ctx, 0x2000, ppc.RegisterFromGpr(1))
	if _, assigned := ctx.Lookup(entryR1); assigned {
		t.Error("the stack-local write must not have pulled r1.entering into the rooted set")
	}
}

// TestPhiSynthesisAtMergeBlock is spec.md §8 scenario 6: two predecessor
// blocks both write r3; tracing the merge block's RegisterEntering{r3}
// must produce a Phi of the two RegisterLeaving variables, sorted by
// interned index.
func TestPhiSynthesisAtMergeBlock(t *testing.T) {
	reader := memReader{
		0x1000: 0x4182000c, // beq 0x100c
		0x1004: 0x38600001, // addi r3, 0, 1   (P)
		0x1008: 0x48000008, // b 0x1010        (P -> M)
		0x100C: 0x38600002, // addi r3, 0, 2   (Q)
		0x1010: 0x48000004, // b 0x1014        (M, merge point)
		0x1014: 0x4e800020, // blr
	}
	db := fact.NewDatabase()
	discover.Run(db, reader, 0x1000)
	block.Build(db, 0x1000)

	ctx := symexec.NewContext()
	numbered := &symexec.NumberedAllocator{}
	Pass1Forward(db, reader, ctx, numbered)
	Pass2BackwardRoot(db, ctx, 0x1000)

	mergeEntering := symexec.RegisterEntering(ctx, 0x1010, ppc.RegisterFromGpr(3))
	assignment, ok := ctx.Lookup(mergeEntering)
	if !ok {
		t.Fatal("expected r3.entering at the merge block to have been assigned a Phi")
	}
	kind, _ := ctx.Get(assignment)
	if kind != "phi" {
		t.Fatalf("assignment kind = %q, want phi", kind)
	}

	leaves := ctx.Leaves(assignment)
	if len(leaves) != 2 {
		t.Fatalf("phi operand count = %d, want 2", len(leaves))
	}
	if leaves[0] >= leaves[1] {
		t.Errorf("phi operands not sorted by interned index: %v", leaves)
	}

	pLeaving := symexec.RegisterLeaving(ctx, 0x1004, ppc.RegisterFromGpr(3))
	qLeaving := symexec.RegisterLeaving(ctx, 0x100C, ppc.RegisterFromGpr(3))
	found := map[symbolic.ExprRef]bool{}
	for _, l := range leaves {
		found[l] = true
	}
	if !found[pLeaving] || !found[qLeaving] {
		t.Errorf("phi leaves = %v, want {%v, %v}", leaves, pLeaving, qLeaving)
	}

	pValue, _ := ctx.Lookup(pLeaving)
	if lit, ok := ctx.IsLiteral(pValue); !ok || lit != 1 {
		t.Errorf("P's r3.leaving = %s, want literal 1", ctx.Display(pValue))
	}
	qValue, _ := ctx.Lookup(qLeaving)
	if lit, ok := ctx.IsLiteral(qValue); !ok || lit != 2 {
		t.Errorf("Q's r3.leaving = %s, want literal 2", ctx.Display(qValue))
	}
}

func TestExtractBaseOffset(t *testing.T) {
	ctx := symexec.NewContext()
	v := symexec.RegisterEntering(ctx, 0x1000, ppc.RegisterFromGpr(1))

	if base, offset, ok := ExtractBaseOffset(ctx, ctx.Literal(42)); !ok || offset != 42 || base != ctx.Literal(0) {
		t.Errorf("literal decomposition = (%v, %v, %v)", base, offset, ok)
	}
	if base, offset, ok := ExtractBaseOffset(ctx, v); !ok || offset != 0 || base != v {
		t.Errorf("variable decomposition = (%v, %v, %v)", base, offset, ok)
	}
	add := ctx.Add([]symbolic.ExprRef{v, ctx.Literal(0xfffffff0)}) // -16
	if base, offset, ok := ExtractBaseOffset(ctx, add); !ok || base != v || offset != -16 {
		t.Errorf("add decomposition = (%v, %v, %v), want (%v, -16, true)", base, offset, ok, v)
	}

	w := symexec.RegisterEntering(ctx, 0x1000, ppc.RegisterFromGpr(2))
	twoVariables := ctx.Add([]symbolic.ExprRef{v, w})
	if _, _, ok := ExtractBaseOffset(ctx, twoVariables); ok {
		t.Error("a 2-ary Add of two variables must not decompose")
	}
}
