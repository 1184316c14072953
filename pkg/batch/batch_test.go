package batch

import (
	"testing"
	"time"

	"github.com/mvanbem/decompiler/pkg/fact"
)

type memReader map[uint32]uint32

func (m memReader) Read(addr uint32) uint32 { return m[addr] }

func TestRunAnalyzesEveryEntryIndependently(t *testing.T) {
	reader := memReader{
		0x1000: 0x38600005, // addi r3, 0, 5
		0x1004: 0x4e800020, // blr
		0x2000: 0x38600007, // addi r3, 0, 7
		0x2004: 0x4e800020, // blr
	}
	entries := []fact.Address{0x1000, 0x2000}

	results := Run(entries, reader, 2, 10*time.Millisecond, nil)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("results[%d].Err = %v", i, r.Err)
		}
		if r.Entry != entries[i] {
			t.Errorf("results[%d].Entry = %s, want %s", i, r.Entry, entries[i])
		}
		if _, ok := r.DB.Get(r.Entry, fact.KindBasicBlock); !ok {
			t.Errorf("results[%d] has no BasicBlock fact at its entry", i)
		}
	}
	// Each analysis owns its own database: a fact in one must not leak
	// into the other.
	if _, ok := results[0].DB.Get(0x2000, fact.KindBasicBlock); ok {
		t.Error("entry 0x1000's database must not know about entry 0x2000's blocks")
	}
}

func TestRunReportsProgress(t *testing.T) {
	reader := memReader{0x1000: 0x4e800020}
	var reports int
	Run([]fact.Address{0x1000}, reader, 1, 5*time.Millisecond, func(Progress) {
		reports++
	})
	if reports == 0 {
		t.Error("expected at least the final progress report")
	}
}
