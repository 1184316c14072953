// Package fact implements the monotonic fact database: a store of
// annotations keyed by (address, fact kind), with a secondary index kept
// in lockstep so callers can enumerate every address carrying a given
// kind.
package fact

import (
	"fmt"
	"sort"

	"github.com/mvanbem/decompiler/pkg/symbolic"
)

// Address is a code address: always 4-byte aligned for instructions.
type Address uint32

func (a Address) String() string { return fmt.Sprintf("0x%08x", uint32(a)) }

// Kind names one of the six fact kinds this database recognizes. Using a
// closed sum type (spec.md §9's preferred representation) instead of a
// runtime type tag keeps the kind set explicit.
type Kind int

const (
	KindBranchTarget Kind = iota
	KindSubroutine
	KindSubroutineCall
	KindBasicBlockEnd
	KindParseError
	KindBasicBlock
)

func (k Kind) String() string {
	switch k {
	case KindBranchTarget:
		return "branch_target"
	case KindSubroutine:
		return "subroutine"
	case KindSubroutineCall:
		return "subroutine_call"
	case KindBasicBlockEnd:
		return "basic_block_end"
	case KindParseError:
		return "parse_error"
	case KindBasicBlock:
		return "basic_block"
	default:
		return "?"
	}
}

// Fact is the closed sum type over every fact kind. Concrete types are
// BranchTarget, Subroutine, SubroutineCall, BasicBlockEnd, ParseError,
// and BasicBlock.
type Fact interface {
	fmt.Stringer
	Kind() Kind
}

// BranchTarget accumulates the set of source addresses that branch to
// this address. Default-constructible and accumulative.
type BranchTarget struct {
	Sources []Address // kept sorted ascending
}

func (*BranchTarget) Kind() Kind { return KindBranchTarget }

// RecordSource adds src to the sorted, deduplicated source set.
func (f *BranchTarget) RecordSource(src Address) {
	i := sort.Search(len(f.Sources), func(i int) bool { return f.Sources[i] >= src })
	if i < len(f.Sources) && f.Sources[i] == src {
		return
	}
	f.Sources = append(f.Sources, 0)
	copy(f.Sources[i+1:], f.Sources[i:])
	f.Sources[i] = src
}

func (f *BranchTarget) String() string {
	return fmt.Sprintf("#[branch_target(sources = %v)]", f.Sources)
}

// Subroutine marks an address as a recognized subroutine entry point.
type Subroutine struct{}

func (*Subroutine) Kind() Kind        { return KindSubroutine }
func (*Subroutine) String() string    { return "#[subroutine]" }

// SubroutineCall records that the instruction at this address is a
// linking branch (a call) to Target.
type SubroutineCall struct {
	Target Address
}

func (*SubroutineCall) Kind() Kind     { return KindSubroutineCall }
func (f *SubroutineCall) String() string {
	return fmt.Sprintf("#[subroutine_call(target = %s)]", f.Target)
}

// BasicBlockEnd records that a basic block ends at this address, with the
// given successors (empty means "interpreted as a return"). Default-
// constructible and accumulative.
type BasicBlockEnd struct {
	Successors []Address // kept sorted ascending, deduplicated
}

func (*BasicBlockEnd) Kind() Kind { return KindBasicBlockEnd }

// RecordSuccessor adds s to the sorted, deduplicated successor set.
func (f *BasicBlockEnd) RecordSuccessor(s Address) {
	i := sort.Search(len(f.Successors), func(i int) bool { return f.Successors[i] >= s })
	if i < len(f.Successors) && f.Successors[i] == s {
		return
	}
	f.Successors = append(f.Successors, 0)
	copy(f.Successors[i+1:], f.Successors[i:])
	f.Successors[i] = s
}

func (f *BasicBlockEnd) String() string {
	return fmt.Sprintf("#[basic_block_end(successors = %v)]", f.Successors)
}

// ParseError records a decode failure at this address.
type ParseError struct {
	Err error
}

func (*ParseError) Kind() Kind      { return KindParseError }
func (f *ParseError) String() string { return fmt.Sprintf("#[parse_error(%s)]", f.Err) }

// AccessWidth is the width of a memory access recorded on a Write.
type AccessWidth int

const (
	AccessByte AccessWidth = iota
	AccessHalfword
	AccessWord
)

func (w AccessWidth) String() string {
	switch w {
	case AccessByte:
		return "b"
	case AccessHalfword:
		return "h"
	case AccessWord:
		return "w"
	default:
		return "?"
	}
}

// Write is one memory write observed during symbolic execution of a
// basic block.
type Write struct {
	Width AccessWidth
	Addr  symbolic.ExprRef
	Data  symbolic.ExprRef
}

// BasicBlock is the materialized basic-block fact: its end address,
// sorted predecessor/successor lists, and the writes observed while
// symbolically executing it.
type BasicBlock struct {
	End          Address
	Predecessors []Address // sorted ascending
	Successors   []Address // sorted ascending
	Writes       []Write
}

func (*BasicBlock) Kind() Kind { return KindBasicBlock }
func (f *BasicBlock) String() string {
	return fmt.Sprintf("#[basic_block(end = %s, predecessors = %v, successors = %v)]", f.End, f.Predecessors, f.Successors)
}
