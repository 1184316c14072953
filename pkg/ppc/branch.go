package ppc

import "fmt"

// CtrBehaviorKind describes how a branch's CTR decrement-and-test works.
type CtrBehaviorKind int

const (
	CtrNone CtrBehaviorKind = iota
	CtrDecrementBranchNonzero
	CtrDecrementBranchZero
)

func (k CtrBehaviorKind) String() string {
	switch k {
	case CtrDecrementBranchNonzero:
		return "dnz"
	case CtrDecrementBranchZero:
		return "dz"
	default:
		return ""
	}
}

// ConditionBehaviorKind tags whether a branch is conditioned on a bit
// being clear, set, or not conditioned at all.
type ConditionBehaviorKind int

const (
	ConditionAlways ConditionBehaviorKind = iota
	ConditionBranchFalse
	ConditionBranchTrue
)

// ConditionBehavior describes the condition-register test, if any, that
// gates a conditional branch.
type ConditionBehavior struct {
	Kind ConditionBehaviorKind
	Bit  ConditionBit
}

func (c ConditionBehavior) String() string {
	switch c.Kind {
	case ConditionBranchFalse:
		return "not " + c.Bit.String()
	case ConditionBranchTrue:
		return c.Bit.String()
	default:
		return "always"
	}
}

// decodeBo splits the 5-bit BO field into its CTR and condition behavior,
// per the PowerPC architecture's BO-field encoding.
func decodeBo(bo uint32, bi ConditionBit) (ConditionBehavior, CtrBehaviorKind) {
	var ctr CtrBehaviorKind
	switch bo & 0x06 {
	case 0x00:
		ctr = CtrDecrementBranchNonzero
	case 0x02:
		ctr = CtrDecrementBranchZero
	default:
		ctr = CtrNone
	}

	var cond ConditionBehavior
	switch bo & 0x18 {
	case 0x00:
		cond = ConditionBehavior{Kind: ConditionBranchFalse, Bit: bi}
	case 0x08:
		cond = ConditionBehavior{Kind: ConditionBranchTrue, Bit: bi}
	default:
		cond = ConditionBehavior{Kind: ConditionAlways}
	}
	return cond, ctr
}

// BranchInfo is the uniform branch descriptor every branch-bearing
// Instruction exposes.
type BranchInfo struct {
	Condition ConditionBehavior
	Ctr       CtrBehaviorKind
	Link      bool
	Target    *uint32 // nil if not statically resolvable (e.g. bctr/bclr)
}

// IsConditional reports whether either the condition test or the CTR test
// is non-trivial.
func (b BranchInfo) IsConditional() bool {
	return b.Condition.Kind != ConditionAlways || b.Ctr != CtrNone
}

// Diverges reports whether control never falls through: unconditional and
// non-linking.
func (b BranchInfo) Diverges() bool {
	return !b.IsConditional() && !b.Link
}

func (b BranchInfo) String() string {
	s := "branch"
	if b.Link {
		s += " link"
	}
	if b.IsConditional() {
		s += fmt.Sprintf(" if %s", b.Condition)
		if b.Ctr != CtrNone {
			s += fmt.Sprintf(" ctr(%s)", b.Ctr)
		}
	}
	if b.Target != nil {
		s += fmt.Sprintf(" -> 0x%08x", *b.Target)
	} else {
		s += " -> ?"
	}
	return s
}
