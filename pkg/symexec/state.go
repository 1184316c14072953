package symexec

import (
	"github.com/mvanbem/decompiler/pkg/fact"
	"github.com/mvanbem/decompiler/pkg/ppc"
	"github.com/mvanbem/decompiler/pkg/symbolic"
)

// MachineState is the per-block mapping from register to expression
// reference. The literal zero register is never tracked; reading an
// unwritten register lazily allocates a RegisterEntering variable for
// this block.
type MachineState struct {
	block     fact.Address
	registers map[ppc.Register]symbolic.ExprRef
}

// NewMachineState creates the initial state for block.
func NewMachineState(block fact.Address) *MachineState {
	return &MachineState{block: block, registers: make(map[ppc.Register]symbolic.ExprRef)}
}

// Get reads reg's current symbolic value.
func (s *MachineState) Get(ctx *Context, reg ppc.Register) symbolic.ExprRef {
	if reg.Kind == ppc.RegisterZero {
		return ctx.Literal(0)
	}
	if e, ok := s.registers[reg]; ok {
		return e
	}
	e := RegisterEntering(ctx, s.block, reg)
	s.registers[reg] = e
	return e
}

// Set writes reg's current symbolic value. Writes to the zero register
// are silently dropped.
func (s *MachineState) Set(reg ppc.Register, e symbolic.ExprRef) {
	if reg.Kind == ppc.RegisterZero {
		return
	}
	s.registers[reg] = e
}

// Written returns every register this state has an entry for (written,
// or read and thereby bound to a RegisterEntering variable).
func (s *MachineState) Written() []ppc.Register {
	out := make([]ppc.Register, 0, len(s.registers))
	for r := range s.registers {
		out = append(out, r)
	}
	return out
}

// AccessWidth re-exports fact.AccessWidth for callers that only import
// this package.
type AccessWidth = fact.AccessWidth

const (
	AccessByte     = fact.AccessByte
	AccessHalfword = fact.AccessHalfword
	AccessWord     = fact.AccessWord
)

// Write re-exports fact.Write.
type Write = fact.Write

// Update is the result of symbolically executing one instruction: a
// register-update mapping and an ordered list of memory writes.
type Update struct {
	Registers map[ppc.Register]symbolic.ExprRef
	Writes    []Write
}

// NewUpdate creates an empty update.
func NewUpdate() *Update {
	return &Update{Registers: make(map[ppc.Register]symbolic.ExprRef)}
}

// SetRegister records that reg should be updated to e. Writes to the
// zero register are silently dropped.
func (u *Update) SetRegister(reg ppc.Register, e symbolic.ExprRef) {
	if reg.Kind == ppc.RegisterZero {
		return
	}
	u.Registers[reg] = e
}

// AddWrite appends a memory write to the update.
func (u *Update) AddWrite(w Write) {
	u.Writes = append(u.Writes, w)
}

// Apply merges an update's register assignments into state and returns
// the list of writes, for the caller to record into the block's fact.
func Apply(state *MachineState, u *Update) []Write {
	for reg, e := range u.Registers {
		state.Set(reg, e)
	}
	return u.Writes
}
