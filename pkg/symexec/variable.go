// Package symexec is the per-block machine-state abstraction: it reads
// and writes symbolic register values and produces an Update describing
// each instruction's effect.
package symexec

import (
	"fmt"

	"github.com/mvanbem/decompiler/pkg/fact"
	"github.com/mvanbem/decompiler/pkg/ppc"
	"github.com/mvanbem/decompiler/pkg/symbolic"
)

// VarKind tags which of the four named-variable shapes (plus anonymous
// numbered variables) a Var is.
type VarKind int

const (
	VarGarbage VarKind = iota
	VarRegisterEntering
	VarRegisterLeaving
	VarReturn
	VarNumbered
)

// Var is the variable-name sum type for this domain: Garbage (an
// ABI-clobbered value that well-behaved code never observes),
// RegisterEntering{block, register}, RegisterLeaving{block, register},
// Return{call-site}, and anonymous numbered variables used to name
// memory-read results and other not-exactly-representable values.
type Var struct {
	Kind     VarKind
	Block    fact.Address
	Register ppc.Register
	CallSite fact.Address
	Number   int
}

func (v Var) String() string {
	switch v.Kind {
	case VarGarbage:
		return "%garbage"
	case VarRegisterEntering:
		return fmt.Sprintf("%%%s.entering.%s", v.Register, v.Block)
	case VarRegisterLeaving:
		return fmt.Sprintf("%%%s.leaving.%s", v.Register, v.Block)
	case VarReturn:
		return fmt.Sprintf("%%return.%s", v.CallSite)
	case VarNumbered:
		return fmt.Sprintf("%%t.%d", v.Number)
	default:
		return "%?"
	}
}

// Context is the expression graph specialized to this domain's variable
// names; one instance per analysis.
type Context = symbolic.Context[Var]

// NewContext creates an empty expression graph for one analysis.
func NewContext() *Context { return symbolic.NewContext[Var]() }

// Garbage returns the (singleton, interned) ABI-clobbered value.
func Garbage(ctx *Context) symbolic.ExprRef { return ctx.Variable(Var{Kind: VarGarbage}) }

// RegisterEntering returns the variable naming register's value on entry
// to block.
func RegisterEntering(ctx *Context, block fact.Address, register ppc.Register) symbolic.ExprRef {
	return ctx.Variable(Var{Kind: VarRegisterEntering, Block: block, Register: register})
}

// RegisterLeaving returns the variable naming register's value on exit
// from block.
func RegisterLeaving(ctx *Context, block fact.Address, register ppc.Register) symbolic.ExprRef {
	return ctx.Variable(Var{Kind: VarRegisterLeaving, Block: block, Register: register})
}

// Return returns the variable naming the R3 result of the call at
// callSite.
func Return(ctx *Context, callSite fact.Address) symbolic.ExprRef {
	return ctx.Variable(Var{Kind: VarReturn, CallSite: callSite})
}

// NumberedAllocator hands out fresh, globally unique anonymous numbered
// variables for one analysis.
type NumberedAllocator struct {
	next int
}

// Next allocates a fresh numbered variable.
func (a *NumberedAllocator) Next(ctx *Context) symbolic.ExprRef {
	v := ctx.Variable(Var{Kind: VarNumbered, Number: a.next})
	a.next++
	return v
}
