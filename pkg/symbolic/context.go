package symbolic

import (
	"fmt"
	"sort"
)

// Context owns one hash-consed expression DAG and the variable
// assignment side-table over it. It is single-owner: the intended usage
// is one Context per analysis, mutated by one goroutine at a time.
type Context[V VariableName] struct {
	nodes []node[V]
	index map[string]ExprRef

	assignments map[ExprRef]ExprRef
}

// NewContext creates an empty expression graph.
func NewContext[V VariableName]() *Context[V] {
	return &Context[V]{
		index:       make(map[string]ExprRef),
		assignments: make(map[ExprRef]ExprRef),
	}
}

func (c *Context[V]) key(n node[V]) string {
	return fmt.Sprintf("%d|%d|%v|%v", n.kind, n.literal, n.variable, n.refs)
}

// intern returns the existing reference for a structurally equal node, or
// allocates a new one.
func (c *Context[V]) intern(n node[V]) ExprRef {
	k := c.key(n)
	if ref, ok := c.index[k]; ok {
		return ref
	}
	ref := ExprRef(len(c.nodes))
	c.nodes = append(c.nodes, n)
	c.index[k] = ref
	return ref
}

func (c *Context[V]) Get(ref ExprRef) (kind string, ok bool) {
	if int(ref) < 0 || int(ref) >= len(c.nodes) {
		return "", false
	}
	return c.nodes[ref].kindName(), true
}

func (k exprKind) String() string {
	switch k {
	case kindLiteral:
		return "literal"
	case kindVariable:
		return "variable"
	case kindRead:
		return "read"
	case kindPhi:
		return "phi"
	case kindAdd:
		return "add"
	case kindMul:
		return "mul"
	case kindBitOr:
		return "bit_or"
	case kindBitAnd:
		return "bit_and"
	case kindNot:
		return "not"
	case kindEqual:
		return "equal"
	case kindLessSigned:
		return "less_signed"
	case kindLessUnsigned:
		return "less_unsigned"
	default:
		return "?"
	}
}

func (n node[V]) kindName() string { return n.kind.String() }

// Literal interns a constant.
func (c *Context[V]) Literal(v uint32) ExprRef {
	return c.intern(node[V]{kind: kindLiteral, literal: v})
}

// Variable interns a reference to a named variable.
func (c *Context[V]) Variable(v V) ExprRef {
	return c.intern(node[V]{kind: kindVariable, variable: v})
}

// IsVariable reports whether ref names a Variable node, and if so which.
func (c *Context[V]) IsVariable(ref ExprRef) (V, bool) {
	n := c.nodes[ref]
	if n.kind != kindVariable {
		var zero V
		return zero, false
	}
	return n.variable, true
}

// IsLiteral reports whether ref names a Literal node, and if so its value.
func (c *Context[V]) IsLiteral(ref ExprRef) (uint32, bool) {
	n := c.nodes[ref]
	if n.kind != kindLiteral {
		return 0, false
	}
	return n.literal, true
}

// Assign records that variable now resolves to expr. Assigning the same
// variable twice is permitted; the later assignment wins. Panics if
// variable does not name a Variable node.
func (c *Context[V]) Assign(variable, expr ExprRef) {
	if _, ok := c.IsVariable(variable); !ok {
		panic("symbolic: Assign called on a non-Variable expression")
	}
	c.assignments[variable] = expr
}

// Lookup returns the expression a variable has been assigned, if any.
func (c *Context[V]) Lookup(variable ExprRef) (ExprRef, bool) {
	e, ok := c.assignments[variable]
	return e, ok
}

// Read interns a symbolic memory load from addr.
func (c *Context[V]) Read(addr ExprRef) ExprRef {
	return c.intern(node[V]{kind: kindRead, refs: []ExprRef{addr}})
}

// Not interns the bitwise complement of operand, with Not(Literal) and
// Not(Not) collapsed per spec.md §4.6.
func (c *Context[V]) Not(operand ExprRef) ExprRef {
	if lit, ok := c.IsLiteral(operand); ok {
		return c.Literal(^lit)
	}
	n := c.nodes[operand]
	if n.kind == kindNot {
		return n.refs[0]
	}
	return c.intern(node[V]{kind: kindNot, refs: []ExprRef{operand}})
}

func sortByIndex(refs []ExprRef) {
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
}

func dedupe(refs []ExprRef) []ExprRef {
	seen := make(map[ExprRef]bool, len(refs))
	out := refs[:0:0]
	for _, r := range refs {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// flatten expands nested nodes of the given kind in-place, matching the
// "flatten nested X" rule each n-ary operator's normalization table entry
// specifies.
func (c *Context[V]) flatten(exprs []ExprRef, kind exprKind) []ExprRef {
	var out []ExprRef
	todo := append([]ExprRef(nil), exprs...)
	for len(todo) > 0 {
		e := todo[0]
		todo = todo[1:]
		if c.nodes[e].kind == kind {
			todo = append(append([]ExprRef(nil), c.nodes[e].refs...), todo...)
			continue
		}
		out = append(out, e)
	}
	return out
}

// Add builds a normalized n-ary sum: flattens nested Add, folds literal
// operands into one literal (dropped if zero), collapses 0/1-ary results,
// and sorts the remaining operands by interned index.
func (c *Context[V]) Add(exprs []ExprRef) ExprRef {
	flat := c.flatten(exprs, kindAdd)
	var literalSum uint32
	var terms []ExprRef
	for _, e := range flat {
		if lit, ok := c.IsLiteral(e); ok {
			literalSum += lit
			continue
		}
		terms = append(terms, e)
	}
	if literalSum != 0 {
		terms = append(terms, c.Literal(literalSum))
	}
	switch len(terms) {
	case 0:
		return c.Literal(0)
	case 1:
		return terms[0]
	default:
		sortByIndex(terms)
		return c.intern(node[V]{kind: kindAdd, refs: terms})
	}
}

// Mul builds a normalized n-ary product: flattens nested Mul, folds
// literal operands, short-circuits on a zero operand, and collapses
// 0/1-ary results.
func (c *Context[V]) Mul(exprs []ExprRef) ExprRef {
	flat := c.flatten(exprs, kindMul)
	literalProduct := uint32(1)
	var terms []ExprRef
	for _, e := range flat {
		if lit, ok := c.IsLiteral(e); ok {
			if lit == 0 {
				return c.Literal(0)
			}
			literalProduct *= lit
			continue
		}
		terms = append(terms, e)
	}
	if literalProduct != 1 {
		terms = append(terms, c.Literal(literalProduct))
	}
	switch len(terms) {
	case 0:
		return c.Literal(1)
	case 1:
		return terms[0]
	default:
		sortByIndex(terms)
		return c.intern(node[V]{kind: kindMul, refs: terms})
	}
}

// BitOr builds a normalized bitwise OR: dedupes operands and collapses a
// single surviving operand. Panics on an empty operand list (spec.md §4.6
// treats BitOr/BitAnd as requiring at least one operand, unlike Add/Mul).
func (c *Context[V]) BitOr(exprs []ExprRef) ExprRef {
	return c.bitNary(exprs, kindBitOr)
}

// BitAnd builds a normalized bitwise AND; see BitOr.
func (c *Context[V]) BitAnd(exprs []ExprRef) ExprRef {
	return c.bitNary(exprs, kindBitAnd)
}

func (c *Context[V]) bitNary(exprs []ExprRef, kind exprKind) ExprRef {
	if len(exprs) == 0 {
		panic("symbolic: BitOr/BitAnd requires at least one operand")
	}
	terms := dedupe(exprs)
	if len(terms) == 1 {
		return terms[0]
	}
	sortByIndex(terms)
	return c.intern(node[V]{kind: kind, refs: terms})
}

// Equal builds a normalized equality predicate: identical operands fold
// to literal 1, two distinct literals fold to literal 0, otherwise
// operands are stored in sorted order (so Equal(x,y) == Equal(y,x)).
func (c *Context[V]) Equal(lhs, rhs ExprRef) ExprRef {
	if lhs == rhs {
		return c.Literal(1)
	}
	litL, okL := c.IsLiteral(lhs)
	litR, okR := c.IsLiteral(rhs)
	if okL && okR {
		if litL == litR {
			return c.Literal(1)
		}
		return c.Literal(0)
	}
	if rhs < lhs {
		lhs, rhs = rhs, lhs
	}
	return c.intern(node[V]{kind: kindEqual, refs: []ExprRef{lhs, rhs}})
}

// LessSigned builds a signed less-than predicate. Operand order is
// semantically significant and is never reordered.
func (c *Context[V]) LessSigned(lhs, rhs ExprRef) ExprRef {
	if lhs == rhs {
		return c.Literal(0)
	}
	if litL, okL := c.IsLiteral(lhs); okL {
		if litR, okR := c.IsLiteral(rhs); okR {
			if int32(litL) < int32(litR) {
				return c.Literal(1)
			}
			return c.Literal(0)
		}
	}
	return c.intern(node[V]{kind: kindLessSigned, refs: []ExprRef{lhs, rhs}})
}

// LessUnsigned builds an unsigned less-than predicate. See LessSigned.
func (c *Context[V]) LessUnsigned(lhs, rhs ExprRef) ExprRef {
	if lhs == rhs {
		return c.Literal(0)
	}
	if litL, okL := c.IsLiteral(lhs); okL {
		if litR, okR := c.IsLiteral(rhs); okR {
			if litL < litR {
				return c.Literal(1)
			}
			return c.Literal(0)
		}
	}
	return c.intern(node[V]{kind: kindLessUnsigned, refs: []ExprRef{lhs, rhs}})
}

// Phi builds a normalized merge node: flattens nested Phi and sorts by
// interned index.
func (c *Context[V]) Phi(exprs []ExprRef) ExprRef {
	flat := c.flatten(exprs, kindPhi)
	terms := append([]ExprRef(nil), flat...)
	sortByIndex(terms)
	return c.intern(node[V]{kind: kindPhi, refs: terms})
}

// Leaves returns the immediate sub-references of e, per spec.md §4.6's
// get_expr_leaves: none for Literal/Variable, the one operand for
// Read/Not, both operands for Equal/LessSigned/LessUnsigned, and every
// operand for Phi/Add/Mul/BitOr/BitAnd.
func (c *Context[V]) Leaves(e ExprRef) []ExprRef {
	n := c.nodes[e]
	switch n.kind {
	case kindLiteral, kindVariable:
		return nil
	default:
		return append([]ExprRef(nil), n.refs...)
	}
}

// MapLeaves deeply rewrites e by applying f to every Literal/Variable
// leaf and rebuilding interior nodes via the normalizing constructors. f
// is not re-applied to its own result (no re-entrant mapping of a leaf
// that happens to resolve to another leaf).
func (c *Context[V]) MapLeaves(e ExprRef, f func(*Context[V], ExprRef) ExprRef) ExprRef {
	n := c.nodes[e]
	switch n.kind {
	case kindLiteral, kindVariable:
		return f(c, e)
	case kindRead:
		return c.Read(c.MapLeaves(n.refs[0], f))
	case kindNot:
		return c.Not(c.MapLeaves(n.refs[0], f))
	case kindPhi:
		return c.Phi(c.mapRefs(n.refs, f))
	case kindAdd:
		return c.Add(c.mapRefs(n.refs, f))
	case kindMul:
		return c.Mul(c.mapRefs(n.refs, f))
	case kindBitOr:
		return c.BitOr(c.mapRefs(n.refs, f))
	case kindBitAnd:
		return c.BitAnd(c.mapRefs(n.refs, f))
	case kindEqual:
		return c.Equal(c.MapLeaves(n.refs[0], f), c.MapLeaves(n.refs[1], f))
	case kindLessSigned:
		return c.LessSigned(c.MapLeaves(n.refs[0], f), c.MapLeaves(n.refs[1], f))
	case kindLessUnsigned:
		return c.LessUnsigned(c.MapLeaves(n.refs[0], f), c.MapLeaves(n.refs[1], f))
	default:
		panic("symbolic: MapLeaves: unknown node kind")
	}
}

func (c *Context[V]) mapRefs(refs []ExprRef, f func(*Context[V], ExprRef) ExprRef) []ExprRef {
	out := make([]ExprRef, len(refs))
	for i, r := range refs {
		out[i] = c.MapLeaves(r, f)
	}
	return out
}
