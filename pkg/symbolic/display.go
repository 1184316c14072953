package symbolic

import (
	"fmt"
	"strings"
)

// Display renders e as a parenthesized prefix expression: op(a, b, ...).
func (c *Context[V]) Display(e ExprRef) string {
	n := c.nodes[e]
	switch n.kind {
	case kindLiteral:
		return fmt.Sprintf("0x%x", n.literal)
	case kindVariable:
		return n.variable.String()
	case kindRead:
		return fmt.Sprintf("read(%s)", c.Display(n.refs[0]))
	case kindNot:
		return fmt.Sprintf("not(%s)", c.Display(n.refs[0]))
	case kindPhi:
		return fmt.Sprintf("phi(%s)", c.displayList(n.refs))
	case kindAdd:
		return fmt.Sprintf("add(%s)", c.displayList(n.refs))
	case kindMul:
		return fmt.Sprintf("mul(%s)", c.displayList(n.refs))
	case kindBitOr:
		return fmt.Sprintf("bit_or(%s)", c.displayList(n.refs))
	case kindBitAnd:
		return fmt.Sprintf("bit_and(%s)", c.displayList(n.refs))
	case kindEqual:
		return fmt.Sprintf("equal(%s, %s)", c.Display(n.refs[0]), c.Display(n.refs[1]))
	case kindLessSigned:
		return fmt.Sprintf("less_i(%s, %s)", c.Display(n.refs[0]), c.Display(n.refs[1]))
	case kindLessUnsigned:
		return fmt.Sprintf("less_u(%s, %s)", c.Display(n.refs[0]), c.Display(n.refs[1]))
	default:
		return "?"
	}
}

func (c *Context[V]) displayList(refs []ExprRef) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = c.Display(r)
	}
	return strings.Join(parts, ", ")
}
