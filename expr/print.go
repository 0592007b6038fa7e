package expr

import (
	"strconv"
	"strings"
)

// Print renders a canonical, deterministic string for e. It is used both
// for human-readable diagnostics and as the literal-parameter component
// of an operator's lineage string (spec.md §3): two structurally
// identical expressions must render identically, and two expressions
// differing in a literal must render differently.
func Print(e Expr) string {
	buf := &strings.Builder{}
	printTo(buf, e)
	return buf.String()
}

func printTo(buf *strings.Builder, e Expr) {
	if e == nil {
		buf.WriteString("<nil>")
		return
	}
	switch n := e.(type) {
	case *Const:
		buf.WriteString(n.String())
	case *FieldRef:
		buf.WriteString(n.String())
	case *DerefTuple:
		buf.WriteString("outer[")
		buf.WriteString(strconv.Itoa(n.Depth))
		buf.WriteString("].")
		buf.WriteString(n.Field.String())
	case *Unary:
		switch n.Op {
		case OpNeg:
			buf.WriteString("-")
		case OpNot:
			buf.WriteString("not ")
		}
		buf.WriteString("(")
		printTo(buf, n.Operand)
		buf.WriteString(")")
	case *Binary:
		buf.WriteString("(")
		printTo(buf, n.L)
		buf.WriteString(" ")
		buf.WriteString(n.Op.String())
		buf.WriteString(" ")
		printTo(buf, n.R)
		buf.WriteString(")")
	case *Ternary:
		buf.WriteString("(")
		printTo(buf, n.Cond)
		buf.WriteString(" ? ")
		printTo(buf, n.B0)
		buf.WriteString(" : ")
		printTo(buf, n.B1)
		buf.WriteString(")")
	case *FuncCall:
		buf.WriteString(n.Name)
		buf.WriteString("(")
		for i, p := range n.Parameters {
			if i > 0 {
				buf.WriteString(",")
			}
			printTo(buf, p)
		}
		buf.WriteString(")")
	default:
		buf.WriteString("<expr>")
	}
}
