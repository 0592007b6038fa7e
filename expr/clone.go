package expr

// Clone deep-copies an expression tree. Used by rewrite rules (filter
// merge, predicate pushdown duplication over Union) that must not alias
// nodes across two places in the plan, mirroring sql.CloneExpr.
func Clone(e Expr) Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *Const:
		c := *n
		return &c
	case *FieldRef:
		f := *n
		return &f
	case *DerefTuple:
		d := *n
		return &d
	case *Unary:
		return &Unary{Op: n.Op, Operand: Clone(n.Operand)}
	case *Binary:
		return &Binary{Op: n.Op, L: Clone(n.L), R: Clone(n.R)}
	case *Ternary:
		return &Ternary{Cond: Clone(n.Cond), B0: Clone(n.B0), B1: Clone(n.B1)}
	case *FuncCall:
		params := make([]Expr, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = Clone(p)
		}
		return &FuncCall{Name: n.Name, Parameters: params}
	default:
		return e
	}
}

// And builds a AND b, collapsing a nil operand (spec.md §4.3's filter
// merge starts from an optional existing predicate).
func And(a, b Expr) Expr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &Binary{Op: OpAnd, L: a, R: b}
}
