package expr

// Visitor mirrors sql.ExprVisitor: one Accept method per tag, each
// returning (continue, error) so a visitor can prune a subtree by
// returning false without an error.
type Visitor interface {
	AcceptConst(*Const) (bool, error)
	AcceptFieldRef(*FieldRef) (bool, error)
	AcceptDerefTuple(*DerefTuple) (bool, error)
	AcceptUnary(*Unary) (bool, error)
	AcceptBinary(*Binary) (bool, error)
	AcceptTernary(*Ternary) (bool, error)
	AcceptFuncCall(*FuncCall) (bool, error)
}

// VisitPreOrder visits e and its children, node before children.
func VisitPreOrder(v Visitor, e Expr) error {
	if e == nil {
		return nil
	}
	goon, err := dispatch(v, e)
	if err != nil || !goon {
		return err
	}
	return visitChildren(v, e, VisitPreOrder)
}

// VisitPostOrder visits e and its children, children before node.
func VisitPostOrder(v Visitor, e Expr) error {
	if e == nil {
		return nil
	}
	if err := visitChildren(v, e, VisitPostOrder); err != nil {
		return err
	}
	_, err := dispatch(v, e)
	return err
}

func dispatch(v Visitor, e Expr) (bool, error) {
	switch e.Tag() {
	case TagConst:
		return v.AcceptConst(e.(*Const))
	case TagFieldRef:
		return v.AcceptFieldRef(e.(*FieldRef))
	case TagDerefTuple:
		return v.AcceptDerefTuple(e.(*DerefTuple))
	case TagUnary:
		return v.AcceptUnary(e.(*Unary))
	case TagBinary:
		return v.AcceptBinary(e.(*Binary))
	case TagTernary:
		return v.AcceptTernary(e.(*Ternary))
	case TagFuncCall:
		return v.AcceptFuncCall(e.(*FuncCall))
	default:
		return true, nil
	}
}

func visitChildren(v Visitor, e Expr, walk func(Visitor, Expr) error) error {
	switch n := e.(type) {
	case *Unary:
		return walk(v, n.Operand)
	case *Binary:
		if err := walk(v, n.L); err != nil {
			return err
		}
		return walk(v, n.R)
	case *Ternary:
		if err := walk(v, n.Cond); err != nil {
			return err
		}
		if err := walk(v, n.B0); err != nil {
			return err
		}
		return walk(v, n.B1)
	case *FuncCall:
		for _, p := range n.Parameters {
			if err := walk(v, p); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
