package expr

// referencedFields collects the field-reference visitor used by the
// predicate-pushdown rule (rewrite package) to decide whether a Foreach
// projection preserves every column a downstream Filter needs.
type referencedFields struct {
	names   map[string]bool
	indices map[int]bool
}

func (r *referencedFields) AcceptConst(*Const) (bool, error) { return true, nil }

func (r *referencedFields) AcceptFieldRef(f *FieldRef) (bool, error) {
	if f.Name != "" {
		r.names[f.Name] = true
	} else {
		r.indices[f.Index] = true
	}
	return true, nil
}

func (r *referencedFields) AcceptDerefTuple(*DerefTuple) (bool, error) { return true, nil }
func (r *referencedFields) AcceptUnary(*Unary) (bool, error)           { return true, nil }
func (r *referencedFields) AcceptBinary(*Binary) (bool, error)         { return true, nil }
func (r *referencedFields) AcceptTernary(*Ternary) (bool, error)       { return true, nil }
func (r *referencedFields) AcceptFuncCall(*FuncCall) (bool, error)     { return true, nil }

// ReferencedFields returns the set of named and positional fields e reads.
func ReferencedFields(e Expr) (names map[string]bool, indices map[int]bool) {
	v := &referencedFields{names: map[string]bool{}, indices: map[int]bool{}}
	_ = VisitPreOrder(v, e)
	return v.names, v.indices
}
