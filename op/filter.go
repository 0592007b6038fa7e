package op

import (
	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/perr"
	"github.com/dianpeng/piglet/schema"
)

// Filter passes through its input schema unchanged; its predicate is
// checked for field-reference resolvability against the input schema.
type Filter struct {
	Base
	Pred expr.Expr
}

func NewFilter(inPipe, outPipe string, pred expr.Expr) *Filter {
	return &Filter{Base: NewBase([]string{inPipe}, outPipe), Pred: pred}
}

func (*Filter) Tag() Tag { return TagFilter }

func (f *Filter) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if err := validateSingleInput(TagFilter, inputs); err != nil {
		return nil, err
	}
	return inputs[0], nil
}

func (f *Filter) CheckSchemaConformance(inputs []*schema.BagType) error {
	if err := validateSingleInput(TagFilter, inputs); err != nil {
		return err
	}
	return checkExprConformance(TagFilter, inputs[0], f.Pred)
}

func (*Filter) LineageTag() string { return "FILTER" }

func (f *Filter) LineageParams() string { return expr.Print(f.Pred) }

var _ Operator = (*Filter)(nil)

// checkExprConformance is shared by every variant that carries one or
// more predicate/generator expressions: when the schema is known, named
// field references must resolve; when it is unknown, only positional
// references are legal (spec.md §4.2).
func checkExprConformance(tag Tag, bag *schema.BagType, e expr.Expr) error {
	if e == nil {
		return nil
	}
	v := &conformanceVisitor{tag: tag, bag: bag}
	if err := expr.VisitPreOrder(v, e); err != nil {
		return err
	}
	return v.err
}

type conformanceVisitor struct {
	tag Tag
	bag *schema.BagType
	err error
}

func (v *conformanceVisitor) fail(msg string, args ...interface{}) (bool, error) {
	v.err = perr.New("schema", perr.SchemaError, msg, args...)
	return false, v.err
}

func (v *conformanceVisitor) AcceptConst(*expr.Const) (bool, error) { return true, nil }

func (v *conformanceVisitor) AcceptFieldRef(f *expr.FieldRef) (bool, error) {
	if f.Name == "" {
		return true, nil // positional refs are always legal
	}
	if v.bag == nil || v.bag.Elem == nil {
		return v.fail("%s: named field %q referenced but input schema is unknown", v.tag, f.Name)
	}
	if _, ok := v.bag.Elem.FieldByName(f.Name); !ok {
		return v.fail("%s: named field %q does not resolve in input schema", v.tag, f.Name)
	}
	return true, nil
}

func (v *conformanceVisitor) AcceptDerefTuple(*expr.DerefTuple) (bool, error) { return true, nil }
func (v *conformanceVisitor) AcceptUnary(*expr.Unary) (bool, error)          { return true, nil }
func (v *conformanceVisitor) AcceptBinary(*expr.Binary) (bool, error)        { return true, nil }
func (v *conformanceVisitor) AcceptTernary(*expr.Ternary) (bool, error)      { return true, nil }
func (v *conformanceVisitor) AcceptFuncCall(*expr.FuncCall) (bool, error)    { return true, nil }
