package op

import (
	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/schema"
)

// SortKey pairs an ordering expression with its direction.
type SortKey struct {
	Expr expr.Expr
	Desc bool
}

// OrderBy is a pure schema pass-through; the emitter is responsible for
// materializing the "helper Ordered case class" comparator (spec.md
// §4.3), not this package.
type OrderBy struct {
	Base
	Keys []SortKey
}

func NewOrderBy(inPipe, outPipe string, keys []SortKey) *OrderBy {
	return &OrderBy{Base: NewBase([]string{inPipe}, outPipe), Keys: keys}
}

func (*OrderBy) Tag() Tag { return TagOrderBy }

func (o *OrderBy) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if err := validateSingleInput(TagOrderBy, inputs); err != nil {
		return nil, err
	}
	return inputs[0], nil
}

func (o *OrderBy) CheckSchemaConformance(inputs []*schema.BagType) error {
	if err := validateSingleInput(TagOrderBy, inputs); err != nil {
		return err
	}
	for _, k := range o.Keys {
		if err := checkExprConformance(TagOrderBy, inputs[0], k.Expr); err != nil {
			return err
		}
	}
	return nil
}

func (*OrderBy) LineageTag() string { return "ORDER" }

func (o *OrderBy) LineageParams() string {
	s := ""
	for i, k := range o.Keys {
		if i > 0 {
			s += ","
		}
		s += expr.Print(k.Expr)
		if k.Desc {
			s += " desc"
		}
	}
	return s
}

var _ Operator = (*OrderBy)(nil)
