package op

import (
	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/schema"
)

const GroupAllKey = "all"

// Grouping implements GROUP BY (or GROUP ALL when Keys is empty). Its
// output schema is (group: K, <inputPipeName>: bag<inputTuple>) per
// spec.md §4.2.
type Grouping struct {
	Base
	Keys []expr.Expr
}

func NewGrouping(inPipe, outPipe string, keys []expr.Expr) *Grouping {
	return &Grouping{Base: NewBase([]string{inPipe}, outPipe), Keys: keys}
}

func (*Grouping) Tag() Tag { return TagGrouping }

func (g *Grouping) IsGroupAll() bool { return len(g.Keys) == 0 }

func (g *Grouping) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if err := validateSingleInput(TagGrouping, inputs); err != nil {
		return nil, err
	}
	var keyType schema.Type
	if g.IsGroupAll() {
		keyType = schema.Scalar(schema.CharArray)
	} else if len(g.Keys) == 1 {
		keyType = inferType(g.Keys[0], inputs[0])
	} else {
		fields := make([]schema.Field, len(g.Keys))
		for i, k := range g.Keys {
			fields[i] = schema.Field{Name: syntheticFieldName(i), Type: inferType(k, inputs[0])}
		}
		keyType = schema.TupleOf(schema.NewTupleType(fields...))
	}

	bagField := schema.Field{
		Name: g.InPipeNames()[0],
		Type: schema.BagOf(schema.NewBagType(inputs[0].Elem)),
	}
	tt := schema.NewTupleType(
		schema.Field{Name: "group", Type: keyType},
		bagField,
	)
	return schema.NewBagType(tt), nil
}

func (g *Grouping) CheckSchemaConformance(inputs []*schema.BagType) error {
	if err := validateSingleInput(TagGrouping, inputs); err != nil {
		return err
	}
	for _, k := range g.Keys {
		if err := checkExprConformance(TagGrouping, inputs[0], k); err != nil {
			return err
		}
	}
	return nil
}

func (*Grouping) LineageTag() string { return "GROUP" }

func (g *Grouping) LineageParams() string {
	if g.IsGroupAll() {
		return GroupAllKey
	}
	s := ""
	for i, k := range g.Keys {
		if i > 0 {
			s += ","
		}
		s += expr.Print(k)
	}
	return s
}

var _ Operator = (*Grouping)(nil)
