package op

import (
	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/perr"
	"github.com/dianpeng/piglet/schema"
)

// Foreach applies a Generator to every input tuple. An empty
// GeneratorList is rejected at construction time per spec.md §8's
// boundary behavior ("Empty generator list in Foreach => InvalidPlan").
type Foreach struct {
	Base
	Gen Generator
}

func NewForeach(inPipe, outPipe string, gen Generator) (*Foreach, error) {
	if gl, ok := gen.(*GeneratorList); ok && len(gl.Exprs) == 0 {
		return nil, perr.New("plan", perr.InvalidPlan, "FOREACH generator list must not be empty")
	}
	return &Foreach{Base: NewBase([]string{inPipe}, outPipe), Gen: gen}, nil
}

func (*Foreach) Tag() Tag { return TagForeach }

func (f *Foreach) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if err := validateSingleInput(TagForeach, inputs); err != nil {
		return nil, err
	}
	switch g := f.Gen.(type) {
	case *GeneratorList:
		fields := resolveGeneratorFields(g.Exprs, inputs[0])
		return schema.NewBagType(schema.NewTupleType(fields...)), nil
	case *GeneratorPlan:
		if err := g.Sub.Validate(); err != nil {
			return nil, err
		}
		bag, ok := g.Sub.FinalSchema()
		if !ok {
			return nil, perr.New("schema", perr.SchemaError, "FOREACH nested plan produced no schema")
		}
		return bag, nil
	default:
		return nil, perr.New("plan", perr.InvalidPlan, "FOREACH has no generator")
	}
}

func (f *Foreach) CheckSchemaConformance(inputs []*schema.BagType) error {
	if err := validateSingleInput(TagForeach, inputs); err != nil {
		return err
	}
	if gl, ok := f.Gen.(*GeneratorList); ok {
		for _, ge := range gl.Exprs {
			if err := checkExprConformance(TagForeach, inputs[0], ge.Expr); err != nil {
				return err
			}
		}
	}
	return nil
}

func (*Foreach) LineageTag() string { return "FOREACH" }

func (f *Foreach) LineageParams() string {
	switch g := f.Gen.(type) {
	case *GeneratorList:
		s := ""
		for i, ge := range g.Exprs {
			if i > 0 {
				s += ","
			}
			s += ge.Alias + "=" + expr.Print(ge.Expr)
		}
		return s
	case *GeneratorPlan:
		return "nested"
	default:
		return ""
	}
}

var _ Operator = (*Foreach)(nil)

// Generate is the terminal statement of a nested Foreach sub-plan: it
// plays the same role as a top-level Foreach's GeneratorList but lives
// inside the sub-plan's own operator list (spec.md §3).
type Generate struct {
	Base
	Exprs []GeneratorExpr
}

func NewGenerate(inPipes []string, outPipe string, exprs []GeneratorExpr) *Generate {
	return &Generate{Base: NewBase(inPipes, outPipe), Exprs: exprs}
}

func (*Generate) Tag() Tag { return TagGenerate }

func (g *Generate) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	var in *schema.BagType
	if len(inputs) > 0 {
		in = inputs[0]
	}
	fields := resolveGeneratorFields(g.Exprs, in)
	return schema.NewBagType(schema.NewTupleType(fields...)), nil
}

func (g *Generate) CheckSchemaConformance(inputs []*schema.BagType) error {
	var in *schema.BagType
	if len(inputs) > 0 {
		in = inputs[0]
	}
	for _, ge := range g.Exprs {
		if err := checkExprConformance(TagGenerate, in, ge.Expr); err != nil {
			return err
		}
	}
	return nil
}

func (*Generate) LineageTag() string { return "GENERATE" }

func (g *Generate) LineageParams() string {
	s := ""
	for i, ge := range g.Exprs {
		if i > 0 {
			s += ","
		}
		s += ge.Alias + "=" + expr.Print(ge.Expr)
	}
	return s
}

var _ Operator = (*Generate)(nil)

// ConstructBag builds a bag from a nested expression, and receives a
// back-reference to the parent (outer) schema so DerefTuple expressions
// inside it can resolve fields of the enclosing tuple (spec.md §4.2).
type ConstructBag struct {
	Base
	ParentSchema *schema.BagType
	Elems        []GeneratorExpr
}

func NewConstructBag(outPipe string, parent *schema.BagType, elems []GeneratorExpr) *ConstructBag {
	return &ConstructBag{Base: NewBase(nil, outPipe), ParentSchema: parent, Elems: elems}
}

func (*ConstructBag) Tag() Tag { return TagConstructBag }

func (c *ConstructBag) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	fields := resolveGeneratorFields(c.Elems, c.ParentSchema)
	return schema.NewBagType(schema.NewTupleType(fields...)), nil
}

func (c *ConstructBag) CheckSchemaConformance(inputs []*schema.BagType) error {
	for _, ge := range c.Elems {
		if err := checkExprConformance(TagConstructBag, c.ParentSchema, ge.Expr); err != nil {
			return err
		}
	}
	return nil
}

func (*ConstructBag) LineageTag() string { return "CONSTRUCT_BAG" }

func (c *ConstructBag) LineageParams() string {
	s := ""
	for i, ge := range c.Elems {
		if i > 0 {
			s += ","
		}
		s += expr.Print(ge.Expr)
	}
	return s
}

var _ Operator = (*ConstructBag)(nil)
