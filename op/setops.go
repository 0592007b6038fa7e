package op

import (
	"github.com/dianpeng/piglet/perr"
	"github.com/dianpeng/piglet/schema"
)

// Distinct and Limit are pure schema pass-throughs.
type Distinct struct{ Base }

func NewDistinct(inPipe, outPipe string) *Distinct {
	return &Distinct{Base: NewBase([]string{inPipe}, outPipe)}
}

func (*Distinct) Tag() Tag { return TagDistinct }
func (d *Distinct) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if err := validateSingleInput(TagDistinct, inputs); err != nil {
		return nil, err
	}
	return inputs[0], nil
}
func (*Distinct) CheckSchemaConformance(inputs []*schema.BagType) error {
	return validateSingleInput(TagDistinct, inputs)
}
func (*Distinct) LineageTag() string    { return "DISTINCT" }
func (*Distinct) LineageParams() string { return "" }

var _ Operator = (*Distinct)(nil)

type Limit struct {
	Base
	N int64
}

func NewLimit(inPipe, outPipe string, n int64) *Limit {
	return &Limit{Base: NewBase([]string{inPipe}, outPipe), N: n}
}

func (*Limit) Tag() Tag { return TagLimit }
func (l *Limit) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if err := validateSingleInput(TagLimit, inputs); err != nil {
		return nil, err
	}
	return inputs[0], nil
}
func (*Limit) CheckSchemaConformance(inputs []*schema.BagType) error {
	return validateSingleInput(TagLimit, inputs)
}
func (*Limit) LineageTag() string { return "LIMIT" }
func (l *Limit) LineageParams() string {
	return itoa64(l.N)
}

var _ Operator = (*Limit)(nil)

// Union requires all inputs to have compatible schemas (spec.md §4.2,
// §8): differing field names is fine, differing types is a SchemaError.
type Union struct{ Base }

func NewUnion(inPipes []string, outPipe string) *Union {
	return &Union{Base: NewBase(inPipes, outPipe)}
}

func (*Union) Tag() Tag { return TagUnion }

func (u *Union) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if len(inputs) == 0 {
		return nil, perr.New("plan", perr.InvalidPlan, "UNION needs at least one input")
	}
	first := inputs[0]
	for i := 1; i < len(inputs); i++ {
		if !schema.UnionCompatible(elemOf(first), elemOf(inputs[i])) {
			return nil, perr.New("schema", perr.SchemaError, "UNION inputs %d and %d have incompatible schemas", 0, i)
		}
	}
	return first, nil
}

func elemOf(b *schema.BagType) *schema.TupleType {
	if b == nil {
		return nil
	}
	return b.Elem
}

func (*Union) CheckSchemaConformance(inputs []*schema.BagType) error {
	if len(inputs) == 0 {
		return perr.New("plan", perr.InvalidPlan, "UNION needs at least one input")
	}
	return nil
}

func (*Union) LineageTag() string    { return "UNION" }
func (*Union) LineageParams() string { return "" }

var _ Operator = (*Union)(nil)

func itoa64(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b [20]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}
