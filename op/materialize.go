package op

import "github.com/dianpeng/piglet/schema"

// MaterializeHint is a user-authored MATERIALIZE statement: a schema
// pass-through hint that the materialization manager reads and then
// strips from the plan before code emission (spec.md §4.4).
type MaterializeHint struct {
	Base
}

func NewMaterializeHint(inPipe, outPipe string) *MaterializeHint {
	return &MaterializeHint{Base: NewBase([]string{inPipe}, outPipe)}
}

func (*MaterializeHint) Tag() Tag { return TagMaterializeHint }

func (*MaterializeHint) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if err := validateSingleInput(TagMaterializeHint, inputs); err != nil {
		return nil, err
	}
	return inputs[0], nil
}

func (*MaterializeHint) CheckSchemaConformance(inputs []*schema.BagType) error {
	return validateSingleInput(TagMaterializeHint, inputs)
}

func (*MaterializeHint) LineageTag() string    { return "MATERIALIZE" }
func (*MaterializeHint) LineageParams() string { return "" }

var _ Operator = (*MaterializeHint)(nil)

// Cache replaces a materialized sub-plan at insertion time: it is a
// pass-through whose "input" is really a load from the materialization
// store, addressed by the lineage signature it caches (spec.md §4.4/§4.9).
type Cache struct {
	Base
	LineageSig string
}

func NewCache(outPipe, lineageSig string) *Cache {
	return &Cache{Base: NewBase(nil, outPipe), LineageSig: lineageSig}
}

func (*Cache) Tag() Tag { return TagCache }

func (c *Cache) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	return c.Schema(), nil
}

func (*Cache) CheckSchemaConformance(inputs []*schema.BagType) error { return nil }

func (*Cache) LineageTag() string { return "CACHE" }
func (c *Cache) LineageParams() string { return c.LineageSig }

var _ Operator = (*Cache)(nil)
