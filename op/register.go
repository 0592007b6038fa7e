package op

import "github.com/dianpeng/piglet/schema"

// Register is a pre-rewrite auxiliary statement (REGISTER 'foo.jar' or a
// backend-specific package reference). It never participates in schema
// propagation or lineage and is dropped during plan assembly once its
// argument has been collected into the plan's backend args (spec.md §3).
type Register struct {
	Base
	Path string
}

func NewRegister(path string) *Register {
	return &Register{Base: NewBase(nil, ""), Path: path}
}

func (*Register) Tag() Tag { return TagRegister }

func (*Register) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	return nil, nil
}

func (*Register) CheckSchemaConformance(inputs []*schema.BagType) error { return nil }

func (*Register) LineageTag() string      { return "REGISTER" }
func (r *Register) LineageParams() string { return r.Path }

var _ Operator = (*Register)(nil)
