package op

import "github.com/dianpeng/piglet/schema"

// TimingOp wraps a pipe with a profiling probe: the emitter generates
// code that records wall-clock timestamps and reports them to the
// profiling collector (spec.md §4.10). It is a pure schema pass-through
// inserted by the rewrite engine when profiling is enabled, never
// authored directly.
type TimingOp struct {
	Base
	WrappedLineageSig string

	// ParentLineageSigs names the lineage signature(s) of whatever feeds
	// this pipe, for the profiling collector's per-edge cost attribution
	// (spec.md §4.6). Empty means the wrapped operator has no upstream
	// operator of its own (a Load), so its parent is the synthetic Start
	// node.
	ParentLineageSigs []string
}

func NewTimingOp(inPipe, outPipe, wrappedLineageSig string, parentLineageSigs []string) *TimingOp {
	return &TimingOp{
		Base:              NewBase([]string{inPipe}, outPipe),
		WrappedLineageSig: wrappedLineageSig,
		ParentLineageSigs: parentLineageSigs,
	}
}

func (*TimingOp) Tag() Tag { return TagTimingOp }

func (*TimingOp) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if err := validateSingleInput(TagTimingOp, inputs); err != nil {
		return nil, err
	}
	return inputs[0], nil
}

func (*TimingOp) CheckSchemaConformance(inputs []*schema.BagType) error {
	return validateSingleInput(TagTimingOp, inputs)
}

func (*TimingOp) LineageTag() string    { return "TIMING" }
func (t *TimingOp) LineageParams() string { return t.WrappedLineageSig }

var _ Operator = (*TimingOp)(nil)
