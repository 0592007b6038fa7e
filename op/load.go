package op

import (
	"fmt"

	"github.com/dianpeng/piglet/perr"
	"github.com/dianpeng/piglet/schema"
)

// Load reads a source. Its lineage includes File and LastModified so that
// external edits invalidate any cached materialization keyed on the
// lineage signature (spec.md §4.2, §4.4 soundness contract).
type Load struct {
	Base

	File         string
	Loader       string // loader function name, opaque to the core
	DeclaredSchema *schema.BagType

	// LastModified is -1 when profiling is off (spec.md §4.2): the file's
	// mtime only participates in the lineage when profiling is enabled,
	// so a plain (non-profiled) compile is stable regardless of file
	// churn between runs.
	LastModified int64
}

func NewLoad(outPipe, file, loader string, declared *schema.BagType, lastModified int64) *Load {
	l := &Load{Base: NewBase(nil, outPipe), File: file, Loader: loader, DeclaredSchema: declared, LastModified: lastModified}
	l.SetSchema(declared)
	return l
}

func (*Load) Tag() Tag { return TagLoad }

func (l *Load) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	// schema is authoritative if provided (spec.md §4.2); otherwise this
	// Load contributes an unknown schema which downstream operators must
	// tolerate via positional field references only.
	return l.DeclaredSchema, nil
}

func (l *Load) CheckSchemaConformance(inputs []*schema.BagType) error {
	return nil
}

func (*Load) LineageTag() string { return "LOAD" }

func (l *Load) LineageParams() string {
	return fmt.Sprintf("file=%s;loader=%s;mtime=%d", l.File, l.Loader, l.LastModified)
}

var _ Operator = (*Load)(nil)

func validateSingleInput(tag Tag, inputs []*schema.BagType) error {
	if len(inputs) != 1 {
		return perr.New("plan", perr.InvalidPlan, "%s expects exactly one input, got %d", tag, len(inputs))
	}
	return nil
}
