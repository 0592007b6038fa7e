package op

import (
	"github.com/dianpeng/piglet/perr"
	"github.com/dianpeng/piglet/schema"
)

type WindowKind int

const (
	WindowTumbling WindowKind = iota
	WindowSliding
)

func (k WindowKind) String() string {
	if k == WindowSliding {
		return "sliding"
	}
	return "tumbling"
}

// Window is only meaningful on streaming backends (spec.md §4.3): the
// rewrite engine either lowers it into a backend-specific windowed
// aggregation (flinks) or passes it through as a no-op on batch-only
// backends, per the resolved Open Question recorded in DESIGN.md.
type Window struct {
	Base
	Kind   WindowKind
	Size   int64 // window length in the backend's native time unit
	Slide  int64 // only meaningful when Kind == WindowSliding
}

func NewWindow(inPipe, outPipe string, kind WindowKind, size, slide int64) (*Window, error) {
	if kind == WindowSliding && slide <= 0 {
		return nil, perr.New("plan", perr.InvalidPlan, "WINDOW sliding requires a positive slide")
	}
	if size <= 0 {
		return nil, perr.New("plan", perr.InvalidPlan, "WINDOW size must be positive")
	}
	return &Window{Base: NewBase([]string{inPipe}, outPipe), Kind: kind, Size: size, Slide: slide}, nil
}

func (*Window) Tag() Tag { return TagWindow }

func (*Window) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if err := validateSingleInput(TagWindow, inputs); err != nil {
		return nil, err
	}
	return inputs[0], nil
}

func (*Window) CheckSchemaConformance(inputs []*schema.BagType) error {
	return validateSingleInput(TagWindow, inputs)
}

func (*Window) LineageTag() string { return "WINDOW" }

func (w *Window) LineageParams() string {
	if w.Kind == WindowSliding {
		return "sliding:" + itoa64(w.Size) + ":" + itoa64(w.Slide)
	}
	return "tumbling:" + itoa64(w.Size)
}

var _ Operator = (*Window)(nil)
