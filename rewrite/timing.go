package rewrite

import (
	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/plan"
)

// InstrumentTiming wraps every pipe fed by a source-like operator
// (currently: every operator's output) with a TimingOp when profiling
// is enabled (spec.md §4.10). Its predicate skips a producer once every
// current consumer of its output pipe is already a TimingOp, so the
// rule is idempotent under Fixpoint/repeated sweeps instead of nesting
// a fresh TimingOp on top of the last one forever.
func InstrumentTiming(p *plan.DataflowPlan) Rule {
	return func(n Node) (bool, error) {
		o := p.Get(n.ID)
		if o == nil {
			return false, nil
		}
		if _, isTiming := o.(*op.TimingOp); isTiming {
			return false, nil
		}
		if o.OutPipeName() == "" {
			return false, nil // sinks have nothing downstream to wrap
		}
		if alreadyTimed(p, o.OutPipeName()) {
			return false, nil
		}
		sig, err := p.LineageSignature(n.ID)
		if err != nil {
			return false, err
		}
		parents, err := parentLineageSignatures(p, o)
		if err != nil {
			return false, err
		}
		wrapped := false
		err = p.InsertBetweenAll(n.ID, func() op.Operator {
			wrapped = true
			return op.NewTimingOp("", "", sig, parents)
		})
		if err != nil {
			return false, err
		}
		return wrapped, nil
	}
}

// alreadyTimed reports whether every consumer of pipeName is already a
// TimingOp, meaning a previous pass has wrapped this producer.
func alreadyTimed(p *plan.DataflowPlan, pipeName string) bool {
	pp := p.Pipes[pipeName]
	if pp == nil || len(pp.Consumers) == 0 {
		return false
	}
	for _, id := range pp.Consumers {
		if _, ok := p.Get(id).(*op.TimingOp); !ok {
			return false
		}
	}
	return true
}

// parentLineageSignatures returns the lineage signatures feeding o's
// input pipes, for the TimingOp report_time call to attribute cost to
// the right Markov edge. A producer that is itself a TimingOp resolves
// to the signature of the operator it wraps. An operator with no input
// pipes (a Load) has no upstream signature of its own; the synthetic
// Start node stands in for it (spec.md §4.6).
func parentLineageSignatures(p *plan.DataflowPlan, o op.Operator) ([]string, error) {
	var sigs []string
	for _, in := range o.InPipeNames() {
		pp := p.Pipes[in]
		if pp == nil || pp.Producer == op.NoNode {
			continue
		}
		if t, ok := p.Get(pp.Producer).(*op.TimingOp); ok {
			sigs = append(sigs, t.WrappedLineageSig)
			continue
		}
		sig, err := p.LineageSignature(pp.Producer)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}
