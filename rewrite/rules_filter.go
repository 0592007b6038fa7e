package rewrite

import (
	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/plan"
)

// MergeAdjacentFilters folds a Filter directly downstream of another
// Filter into a single Filter whose predicate is the conjunction of
// both (spec.md §8's "two adjacent Filters merge into one, predicate
// conjunction"). It only fires when the upstream Filter has exactly one
// consumer, since otherwise removing it would change the plan's
// observable structure for its other consumers.
func MergeAdjacentFilters(n Node) (bool, error) {
	p, ok := n.Plan.(*plan.DataflowPlan)
	if !ok {
		return false, nil
	}
	lower, ok := p.Get(n.ID).(*op.Filter)
	if !ok {
		return false, nil
	}
	if len(lower.InPipeNames()) != 1 {
		return false, nil
	}
	pp := p.Pipes[lower.InPipeNames()[0]]
	if pp == nil || pp.Producer == op.NoNode {
		return false, nil
	}
	upper, ok := p.Get(pp.Producer).(*op.Filter)
	if !ok {
		return false, nil
	}
	if len(pp.Consumers) != 1 {
		return false, nil // upper feeds something else too, don't collapse it away
	}

	merged := expr.And(expr.Clone(upper.Pred), expr.Clone(lower.Pred))
	lower.Pred = merged
	if err := p.Remove(upper.ID(), false); err != nil {
		return false, err
	}
	return true, nil
}

// PushDownFilter moves a Filter above an adjacent schema-preserving
// Foreach when the predicate only references fields the Foreach passes
// through unchanged by name (spec.md §4.3's predicate pushdown). It is
// conservative: any generator expression that is not a bare FieldRef
// blocks the field from being considered pass-through.
func PushDownFilter(n Node) (bool, error) {
	p, ok := n.Plan.(*plan.DataflowPlan)
	if !ok {
		return false, nil
	}
	lower, ok := p.Get(n.ID).(*op.Filter)
	if !ok {
		return false, nil
	}
	if len(lower.InPipeNames()) != 1 {
		return false, nil
	}
	pp := p.Pipes[lower.InPipeNames()[0]]
	if pp == nil || pp.Producer == op.NoNode {
		return false, nil
	}
	upper, ok := p.Get(pp.Producer).(*op.Foreach)
	if !ok {
		return false, nil
	}
	gl, ok := upper.Gen.(*op.GeneratorList)
	if !ok {
		return false, nil
	}

	passthrough := map[string]bool{}
	for _, ge := range gl.Exprs {
		if fr, ok := ge.Expr.(*expr.FieldRef); ok && fr.Name != "" && (ge.Alias == "" || ge.Alias == fr.Name) {
			name := ge.Alias
			if name == "" {
				name = fr.Name
			}
			passthrough[name] = true
		}
	}

	names, _ := expr.ReferencedFields(lower.Pred)
	for name := range names {
		if !passthrough[name] {
			return false, nil
		}
	}

	if err := p.Swap(upper.ID(), lower.ID()); err != nil {
		return false, err
	}
	return true, nil
}
