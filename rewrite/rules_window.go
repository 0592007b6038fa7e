package rewrite

import (
	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/plan"
)

// FlinksBackend is the only backend name that registers WindowToGroup
// (spec.md §4.3: the window rewrite is flinks-only; every other backend
// leaves Window as a schema pass-through, emitted as a no-op).
const FlinksBackend = "flinks"

// WindowToGroup lowers a tumbling or sliding Window into a Grouping
// keyed on a synthetic time-bucket expression, since flinks has no
// native window primitive and instead expresses windowing as GROUP BY
// floor(ts/size)*size (spec.md §4.3). It assumes the input schema's
// first field is the event timestamp, matching the convention the
// language's built-in stream loaders declare.
func WindowToGroup(n Node) (bool, error) {
	p, ok := n.Plan.(*plan.DataflowPlan)
	if !ok {
		return false, nil
	}
	w, ok := p.Get(n.ID).(*op.Window)
	if !ok {
		return false, nil
	}

	ts := &expr.FieldRef{Index: 0, Name: ""}
	bucketSize := expr.ConstInt64(w.Size)
	bucketExpr := expr.Expr(&expr.Binary{
		Op: expr.OpMul,
		L: &expr.Binary{
			Op: expr.OpDiv,
			L:  ts,
			R:  bucketSize,
		},
		R: bucketSize,
	})

	g := op.NewGrouping("", "", []expr.Expr{bucketExpr})
	if err := p.Replace(n.ID, g); err != nil {
		return false, err
	}
	return true, nil
}
