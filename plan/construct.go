package plan

import (
	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/perr"
	"github.com/dianpeng/piglet/schema"
)

// constructSchemas visits every operator in dependency order (each
// producer before its consumers) and calls ConstructSchema, then
// CheckSchemaConformance, propagating errors as SchemaError/InvalidPlan.
func (p *DataflowPlan) constructSchemas() error {
	order, err := p.topoOrder()
	if err != nil {
		return err
	}
	for _, id := range order {
		o := p.Get(id)
		prodIDs, err := p.producers(o)
		if err != nil {
			return err
		}
		inputs := make([]*schema.BagType, len(prodIDs))
		for i, pid := range prodIDs {
			inputs[i] = p.Get(pid).Schema()
		}
		s, err := o.ConstructSchema(inputs)
		if err != nil {
			return err
		}
		o.SetSchema(s)
		if err := o.CheckSchemaConformance(inputs); err != nil {
			return err
		}
	}
	return nil
}

// TopoOrder returns a dependency order over p.Ops (producers before
// consumers); the code generator walks it to emit each operator's
// function after everything it calls into has already been declared.
func (p *DataflowPlan) TopoOrder() ([]op.NodeID, error) {
	return p.topoOrder()
}

// topoOrder returns a dependency order over p.Ops (producers before
// consumers) via Kahn's algorithm; a remaining node after the queue
// drains means a cycle, which checkConsistency should already have
// caught, but is re-reported here defensively.
func (p *DataflowPlan) topoOrder() ([]op.NodeID, error) {
	indeg := make(map[op.NodeID]int, len(p.Ops))
	live := 0
	for _, o := range p.Ops {
		if o == nil {
			continue // slot freed by Remove
		}
		live++
		prods, err := p.producers(o)
		if err != nil {
			return nil, err
		}
		indeg[o.ID()] = len(prods)
	}

	var queue []op.NodeID
	for _, o := range p.Ops {
		if o == nil {
			continue
		}
		if indeg[o.ID()] == 0 {
			queue = append(queue, o.ID())
		}
	}

	consumers := func(id op.NodeID) []op.NodeID {
		o := p.Get(id)
		out := o.OutPipeName()
		if out == "" {
			return nil
		}
		pp := p.Pipes[out]
		if pp == nil {
			return nil
		}
		return pp.Consumers
	}

	var order []op.NodeID
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, c := range consumers(id) {
			indeg[c]--
			if indeg[c] == 0 {
				queue = append(queue, c)
			}
		}
	}

	if len(order) != live {
		return nil, perr.New("plan", perr.InvalidPlan, "plan graph has a cycle")
	}
	return order, nil
}

// FinalSchema and Validate implement op.NestedPlan so a DataflowPlan can
// serve as the sub-plan of a nested Foreach's GeneratorPlan (spec.md
// §4.2). The nested plan's last statement in declaration order must be
// a Generate.
func (p *DataflowPlan) FinalSchema() (*schema.BagType, bool) {
	last := p.lastStatement()
	if last == nil {
		return nil, false
	}
	return last.Schema(), last.Schema() != nil
}

func (p *DataflowPlan) Validate() error {
	last := p.lastStatement()
	if last == nil {
		return perr.New("plan", perr.InvalidPlan, "nested FOREACH plan has no statements")
	}
	if _, ok := last.(*op.Generate); !ok {
		return perr.New("plan", perr.InvalidPlan, "nested FOREACH plan must end with GENERATE, found %s", last.Tag())
	}
	return nil
}

func (p *DataflowPlan) lastStatement() op.Operator {
	if len(p.Ops) == 0 {
		return nil
	}
	return p.Ops[len(p.Ops)-1]
}

var _ op.NestedPlan = (*DataflowPlan)(nil)
