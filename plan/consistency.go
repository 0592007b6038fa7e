package plan

import (
	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/perr"
)

// checkConsistency verifies every referenced pipe has exactly one
// producer and the graph is weakly connected: every operator must be
// reachable from some source when the graph is treated as undirected
// (spec.md §3's "the graph must be weakly connected" invariant).
func (p *DataflowPlan) checkConsistency() error {
	for name, pp := range p.Pipes {
		if pp.Producer == op.NoNode {
			return perr.New("plan", perr.InvalidPlan, "pipe %q has no producer", name)
		}
	}
	if len(p.Ops) == 0 {
		return nil
	}

	adj := make(map[op.NodeID][]op.NodeID, len(p.Ops))
	for _, pp := range p.Pipes {
		if pp.Producer == op.NoNode {
			continue
		}
		for _, c := range pp.Consumers {
			adj[pp.Producer] = append(adj[pp.Producer], c)
			adj[c] = append(adj[c], pp.Producer)
		}
	}

	seen := map[op.NodeID]bool{}
	stack := []op.NodeID{p.Ops[0].ID()}
	seen[stack[0]] = true
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range adj[id] {
			if !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}

	for _, o := range p.Ops {
		if !seen[o.ID()] {
			return perr.New("plan", perr.InvalidPlan, "operator %s (node %d) is not connected to the rest of the plan", o.Tag(), o.ID())
		}
	}
	return nil
}
