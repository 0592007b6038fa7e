// Package rewrite implements the pattern-directed plan-rewrite engine
// of spec.md §4.3: small rules over individual operators, composed with
// strategic-programming combinators (sequence, choice, everywhere,
// innermost, fixpoint) into whole-plan transformations.
//
// The teacher has no combinator library of its own; the shape of an
// individual Rule mirrors plan/early_filter.go's tree-walking analysis
// pass (a pure function returning a possibly-new node plus a changed
// flag), generalized here into a composable algebra since spec.md §4.3
// names the combinators explicitly.
package rewrite

import "github.com/dianpeng/piglet/op"

// Node is what a Rule inspects and possibly rewrites: an operator plus
// its position in the owning plan. Rules never mutate p.Ops directly
// except through the plan's own structural-edit methods, so the
// rewritten plan always stays internally consistent.
type Node struct {
	Plan Owner
	ID   op.NodeID
}

// Owner is the narrow surface rewrite needs from plan.DataflowPlan; it
// avoids an import cycle (plan imports op, rewrite imports plan for
// concrete use in the registry, but Rule itself only needs this).
type Owner interface {
	Get(op.NodeID) op.Operator
}

// Rule inspects the operator at n.ID and, if it applies, performs a
// structural edit and returns changed=true. A Rule that does not apply
// returns changed=false and a nil error; it must otherwise leave the
// plan untouched.
type Rule func(n Node) (changed bool, err error)

// Sequence runs every rule once, in order, folding their changed flags;
// it stops at the first error.
func Sequence(rules ...Rule) Rule {
	return func(n Node) (bool, error) {
		changed := false
		for _, r := range rules {
			c, err := r(n)
			if err != nil {
				return changed, err
			}
			changed = changed || c
		}
		return changed, nil
	}
}

// Choice tries each rule in order and applies the first one that
// changes something, skipping the rest.
func Choice(rules ...Rule) Rule {
	return func(n Node) (bool, error) {
		for _, r := range rules {
			c, err := r(n)
			if err != nil {
				return false, err
			}
			if c {
				return true, nil
			}
		}
		return false, nil
	}
}

// Everywhere applies r to every operator currently in the plan, in
// arena order, folding changed flags. Rules that insert new operators
// do not get revisited within the same Everywhere pass; wrap in
// Fixpoint to converge.
func Everywhere(nodes []op.NodeID, r Rule, owner Owner) Rule {
	return func(_ Node) (bool, error) {
		changed := false
		for _, id := range nodes {
			if owner.Get(id) == nil {
				continue // removed by an earlier rule in this pass
			}
			c, err := r(Node{Plan: owner, ID: id})
			if err != nil {
				return changed, err
			}
			changed = changed || c
		}
		return changed, nil
	}
}

// Innermost applies r bottom-up (leaves toward sinks, using the given
// topological order) and re-runs the whole pass to fixpoint, matching
// the usual "innermost normal form" strategy from term rewriting.
func Innermost(order []op.NodeID, r Rule, owner Owner) Rule {
	return Fixpoint(Everywhere(order, r, owner))
}

// Fixpoint repeats r until it reports no further change, bounded by
// maxIterations as a safety net against a misbehaving rule that keeps
// reporting changed=true without converging.
const maxIterations = 1000

func Fixpoint(r Rule) Rule {
	return func(n Node) (bool, error) {
		anyChanged := false
		for i := 0; i < maxIterations; i++ {
			c, err := r(n)
			if err != nil {
				return anyChanged, err
			}
			if !c {
				return anyChanged, nil
			}
			anyChanged = true
		}
		return anyChanged, nil
	}
}
