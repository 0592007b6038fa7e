package op

import (
	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/perr"
	"github.com/dianpeng/piglet/schema"
)

// MatcherTransition is one edge of the pattern NFA: from State on
// Predicate matching the current tuple, advance to State.
type MatcherTransition struct {
	From      string
	To        string
	Predicate expr.Expr
}

// Matcher implements the MATCHER CEP operator: it recognizes sequences
// of tuples accepted by a small NFA (spec.md §4.6). States and
// transitions are declared explicitly rather than compiled from a regex
// syntax, mirroring how the rest of the plan already carries pre-lowered
// expression trees instead of source text.
type Matcher struct {
	Base
	States      []string
	Start       string
	Accept      []string
	Transitions []MatcherTransition
}

func NewMatcher(inPipe, outPipe string, states []string, start string, accept []string, trans []MatcherTransition) (*Matcher, error) {
	known := map[string]bool{}
	for _, s := range states {
		known[s] = true
	}
	if !known[start] {
		return nil, perr.New("plan", perr.InvalidPlan, "MATCHER start state %q is not declared", start)
	}
	for _, a := range accept {
		if !known[a] {
			return nil, perr.New("plan", perr.InvalidPlan, "MATCHER accept state %q is not declared", a)
		}
	}
	for _, t := range trans {
		if !known[t.From] || !known[t.To] {
			return nil, perr.New("plan", perr.InvalidPlan, "MATCHER transition references undeclared state")
		}
	}
	return &Matcher{
		Base:        NewBase([]string{inPipe}, outPipe),
		States:      states,
		Start:       start,
		Accept:      accept,
		Transitions: trans,
	}, nil
}

func (*Matcher) Tag() Tag { return TagMatcher }

// ConstructSchema produces one output tuple per accepted match: a
// match_id (long) and an events bag of the matched input tuples
// (spec.md §4.6). The emitter is responsible for the runtime NFA walk.
func (m *Matcher) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if err := validateSingleInput(TagMatcher, inputs); err != nil {
		return nil, err
	}
	tt := schema.NewTupleType(
		schema.Field{Name: "match_id", Type: schema.Scalar(schema.Long)},
		schema.Field{Name: "events", Type: schema.BagOf(schema.NewBagType(inputs[0].Elem))},
	)
	return schema.NewBagType(tt), nil
}

func (m *Matcher) CheckSchemaConformance(inputs []*schema.BagType) error {
	if err := validateSingleInput(TagMatcher, inputs); err != nil {
		return err
	}
	for _, t := range m.Transitions {
		if err := checkExprConformance(TagMatcher, inputs[0], t.Predicate); err != nil {
			return err
		}
	}
	return nil
}

func (*Matcher) LineageTag() string { return "MATCHER" }

func (m *Matcher) LineageParams() string {
	s := m.Start
	for _, a := range m.Accept {
		s += ">" + a
	}
	for _, t := range m.Transitions {
		s += "|" + t.From + "-" + t.To + ":" + expr.Print(t.Predicate)
	}
	return s
}

var _ Operator = (*Matcher)(nil)
