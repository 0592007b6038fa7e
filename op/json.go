package op

import (
	"encoding/json"
	"fmt"

	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/schema"
)

// wireGenExpr is one projected column of a FOREACH/GENERATE/ConstructBag
// clause in the JSON operator IR read by cmd/pigletc (SPEC_FULL.md
// §4.12): the surface parser is explicitly out of scope, so the wire
// format stands in for it as a pre-parsed, already-typed operator graph.
type wireGenExpr struct {
	Expr         json.RawMessage `json:"expr"`
	Alias        string          `json:"alias,omitempty"`
	DeclaredType *schema.Type    `json:"declared_type,omitempty"`
}

func decodeGenExprs(in []wireGenExpr) ([]GeneratorExpr, error) {
	out := make([]GeneratorExpr, len(in))
	for i, w := range in {
		e, err := expr.Decode(w.Expr)
		if err != nil {
			return nil, fmt.Errorf("generator expr %d: %w", i, err)
		}
		out[i] = GeneratorExpr{Expr: e, Alias: w.Alias, DeclaredType: w.DeclaredType}
	}
	return out, nil
}

type wireSortKey struct {
	Expr json.RawMessage `json:"expr"`
	Desc bool            `json:"desc,omitempty"`
}

type wireTransition struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Predicate json.RawMessage `json:"predicate"`
}

// wireOp is the flat envelope for every operator variant; only the
// fields relevant to Tag are populated. Register entries decode to
// op.Register values here, which plan.New then strips from the operator
// list.
type wireOp struct {
	Tag string   `json:"tag"`
	In  []string `json:"in,omitempty"`
	Out string   `json:"out,omitempty"`

	// LOAD
	File           string          `json:"file,omitempty"`
	Loader         string          `json:"loader,omitempty"`
	DeclaredSchema *schema.BagType `json:"declared_schema,omitempty"`
	LastModified   int64           `json:"last_modified,omitempty"`

	// FILTER / MATCHER transitions / ORDER (via wireSortKey)
	Pred json.RawMessage `json:"pred,omitempty"`

	// FOREACH / GENERATE / CONSTRUCT_BAG
	Exprs        []wireGenExpr   `json:"exprs,omitempty"`
	NestedPlan   []wireOp        `json:"nested_plan,omitempty"`
	ParentSchema *schema.BagType `json:"parent_schema,omitempty"`

	// GROUP
	Keys []json.RawMessage `json:"keys,omitempty"`

	// JOIN
	JoinKeys [][]json.RawMessage `json:"join_keys,omitempty"`

	// DISTINCT / UNION: no extra fields

	// LIMIT
	N int64 `json:"n,omitempty"`

	// ORDER
	SortKeys []wireSortKey `json:"sort_keys,omitempty"`

	// STORE
	Store string `json:"store,omitempty"`

	// MATCHER
	States      []string         `json:"states,omitempty"`
	Start       string           `json:"start,omitempty"`
	Accept      []string         `json:"accept,omitempty"`
	Transitions []wireTransition `json:"transitions,omitempty"`

	// WINDOW
	WindowKind string `json:"window_kind,omitempty"`
	Size       int64  `json:"size,omitempty"`
	Slide      int64  `json:"slide,omitempty"`

	// REGISTER
	Path string `json:"path,omitempty"`

	// MATERIALIZE has no extra fields beyond In/Out.
}

// LinkNestedPlan builds the NestedPlan a decoded FOREACH's GeneratorPlan
// needs from that sub-plan's already-decoded operators. op cannot import
// plan (plan imports op), so DecodePlan takes this as a callback; the
// only real implementation, in cmd/pigletc, wraps plan.New.
type LinkNestedPlan func(ops []Operator) (NestedPlan, error)

// DecodePlan decodes a JSON array of operators, in declaration order,
// into the concrete op.Operator values plan.New expects. It is the
// single point where the JSON operator IR (standing in for a surface
// parser, SPEC_FULL.md §4.12) is turned into real operators. link may be
// nil if the input is known not to contain nested FOREACH plans.
func DecodePlan(data []byte, link LinkNestedPlan) ([]Operator, error) {
	var ws []wireOp
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, err
	}
	return decodeAll(ws, link)
}

func decodeAll(ws []wireOp, link LinkNestedPlan) ([]Operator, error) {
	out := make([]Operator, 0, len(ws))
	for i, w := range ws {
		o, err := decodeOne(&w, link)
		if err != nil {
			return nil, fmt.Errorf("operator %d (%s): %w", i, w.Tag, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func in1(w *wireOp) string {
	if len(w.In) == 0 {
		return ""
	}
	return w.In[0]
}

func decodeOne(w *wireOp, link LinkNestedPlan) (Operator, error) {
	switch w.Tag {
	case "load":
		return NewLoad(w.Out, w.File, w.Loader, w.DeclaredSchema, w.LastModified), nil
	case "filter":
		pred, err := expr.Decode(w.Pred)
		if err != nil {
			return nil, err
		}
		return NewFilter(in1(w), w.Out, pred), nil
	case "foreach":
		gen, err := decodeGenerator(w, link)
		if err != nil {
			return nil, err
		}
		return NewForeach(in1(w), w.Out, gen)
	case "generate":
		exprs, err := decodeGenExprs(w.Exprs)
		if err != nil {
			return nil, err
		}
		return NewGenerate(w.In, w.Out, exprs), nil
	case "construct_bag":
		elems, err := decodeGenExprs(w.Exprs)
		if err != nil {
			return nil, err
		}
		return NewConstructBag(w.Out, w.ParentSchema, elems), nil
	case "group":
		keys, err := decodeExprList(w.Keys)
		if err != nil {
			return nil, err
		}
		return NewGrouping(in1(w), w.Out, keys), nil
	case "join":
		keys := make([][]expr.Expr, len(w.JoinKeys))
		for i, kl := range w.JoinKeys {
			ks, err := decodeExprList(kl)
			if err != nil {
				return nil, err
			}
			keys[i] = ks
		}
		return NewJoin(w.In, w.Out, keys)
	case "distinct":
		return NewDistinct(in1(w), w.Out), nil
	case "limit":
		return NewLimit(in1(w), w.Out, w.N), nil
	case "union":
		return NewUnion(w.In, w.Out), nil
	case "order":
		keys := make([]SortKey, len(w.SortKeys))
		for i, sk := range w.SortKeys {
			e, err := expr.Decode(sk.Expr)
			if err != nil {
				return nil, err
			}
			keys[i] = SortKey{Expr: e, Desc: sk.Desc}
		}
		return NewOrderBy(in1(w), w.Out, keys), nil
	case "store":
		return NewStore(in1(w), w.File, w.Store), nil
	case "dump":
		return NewDump(in1(w)), nil
	case "materialize":
		return NewMaterializeHint(in1(w), w.Out), nil
	case "window":
		kind := WindowTumbling
		if w.WindowKind == "sliding" {
			kind = WindowSliding
		}
		return NewWindow(in1(w), w.Out, kind, w.Size, w.Slide)
	case "matcher":
		trans := make([]MatcherTransition, len(w.Transitions))
		for i, t := range w.Transitions {
			pred, err := expr.Decode(t.Predicate)
			if err != nil {
				return nil, err
			}
			trans[i] = MatcherTransition{From: t.From, To: t.To, Predicate: pred}
		}
		return NewMatcher(in1(w), w.Out, w.States, w.Start, w.Accept, trans)
	case "register":
		return NewRegister(w.Path), nil
	default:
		return nil, fmt.Errorf("unknown operator tag %q", w.Tag)
	}
}

func decodeExprList(raw []json.RawMessage) ([]expr.Expr, error) {
	out := make([]expr.Expr, len(raw))
	for i, r := range raw {
		e, err := expr.Decode(r)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// decodeGenerator handles FOREACH's two shapes: a flat GeneratorList, or
// a nested GeneratorPlan whose sub-plan is itself a JSON operator array,
// recursively decoded and then linked into a NestedPlan via link.
func decodeGenerator(w *wireOp, link LinkNestedPlan) (Generator, error) {
	if len(w.NestedPlan) > 0 {
		if link == nil {
			return nil, fmt.Errorf("nested FOREACH plan present but no LinkNestedPlan callback was supplied")
		}
		subOps, err := decodeAll(w.NestedPlan, link)
		if err != nil {
			return nil, fmt.Errorf("nested plan: %w", err)
		}
		sub, err := link(subOps)
		if err != nil {
			return nil, fmt.Errorf("nested plan: %w", err)
		}
		return &GeneratorPlan{Sub: sub}, nil
	}
	exprs, err := decodeGenExprs(w.Exprs)
	if err != nil {
		return nil, err
	}
	return &GeneratorList{Exprs: exprs}, nil
}
