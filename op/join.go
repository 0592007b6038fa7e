package op

import (
	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/perr"
	"github.com/dianpeng/piglet/schema"
)

// Join has one key expression per relation; arities must match (spec.md
// §4.2). Output is the concatenated fields of all inputs, so the emitter
// can address every input's columns positionally — the materialization
// manager's load-cached pass depends on argument order being preserved
// exactly for this reason (spec.md §4.4).
type Join struct {
	Base
	Keys [][]expr.Expr // one key-expression list per relation, same order as InPipeNames
}

func NewJoin(inPipes []string, outPipe string, keys [][]expr.Expr) (*Join, error) {
	if len(inPipes) != len(keys) {
		return nil, perr.New("plan", perr.InvalidPlan, "JOIN needs one key list per relation, got %d relations and %d key lists", len(inPipes), len(keys))
	}
	arity := -1
	for _, k := range keys {
		if arity == -1 {
			arity = len(k)
		} else if len(k) != arity {
			return nil, perr.New("plan", perr.InvalidPlan, "JOIN key arities must match across relations")
		}
	}
	return &Join{Base: NewBase(inPipes, outPipe), Keys: keys}, nil
}

func (*Join) Tag() Tag { return TagJoin }

func (j *Join) ConstructSchema(inputs []*schema.BagType) (*schema.BagType, error) {
	if len(inputs) != len(j.InPipeNames()) {
		return nil, perr.New("plan", perr.InvalidPlan, "JOIN expects %d inputs, got %d", len(j.InPipeNames()), len(inputs))
	}
	fields := []schema.Field{}
	for i, in := range inputs {
		if in == nil || in.Elem == nil {
			return nil, perr.New("schema", perr.SchemaError, "JOIN relation %d has unknown schema", i)
		}
		fields = append(fields, in.Elem.Fields...)
	}
	return schema.NewBagType(schema.NewTupleType(fields...)), nil
}

func (j *Join) CheckSchemaConformance(inputs []*schema.BagType) error {
	if len(inputs) != len(j.Keys) {
		return perr.New("plan", perr.InvalidPlan, "JOIN expects %d inputs, got %d", len(j.Keys), len(inputs))
	}
	for i, keyList := range j.Keys {
		for _, k := range keyList {
			if err := checkExprConformance(TagJoin, inputs[i], k); err != nil {
				return err
			}
		}
	}
	return nil
}

func (*Join) LineageTag() string { return "JOIN" }

func (j *Join) LineageParams() string {
	s := ""
	for i, keyList := range j.Keys {
		if i > 0 {
			s += "|"
		}
		for ki, k := range keyList {
			if ki > 0 {
				s += ","
			}
			s += expr.Print(k)
		}
	}
	return s
}

var _ Operator = (*Join)(nil)
