package rewrite

import (
	"testing"

	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/plan"
	"github.com/dianpeng/piglet/schema"
	"github.com/stretchr/testify/assert"
)

func bag(fields ...schema.Field) *schema.BagType {
	return schema.NewBagType(schema.NewTupleType(fields...))
}

func TestMergeAdjacentFiltersCollapsesToOne(t *testing.T) {
	assert := assert.New(t)
	l := op.NewLoad("a", "/f", "PigStorage", bag(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)}), -1)
	f1 := op.NewFilter("a", "b", &expr.Binary{Op: expr.OpGt, L: &expr.FieldRef{Name: "x", Index: -1}, R: expr.ConstInt64(1)})
	f2 := op.NewFilter("b", "c", &expr.Binary{Op: expr.OpLt, L: &expr.FieldRef{Name: "x", Index: -1}, R: expr.ConstInt64(10)})
	s := op.NewStore("c", "/out", "PigStorage")

	p, err := plan.New([]op.Operator{l, f1, f2, s})
	assert.NoError(err)

	changed, err := MergeAdjacentFilters(Node{Plan: p, ID: f2.ID()})
	assert.NoError(err)
	assert.True(changed)

	assert.Nil(p.Get(f1.ID()))
	assert.Contains(expr.Print(f2.Pred), "and")
}

func TestPushDownFilterSwapsPassthroughField(t *testing.T) {
	assert := assert.New(t)
	l := op.NewLoad("a", "/f", "PigStorage", bag(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)}), -1)
	fe, err := op.NewForeach("a", "b", &op.GeneratorList{Exprs: []op.GeneratorExpr{
		{Expr: &expr.FieldRef{Name: "x", Index: -1}, Alias: "x"},
	}})
	assert.NoError(err)
	filt := op.NewFilter("b", "c", &expr.Binary{Op: expr.OpGt, L: &expr.FieldRef{Name: "x", Index: -1}, R: expr.ConstInt64(1)})
	s := op.NewStore("c", "/out", "PigStorage")

	p, err := plan.New([]op.Operator{l, fe, filt, s})
	assert.NoError(err)

	changed, err := PushDownFilter(Node{Plan: p, ID: filt.ID()})
	assert.NoError(err)
	assert.True(changed)
}

func TestInstrumentTimingRecordsParentLineageSignatures(t *testing.T) {
	assert := assert.New(t)
	l := op.NewLoad("a", "/f", "PigStorage", bag(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)}), -1)
	f := op.NewFilter("a", "b", &expr.Binary{Op: expr.OpGt, L: &expr.FieldRef{Name: "x", Index: -1}, R: expr.ConstInt64(1)})
	s := op.NewStore("b", "/out", "PigStorage")

	p, err := plan.New([]op.Operator{l, f, s})
	assert.NoError(err)

	rule := Fixpoint(InstrumentTiming(p))
	for _, o := range p.Ops {
		if o == nil {
			continue
		}
		_, err := rule(Node{Plan: p, ID: o.ID()})
		assert.NoError(err)
	}

	var timers []*op.TimingOp
	for _, o := range p.Ops {
		if t, ok := o.(*op.TimingOp); ok {
			timers = append(timers, t)
		}
	}
	assert.Len(timers, 2)

	loadSig, err := p.LineageSignature(l.ID())
	assert.NoError(err)

	for _, tm := range timers {
		if tm.WrappedLineageSig == loadSig {
			assert.Empty(tm.ParentLineageSigs)
		} else {
			assert.Equal([]string{loadSig}, tm.ParentLineageSigs)
		}
	}
}
