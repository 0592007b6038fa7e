package plan

import (
	"testing"

	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/schema"
	"github.com/stretchr/testify/assert"
)

func loadTuple(fields ...schema.Field) *schema.BagType {
	return schema.NewBagType(schema.NewTupleType(fields...))
}

func simpleLoadFilterStore(file string) []op.Operator {
	l := op.NewLoad("a", file, "PigStorage",
		loadTuple(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)}), -1)
	f := op.NewFilter("a", "b", &expr.Binary{Op: expr.OpGt, L: &expr.FieldRef{Name: "x", Index: -1}, R: expr.ConstInt64(10)})
	s := op.NewStore("b", "/tmp/out", "PigStorage")
	return []op.Operator{l, f, s}
}

func TestPlanBuildsPipesAndSchemas(t *testing.T) {
	assert := assert.New(t)
	p, err := New(simpleLoadFilterStore("/a/b"))
	assert.NoError(err)
	assert.Len(p.Ops, 3)
	assert.NotNil(p.Pipes["a"])
	assert.NotNil(p.Pipes["b"])
	assert.Equal(op.NodeID(0), p.Pipes["a"].Producer)
	assert.NotNil(p.Ops[1].Schema())
}

func TestPlanRejectsDisconnectedOperator(t *testing.T) {
	assert := assert.New(t)
	ops := simpleLoadFilterStore("/a/b")
	orphan := op.NewLoad("orphan", "/c/d", "PigStorage", loadTuple(schema.Field{Name: "y", Type: schema.Scalar(schema.Int)}), -1)
	ops = append(ops, orphan)
	_, err := New(ops)
	assert.Error(err)
}

func TestLineageSignatureStableAcrossIdenticalPlans(t *testing.T) {
	assert := assert.New(t)
	p1, err := New(simpleLoadFilterStore("/a/b"))
	assert.NoError(err)
	p2, err := New(simpleLoadFilterStore("/a/b"))
	assert.NoError(err)

	sig1, err := p1.LineageSignature(p1.Ops[1].ID())
	assert.NoError(err)
	sig2, err := p2.LineageSignature(p2.Ops[1].ID())
	assert.NoError(err)
	assert.Equal(sig1, sig2)
}

func TestLineageSignatureDiffersOnLiteralParameter(t *testing.T) {
	assert := assert.New(t)
	p1, err := New(simpleLoadFilterStore("/a/b"))
	assert.NoError(err)
	p2, err := New(simpleLoadFilterStore("/a/c"))
	assert.NoError(err)

	sig1, _ := p1.LineageSignature(p1.Ops[1].ID())
	sig2, _ := p2.LineageSignature(p2.Ops[1].ID())
	assert.NotEqual(sig1, sig2)
}

func TestLineageSignatureSensitiveToLastModifiedWhenProfilingOn(t *testing.T) {
	assert := assert.New(t)

	load := func(mtime int64) []op.Operator {
		l := op.NewLoad("a", "/a/b", "PigStorage", loadTuple(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)}), mtime)
		s := op.NewStore("a", "/tmp/out", "PigStorage")
		return []op.Operator{l, s}
	}

	p1, err := New(load(100))
	assert.NoError(err)
	p2, err := New(load(200))
	assert.NoError(err)

	sig1, err := p1.LineageSignature(p1.Ops[0].ID())
	assert.NoError(err)
	sig2, err := p2.LineageSignature(p2.Ops[0].ID())
	assert.NoError(err)
	assert.NotEqual(sig1, sig2)
}

func TestLineageSignatureStableAcrossFileChurnWhenProfilingOff(t *testing.T) {
	assert := assert.New(t)

	load := func() []op.Operator {
		l := op.NewLoad("a", "/a/b", "PigStorage", loadTuple(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)}), -1)
		s := op.NewStore("a", "/tmp/out", "PigStorage")
		return []op.Operator{l, s}
	}

	p1, err := New(load())
	assert.NoError(err)
	p2, err := New(load())
	assert.NoError(err)

	sig1, err := p1.LineageSignature(p1.Ops[0].ID())
	assert.NoError(err)
	sig2, err := p2.LineageSignature(p2.Ops[0].ID())
	assert.NoError(err)
	assert.Equal(sig1, sig2)
}

func TestRegisterStatementsAreExtracted(t *testing.T) {
	assert := assert.New(t)
	ops := append([]op.Operator{op.NewRegister("mylib.jar")}, simpleLoadFilterStore("/a/b")...)
	p, err := New(ops)
	assert.NoError(err)
	assert.Equal([]string{"mylib.jar"}, p.RegisterArgs)
	assert.Len(p.Ops, 3)
}

func TestRemoveRewiresConsumersDirectly(t *testing.T) {
	assert := assert.New(t)
	p, err := New(simpleLoadFilterStore("/a/b"))
	assert.NoError(err)

	// insert a Distinct between filter and store, then remove it again.
	d := op.NewDistinct("", "b$distinct")
	assert.NoError(p.InsertAfter(p.Ops[1].ID(), d))
	newID := d.ID()
	assert.NoError(p.Remove(newID, false))

	store := p.Ops[2]
	assert.Len(store.InPipeNames(), 1)
	pp := p.Pipes[store.InPipeNames()[0]]
	assert.NotNil(pp)
	assert.Equal(p.Ops[1].ID(), pp.Producer)
}

func TestRemoveWithPredecessorsDetachesUpstreamCone(t *testing.T) {
	assert := assert.New(t)
	p, err := New(simpleLoadFilterStore("/a/b"))
	assert.NoError(err)

	loadID := p.Ops[0].ID()
	filterID := p.Ops[1].ID()

	// simulate a cache hit on the Filter's output: the Store's producer
	// no longer needs its own input, so whatever used to feed it (the
	// Filter, and transitively the Load) should be pruned.
	store := p.Ops[2]
	store.SetInPipeNames(nil)

	assert.NoError(p.Remove(filterID, true))

	assert.Nil(p.Get(filterID))
	assert.Nil(p.Get(loadID))
}
