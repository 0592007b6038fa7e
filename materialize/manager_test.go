package materialize

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/markov"
	"github.com/dianpeng/piglet/materialize/store"
	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/plan"
	"github.com/dianpeng/piglet/schema"
	"github.com/stretchr/testify/assert"
)

func simplePlan(t *testing.T) *plan.DataflowPlan {
	l := op.NewLoad("a", "/f", "PigStorage",
		schema.NewBagType(schema.NewTupleType(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)})), -1)
	s := op.NewStore("a", "/out", "PigStorage")
	p, err := plan.New([]op.Operator{l, s})
	assert.NoError(t, err)
	return p
}

// filterPlan builds load(a) -> filter(a -> b) -> store(b) and returns the
// filter's ID: the one operator InsertNew considers, being neither a
// source nor a sink.
func filterPlan(t *testing.T) (*plan.DataflowPlan, op.NodeID) {
	l := op.NewLoad("a", "/f", "PigStorage",
		schema.NewBagType(schema.NewTupleType(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)})), -1)
	f := op.NewFilter("a", "b", &expr.Binary{Op: expr.OpGt, L: &expr.FieldRef{Name: "x", Index: -1}, R: expr.ConstInt64(0)})
	s := op.NewStore("b", "/out", "PigStorage")
	p, err := plan.New([]op.Operator{l, f, s})
	assert.NoError(t, err)
	return p, f.ID()
}

func TestInsertNewAcceptsHighBenefitCandidate(t *testing.T) {
	assert := assert.New(t)
	p, filterID := filterPlan(t)
	sig, err := p.LineageSignature(filterID)
	assert.NoError(err)

	m := markov.NewModel()
	m.Add(markov.Start, sig)
	for i := 0; i < 10; i++ {
		m.UpdateCost(markov.Start, sig, 100.0)
	}

	cat := NewCatalogue(filepath.Join(t.TempDir(), "catalogue.json"))
	mgr := NewManager(cat, m, nil, markov.StrategyAvg, Thresholds{MinCost: 1, MinBenefit: 1})

	inserted, err := mgr.InsertNew(p)
	assert.NoError(err)
	assert.Equal(1, inserted)

	_, ok := cat.Lookup(sig)
	assert.True(ok)
}

func TestInsertNewRejectsBelowThreshold(t *testing.T) {
	assert := assert.New(t)
	p, filterID := filterPlan(t)
	sig, err := p.LineageSignature(filterID)
	assert.NoError(err)

	m := markov.NewModel()
	m.Add(markov.Start, sig)
	m.UpdateCost(markov.Start, sig, 0.001)

	cat := NewCatalogue(filepath.Join(t.TempDir(), "catalogue.json"))
	mgr := NewManager(cat, m, nil, markov.StrategyAvg, Thresholds{MinCost: 100, MinBenefit: 100})

	inserted, err := mgr.InsertNew(p)
	assert.NoError(err)
	assert.Equal(0, inserted)
}

func TestLoadCachedReplacesWithCacheNode(t *testing.T) {
	assert := assert.New(t)
	p := simplePlan(t)
	sig, err := p.LineageSignature(p.Ops[0].ID())
	assert.NoError(err)

	backend := store.NewLocalBackend(t.TempDir())
	uri, err := backend.Put(context.Background(), sig, []byte("cached-bytes"))
	assert.NoError(err)

	loadID := p.Ops[0].ID()

	cat := NewCatalogue(filepath.Join(t.TempDir(), "catalogue.json"))
	assert.NoError(cat.Put(CatalogueEntry{LineageSignature: sig, URI: uri}))

	m := markov.NewModel()
	mgr := NewManager(cat, m, backend, markov.StrategyAvg, Thresholds{})

	rewrites, err := mgr.LoadCached(p)
	assert.NoError(err)
	assert.Equal(1, rewrites)
	_, isCache := p.Get(loadID).(*op.Cache)
	assert.True(isCache)
	assert.Empty(p.Get(loadID).InPipeNames())
}

func TestLoadCachedDetachesUpstreamConeOnHit(t *testing.T) {
	assert := assert.New(t)
	l := op.NewLoad("a", "/f", "PigStorage",
		schema.NewBagType(schema.NewTupleType(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)})), -1)
	f := op.NewFilter("a", "b", &expr.Binary{Op: expr.OpGt, L: &expr.FieldRef{Name: "x", Index: -1}, R: expr.ConstInt64(0)})
	s := op.NewStore("b", "/out", "PigStorage")
	p, err := plan.New([]op.Operator{l, f, s})
	assert.NoError(err)

	sig, err := p.LineageSignature(f.ID())
	assert.NoError(err)

	backend := store.NewLocalBackend(t.TempDir())
	uri, err := backend.Put(context.Background(), sig, []byte("cached-bytes"))
	assert.NoError(err)

	cat := NewCatalogue(filepath.Join(t.TempDir(), "catalogue.json"))
	assert.NoError(cat.Put(CatalogueEntry{LineageSignature: sig, URI: uri}))

	m := markov.NewModel()
	mgr := NewManager(cat, m, backend, markov.StrategyAvg, Thresholds{})

	rewrites, err := mgr.LoadCached(p)
	assert.NoError(err)
	assert.Equal(1, rewrites)

	assert.Nil(p.Get(l.ID()))
	_, isCache := p.Get(f.ID()).(*op.Cache)
	assert.True(isCache)
}

func TestLoadCachedSkipsOnCacheMiss(t *testing.T) {
	assert := assert.New(t)
	p := simplePlan(t)
	sig, err := p.LineageSignature(p.Ops[0].ID())
	assert.NoError(err)
	loadID := p.Ops[0].ID()

	backend := store.NewLocalBackend(t.TempDir())

	cat := NewCatalogue(filepath.Join(t.TempDir(), "catalogue.json"))
	assert.NoError(cat.Put(CatalogueEntry{LineageSignature: sig, URI: "file:///does/not/exist"}))

	m := markov.NewModel()
	mgr := NewManager(cat, m, backend, markov.StrategyAvg, Thresholds{})

	rewrites, err := mgr.LoadCached(p)
	assert.NoError(err)
	assert.Equal(0, rewrites)
	_, isLoad := p.Get(loadID).(*op.Load)
	assert.True(isLoad)
}

func TestLoadCachedSkipsOnCacheCorrupt(t *testing.T) {
	assert := assert.New(t)
	p := simplePlan(t)
	sig, err := p.LineageSignature(p.Ops[0].ID())
	assert.NoError(err)
	loadID := p.Ops[0].ID()

	backend := store.NewLocalBackend(t.TempDir())
	uri, err := backend.Put(context.Background(), sig, []byte{})
	assert.NoError(err)

	cat := NewCatalogue(filepath.Join(t.TempDir(), "catalogue.json"))
	assert.NoError(cat.Put(CatalogueEntry{LineageSignature: sig, URI: uri}))

	m := markov.NewModel()
	mgr := NewManager(cat, m, backend, markov.StrategyAvg, Thresholds{})

	rewrites, err := mgr.LoadCached(p)
	assert.NoError(err)
	assert.Equal(0, rewrites)
	_, isLoad := p.Get(loadID).(*op.Load)
	assert.True(isLoad)
}
