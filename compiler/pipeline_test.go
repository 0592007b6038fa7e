package compiler

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/markov"
	"github.com/dianpeng/piglet/materialize"
	"github.com/dianpeng/piglet/materialize/store"
	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/plan"
	"github.com/dianpeng/piglet/rewrite"
	"github.com/dianpeng/piglet/schema"
)

func testContext(t *testing.T) *Context {
	t.Helper()
	dir := t.TempDir()
	return &Context{
		Config: &Config{
			Backend:       "awk",
			MatBaseDir:    filepath.Join(dir, "mat"),
			CataloguePath: filepath.Join(dir, "catalogue.json"),
		},
		Logger:    zerolog.Nop(),
		Model:     markov.NewModel(),
		Catalogue: materialize.NewCatalogue(filepath.Join(dir, "catalogue.json")),
		Backend:   store.NewLocalBackend(filepath.Join(dir, "mat")),
		Registry:  defaultRegistry(),
	}
}

func bagOf(fields ...schema.Field) *schema.BagType {
	return schema.NewBagType(schema.NewTupleType(fields...))
}

func TestCompileEmitsAWKForLoadFilterDump(t *testing.T) {
	assert := assert.New(t)

	ctx := testContext(t)
	load := op.NewLoad("a", "/tmp/x", "PigStorage",
		bagOf(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)}), -1)
	filter := op.NewFilter("a", "b", &expr.Binary{Op: expr.OpGt, L: &expr.FieldRef{Name: "x", Index: -1}, R: expr.ConstInt64(0)})
	dump := op.NewDump("b")

	result, err := Compile(ctx, []op.Operator{load, filter, dump})
	assert.NoError(err)
	assert.Contains(result.Code, "BEGIN")
	assert.NotEmpty(result.FinalLineageDigest)
	assert.Equal(0, result.CacheHits)
}

func TestCompileMergesAdjacentFiltersViaRegisteredRewrite(t *testing.T) {
	assert := assert.New(t)

	ctx := testContext(t)
	load := op.NewLoad("a", "/tmp/x", "PigStorage",
		bagOf(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)}), -1)
	f1 := op.NewFilter("a", "b", &expr.Binary{Op: expr.OpGt, L: &expr.FieldRef{Name: "x", Index: -1}, R: expr.ConstInt64(0)})
	f2 := op.NewFilter("b", "c", &expr.Binary{Op: expr.OpLt, L: &expr.FieldRef{Name: "x", Index: -1}, R: expr.ConstInt64(100)})
	dump := op.NewDump("c")

	result, err := Compile(ctx, []op.Operator{load, f1, f2, dump})
	assert.NoError(err)
	assert.Greater(result.RewritesApplied, 0)
}

func TestApplyRewritesSkipsInstrumentTimingWithoutProfilingURL(t *testing.T) {
	assert := assert.New(t)

	ctx := testContext(t)
	ctx.Registry = rewrite.NewRegistry()
	load := op.NewLoad("a", "/tmp/x", "PigStorage",
		bagOf(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)}), -1)
	dump := op.NewDump("a")

	p, err := plan.New([]op.Operator{load, dump})
	assert.NoError(err)

	n, err := applyRewrites(ctx, p)
	assert.NoError(err)
	assert.Equal(0, n)
}
