package op

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/schema"
)

func TestDecodePlanBuildsLoadFilterDump(t *testing.T) {
	assert := assert.New(t)

	src := `[
		{"tag":"load","out":"a","file":"/tmp/x","loader":"PigStorage",
		 "declared_schema":{"Elem":{"Fields":[{"Name":"x","Type":{"Kind":1}}]}},
		 "last_modified":-1},
		{"tag":"filter","in":["a"],"out":"b",
		 "pred":{"tag":"binary","op":"gt","l":{"tag":"field_ref","name":"x","index":-1},"r":{"tag":"const","kind":"int","int":10}}},
		{"tag":"dump","in":["b"]}
	]`

	ops, err := DecodePlan([]byte(src), nil)
	assert.NoError(err)
	assert.Len(ops, 3)

	load, ok := ops[0].(*Load)
	assert.True(ok)
	assert.Equal("/tmp/x", load.File)
	assert.Equal(int64(-1), load.LastModified)

	filter, ok := ops[1].(*Filter)
	assert.True(ok)
	bin, ok := filter.Pred.(*expr.Binary)
	assert.True(ok)
	assert.Equal(expr.OpGt, bin.Op)

	_, ok = ops[2].(*Dump)
	assert.True(ok)
}

func TestDecodePlanRejectsUnknownTag(t *testing.T) {
	assert := assert.New(t)

	_, err := DecodePlan([]byte(`[{"tag":"bogus"}]`), nil)
	assert.Error(err)
}

func TestDecodePlanNestedForeachRequiresLink(t *testing.T) {
	assert := assert.New(t)

	src := `[{"tag":"foreach","in":["a"],"out":"b","nested_plan":[
		{"tag":"generate","in":["a"],"out":"z","exprs":[{"expr":{"tag":"const","kind":"int","int":1}}]}
	]}]`

	_, err := DecodePlan([]byte(src), nil)
	assert.Error(err)
}

func TestDecodePlanNestedForeachLinksViaCallback(t *testing.T) {
	assert := assert.New(t)

	src := `[{"tag":"foreach","in":["a"],"out":"b","nested_plan":[
		{"tag":"generate","in":["a"],"out":"z","exprs":[{"expr":{"tag":"const","kind":"int","int":1}}]}
	]}]`

	var linkedOps []Operator
	link := func(ops []Operator) (NestedPlan, error) {
		linkedOps = ops
		return fakeNestedPlan{}, nil
	}

	ops, err := DecodePlan([]byte(src), link)
	assert.NoError(err)
	assert.Len(ops, 1)
	assert.Len(linkedOps, 1)

	fe, ok := ops[0].(*Foreach)
	assert.True(ok)
	_, ok = fe.Gen.(*GeneratorPlan)
	assert.True(ok)
}

type fakeNestedPlan struct{}

func (fakeNestedPlan) FinalSchema() (*schema.BagType, bool) { return nil, false }
func (fakeNestedPlan) Validate() error                      { return nil }

func TestWireGenExprRawMessagePassesThroughExprDecode(t *testing.T) {
	assert := assert.New(t)

	raw := json.RawMessage(`{"tag":"const","kind":"str","str":"hi"}`)
	exprs, err := decodeGenExprs([]wireGenExpr{{Expr: raw, Alias: "y"}})
	assert.NoError(err)
	assert.Len(exprs, 1)
	assert.Equal("y", exprs[0].Alias)
	c, ok := exprs[0].Expr.(*expr.Const)
	assert.True(ok)
	assert.Equal("hi", c.Str)
}
