package cg

import (
	"os"
	"strings"
	"testing"

	gawki "github.com/benhoyt/goawk/interp"
	gawkp "github.com/benhoyt/goawk/parser"
	"github.com/stretchr/testify/assert"

	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/plan"
	"github.com/dianpeng/piglet/schema"
)

// runAWK compiles and executes code under goawk, the way the teacher's
// cg_test.go cookbook harness runs generated programs against the
// reference goawk interpreter rather than shelling out to system awk.
func runAWK(t *testing.T, code string) string {
	t.Helper()
	prog, err := gawkp.ParseProgram([]byte(code), nil)
	if err != nil {
		t.Fatalf("parse generated program: %v\n%s", err, code)
	}
	interp, err := gawki.New(prog)
	if err != nil {
		t.Fatalf("build interpreter: %v", err)
	}
	var buf strings.Builder
	if _, err := interp.Execute(&gawki.Config{Output: &buf}); err != nil {
		t.Fatalf("execute generated program: %v\n%s", err, code)
	}
	return buf.String()
}

func bagOf(fields ...schema.Field) *schema.BagType {
	return schema.NewBagType(schema.NewTupleType(fields...))
}

func TestGeneratedProgramFiltersRows(t *testing.T) {
	assert := assert.New(t)

	f, err := os.CreateTemp(t.TempDir(), "piglet-load-*.tsv")
	assert.NoError(err)
	_, err = f.WriteString("1\ta\n2\tb\n3\tc\n")
	assert.NoError(err)
	assert.NoError(f.Close())

	load := op.NewLoad("a", f.Name(), "PigStorage",
		bagOf(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)}, schema.Field{Name: "y", Type: schema.Scalar(schema.CharArray)}), -1)
	filter := op.NewFilter("a", "b", &expr.Binary{
		Op: expr.OpGt,
		L:  &expr.FieldRef{Name: "x", Index: -1},
		R:  expr.ConstInt64(1),
	})
	dump := op.NewDump("b")

	p, err := plan.New([]op.Operator{load, filter, dump})
	assert.NoError(err)

	code, err := Generate(p, &Config{OutputSeparator: "\t", AwkType: AwkGoAwk})
	assert.NoError(err)

	out := runAWK(t, code)
	assert.Equal("2\tb\n3\tc\n", out)
}

func TestGeneratedProgramGroupsAndFlushesBag(t *testing.T) {
	assert := assert.New(t)

	f, err := os.CreateTemp(t.TempDir(), "piglet-load-*.tsv")
	assert.NoError(err)
	_, err = f.WriteString("1\ta\n1\tb\n2\tc\n")
	assert.NoError(err)
	assert.NoError(f.Close())

	load := op.NewLoad("a", f.Name(), "PigStorage",
		bagOf(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)}, schema.Field{Name: "y", Type: schema.Scalar(schema.CharArray)}), -1)
	group := op.NewGrouping("a", "g", []expr.Expr{&expr.FieldRef{Name: "x", Index: -1}})
	dump := op.NewDump("g")

	p, err := plan.New([]op.Operator{load, group, dump})
	assert.NoError(err)

	code, err := Generate(p, &Config{OutputSeparator: "\t", AwkType: AwkGoAwk})
	assert.NoError(err)

	out := runAWK(t, code)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(lines, 2)

	byKey := map[string]string{}
	for _, line := range lines {
		parts := strings.SplitN(line, "\t", 2)
		assert.Len(parts, 2)
		byKey[parts[0]] = parts[1]
	}
	assert.Contains(byKey, "1")
	assert.Contains(byKey, "2")
	assert.Contains(byKey["1"], "a")
	assert.Contains(byKey["1"], "b")
	assert.Contains(byKey["2"], "c")
}

func TestGeneratedProgramUnionsInputs(t *testing.T) {
	assert := assert.New(t)

	f1, err := os.CreateTemp(t.TempDir(), "piglet-load-*.tsv")
	assert.NoError(err)
	_, err = f1.WriteString("1\n")
	assert.NoError(err)
	assert.NoError(f1.Close())

	f2, err := os.CreateTemp(t.TempDir(), "piglet-load-*.tsv")
	assert.NoError(err)
	_, err = f2.WriteString("2\n")
	assert.NoError(err)
	assert.NoError(f2.Close())

	schema1 := bagOf(schema.Field{Name: "x", Type: schema.Scalar(schema.Int)})
	l1 := op.NewLoad("a", f1.Name(), "PigStorage", schema1, -1)
	l2 := op.NewLoad("b", f2.Name(), "PigStorage", schema1, -1)
	union := op.NewUnion([]string{"a", "b"}, "c")
	dump := op.NewDump("c")

	p, err := plan.New([]op.Operator{l1, l2, union, dump})
	assert.NoError(err)

	code, err := Generate(p, &Config{OutputSeparator: "\t", AwkType: AwkGoAwk})
	assert.NoError(err)

	out := runAWK(t, code)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.ElementsMatch([]string{"1", "2"}, lines)
}
