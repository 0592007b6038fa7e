package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintIsCanonical(t *testing.T) {
	assert := assert.New(t)

	e1 := &Binary{Op: OpGt, L: &FieldRef{Name: "x"}, R: ConstInt64(0)}
	e2 := &Binary{Op: OpGt, L: &FieldRef{Name: "x"}, R: ConstInt64(0)}
	assert.Equal(Print(e1), Print(e2))

	e3 := &Binary{Op: OpGt, L: &FieldRef{Name: "x"}, R: ConstInt64(1)}
	assert.NotEqual(Print(e1), Print(e3))
}

func TestCloneIsDeep(t *testing.T) {
	assert := assert.New(t)

	orig := &Binary{Op: OpAnd, L: &FieldRef{Name: "x"}, R: ConstInt64(5)}
	clone := Clone(orig).(*Binary)

	clone.L.(*FieldRef).Name = "y"
	assert.Equal("x", orig.L.(*FieldRef).Name)
	assert.Equal("y", clone.L.(*FieldRef).Name)
}

func TestAndCollapsesNil(t *testing.T) {
	assert := assert.New(t)

	f := &FieldRef{Name: "x"}
	assert.Equal(f, And(nil, f))
	assert.Equal(f, And(f, nil))

	both := And(f, ConstBoolean(true))
	assert.Equal(TagBinary, both.Tag())
}

func TestReferencedFields(t *testing.T) {
	assert := assert.New(t)

	e := &Binary{
		Op: OpAnd,
		L:  &Binary{Op: OpGt, L: &FieldRef{Name: "x"}, R: ConstInt64(0)},
		R:  &Binary{Op: OpLt, L: &FieldRef{Name: "y"}, R: ConstInt64(5)},
	}
	names, indices := ReferencedFields(e)
	assert.True(names["x"])
	assert.True(names["y"])
	assert.Empty(indices)
}

func TestVisitOrderMatchesTreeShape(t *testing.T) {
	assert := assert.New(t)

	var order []string
	rec := &recordingVisitor{order: &order}
	e := &Binary{Op: OpAdd, L: ConstInt64(1), R: ConstInt64(2)}
	assert.NoError(VisitPostOrder(rec, e))
	assert.Equal([]string{"const:1", "const:2", "binary"}, order)
}

type recordingVisitor struct {
	order *[]string
}

func (r *recordingVisitor) AcceptConst(c *Const) (bool, error) {
	*r.order = append(*r.order, "const:"+c.String())
	return true, nil
}
func (r *recordingVisitor) AcceptFieldRef(*FieldRef) (bool, error) { return true, nil }
func (r *recordingVisitor) AcceptDerefTuple(*DerefTuple) (bool, error) {
	return true, nil
}
func (r *recordingVisitor) AcceptUnary(*Unary) (bool, error) { return true, nil }
func (r *recordingVisitor) AcceptBinary(*Binary) (bool, error) {
	*r.order = append(*r.order, "binary")
	return true, nil
}
func (r *recordingVisitor) AcceptTernary(*Ternary) (bool, error) { return true, nil }
func (r *recordingVisitor) AcceptFuncCall(*FuncCall) (bool, error) {
	return true, nil
}
