package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTripsBinaryExpr(t *testing.T) {
	assert := assert.New(t)

	orig := &Binary{
		Op: OpGt,
		L:  &FieldRef{Name: "x", Index: -1},
		R:  ConstInt64(10),
	}

	data, err := Encode(orig)
	assert.NoError(err)

	got, err := Decode(data)
	assert.NoError(err)
	assert.Equal(Print(orig), Print(got))
}

func TestEncodeDecodeRoundTripsFuncCallAndTernary(t *testing.T) {
	assert := assert.New(t)

	orig := &Ternary{
		Cond: &Binary{Op: OpEq, L: &FieldRef{Name: "a", Index: -1}, R: ConstString("k")},
		B0:   &FuncCall{Name: "SUM", Parameters: []Expr{&FieldRef{Name: "b", Index: -1}}},
		B1:   ConstFloat64(0.5),
	}

	data, err := Encode(orig)
	assert.NoError(err)

	got, err := Decode(data)
	assert.NoError(err)
	assert.Equal(Print(orig), Print(got))
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	assert := assert.New(t)

	_, err := Decode([]byte(`{"tag":"nonsense"}`))
	assert.Error(err)
}

func TestDecodeOfNullIsNilWithNoError(t *testing.T) {
	assert := assert.New(t)

	e, err := Decode(nil)
	assert.NoError(err)
	assert.Nil(e)

	e, err = Decode([]byte("null"))
	assert.NoError(err)
	assert.Nil(e)
}

func TestEncodeDecodeRoundTripsDerefTuple(t *testing.T) {
	assert := assert.New(t)

	orig := &DerefTuple{Depth: 1, Field: FieldRef{Name: "outer", Index: -1}}

	data, err := Encode(orig)
	assert.NoError(err)

	got, err := Decode(data)
	assert.NoError(err)
	assert.Equal(orig, got)
}
