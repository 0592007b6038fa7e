package schema

import (
	"fmt"
	"strings"
)

// Field is one named, typed slot of a TupleType. Field order matters for
// structural compatibility; the name only matters for named-field lookup
// (spec.md §3).
type Field struct {
	Name string
	Type Type
}

// TupleType is an ordered list of named, typed fields.
type TupleType struct {
	Fields []Field
}

func NewTupleType(fields ...Field) *TupleType {
	return &TupleType{Fields: append([]Field(nil), fields...)}
}

func (t *TupleType) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = fmt.Sprintf("%s:%s", f.Name, f.Type.String())
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// FieldByName resolves a named field reference. Returns (index, ok).
func (t *TupleType) FieldByName(name string) (int, bool) {
	for i, f := range t.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// FieldByIndex resolves a positional field reference.
func (t *TupleType) FieldByIndex(idx int) (Field, bool) {
	if idx < 0 || idx >= len(t.Fields) {
		return Field{}, false
	}
	return t.Fields[idx], true
}

// Promote widens the field at idx to k if k is a strict widening of the
// field's current type, per spec.md §3 ("ByteArray ... promoted on first
// observation"). It is a no-op if the existing type is already as wide or
// wider, or if either type is not part of the numeric chain.
func (t *TupleType) Promote(idx int, k Kind) {
	if idx < 0 || idx >= len(t.Fields) {
		return
	}
	cur := t.Fields[idx].Type
	if !cur.IsScalar() {
		return
	}
	curRank, curOK := rank(cur.Kind)
	newRank, newOK := rank(k)
	if curOK && newOK && newRank > curRank {
		t.Fields[idx].Type = Scalar(k)
	}
}

func (t *TupleType) Clone() *TupleType {
	out := &TupleType{Fields: make([]Field, len(t.Fields))}
	copy(out.Fields, t.Fields)
	return out
}

// BagType wraps a TupleType: every element of the bag has this row shape.
type BagType struct {
	Elem *TupleType
}

func NewBagType(elem *TupleType) *BagType {
	return &BagType{Elem: elem}
}

func (b *BagType) String() string {
	if b.Elem == nil {
		return "bag{}"
	}
	return "bag{" + b.Elem.String() + "}"
}

func (b *BagType) Clone() *BagType {
	if b == nil {
		return nil
	}
	return &BagType{Elem: b.Elem.Clone()}
}
