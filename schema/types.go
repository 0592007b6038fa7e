// Package schema implements the nominal/structural type model of spec.md
// §3: a small scalar lattice (ByteArray < Int < Long < Float < Double,
// CharArray a separate chain) plus the compound Tuple/Bag/Map types, and
// typeCompatibility over them.
package schema

import "fmt"

// Kind tags a scalar or compound type. The numeric order of the scalar
// kinds below (ByteArray, Int, Long, Float, Double) is the widening
// order used by rank(); do not reorder them.
type Kind int

const (
	ByteArray Kind = iota
	Int
	Long
	Float
	Double
	CharArray
	Boolean
	Tuple
	Bag
	Map
)

func (k Kind) String() string {
	switch k {
	case ByteArray:
		return "bytearray"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case CharArray:
		return "chararray"
	case Boolean:
		return "boolean"
	case Tuple:
		return "tuple"
	case Bag:
		return "bag"
	case Map:
		return "map"
	default:
		return "unknown"
	}
}

// rank places a scalar kind in the numeric widening chain. ByteArray sits
// at the bottom of every chain (it promotes on first observation, per
// spec.md §3); CharArray and Boolean are not part of the numeric chain
// and only compare equal to themselves or ByteArray.
func rank(k Kind) (int, bool) {
	switch k {
	case ByteArray:
		return 0, true
	case Int:
		return 1, true
	case Long:
		return 2, true
	case Float:
		return 3, true
	case Double:
		return 4, true
	default:
		return 0, false
	}
}

// Type is a single field's type: a Kind, plus (for Tuple) the nested
// TupleType and (for Bag) the nested BagType and (for Map) the value
// Type of the map (Pig maps are always string-keyed).
type Type struct {
	Kind   Kind
	Tuple  *TupleType `json:",omitempty"`
	Bag    *BagType   `json:",omitempty"`
	MapVal *Type      `json:",omitempty"`
}

func Scalar(k Kind) Type { return Type{Kind: k} }

func TupleOf(t *TupleType) Type { return Type{Kind: Tuple, Tuple: t} }

func BagOf(b *BagType) Type { return Type{Kind: Bag, Bag: b} }

func MapOf(v Type) Type { return Type{Kind: Map, MapVal: &v} }

func (t Type) String() string {
	switch t.Kind {
	case Tuple:
		if t.Tuple != nil {
			return t.Tuple.String()
		}
		return "tuple()"
	case Bag:
		if t.Bag != nil {
			return t.Bag.String()
		}
		return "bag{}"
	case Map:
		if t.MapVal != nil {
			return fmt.Sprintf("map[%s]", t.MapVal.String())
		}
		return "map[]"
	default:
		return t.Kind.String()
	}
}

// IsScalar reports whether t is one of the leaf scalar kinds (as opposed
// to Tuple/Bag/Map).
func (t Type) IsScalar() bool {
	switch t.Kind {
	case Tuple, Bag, Map:
		return false
	default:
		return true
	}
}
