package expr

import (
	"encoding/json"
	"fmt"
)

// wire is the JSON envelope every Expr variant round-trips through. Only
// the fields relevant to Tag are populated; this mirrors how op/json.go
// decodes the operator graph itself — a single flat, tagged shape rather
// than one Go type per JSON shape, since the decoder is the only
// consumer and gains nothing from a stricter schema.
type wire struct {
	Tag string `json:"tag"`

	// Const
	Kind string  `json:"kind,omitempty"`
	Bool bool    `json:"bool,omitempty"`
	Int  int64   `json:"int,omitempty"`
	Real float64 `json:"real,omitempty"`
	Str  string  `json:"str,omitempty"`

	// FieldRef
	Name  string `json:"name,omitempty"`
	Index int    `json:"index,omitempty"`
	Alias string `json:"alias,omitempty"`

	// DerefTuple
	Depth int   `json:"depth,omitempty"`
	Field *wire `json:"field,omitempty"`

	// Unary
	Op      string `json:"op,omitempty"`
	Operand *wire  `json:"operand,omitempty"`

	// Binary
	L *wire `json:"l,omitempty"`
	R *wire `json:"r,omitempty"`

	// Ternary
	Cond *wire `json:"cond,omitempty"`
	B0   *wire `json:"b0,omitempty"`
	B1   *wire `json:"b1,omitempty"`

	// FuncCall
	Parameters []*wire `json:"parameters,omitempty"`
}

// Encode renders e as the flat JSON envelope Decode reads back, used by
// round-trip tests; nothing in cmd/pigletc calls it.
func Encode(e Expr) (json.RawMessage, error) {
	w, err := toWire(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// Decode reconstructs an Expr tree from the JSON operator IR read by
// cmd/pigletc from stdin (SPEC_FULL.md §4.12).
func Decode(data json.RawMessage) (Expr, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWire(&w)
}

func toWire(e Expr) (*wire, error) {
	if e == nil {
		return nil, nil
	}
	switch n := e.(type) {
	case *Const:
		return &wire{Tag: "const", Kind: constKindName(n.Kind), Bool: n.Bool, Int: n.Int, Real: n.Real, Str: n.Str}, nil
	case *FieldRef:
		return &wire{Tag: "field_ref", Name: n.Name, Index: n.Index, Alias: n.Alias}, nil
	case *DerefTuple:
		f, err := toWire(&n.Field)
		if err != nil {
			return nil, err
		}
		return &wire{Tag: "deref_tuple", Depth: n.Depth, Field: f}, nil
	case *Unary:
		operand, err := toWire(n.Operand)
		if err != nil {
			return nil, err
		}
		return &wire{Tag: "unary", Op: unaryOpName(n.Op), Operand: operand}, nil
	case *Binary:
		l, err := toWire(n.L)
		if err != nil {
			return nil, err
		}
		r, err := toWire(n.R)
		if err != nil {
			return nil, err
		}
		return &wire{Tag: "binary", Op: binaryOpName(n.Op), L: l, R: r}, nil
	case *Ternary:
		cond, err := toWire(n.Cond)
		if err != nil {
			return nil, err
		}
		b0, err := toWire(n.B0)
		if err != nil {
			return nil, err
		}
		b1, err := toWire(n.B1)
		if err != nil {
			return nil, err
		}
		return &wire{Tag: "ternary", Cond: cond, B0: b0, B1: b1}, nil
	case *FuncCall:
		params := make([]*wire, len(n.Parameters))
		for i, p := range n.Parameters {
			pw, err := toWire(p)
			if err != nil {
				return nil, err
			}
			params[i] = pw
		}
		return &wire{Tag: "func_call", Name: n.Name, Parameters: params}, nil
	default:
		return nil, fmt.Errorf("expr: unknown node type %T", e)
	}
}

func fromWire(w *wire) (Expr, error) {
	if w == nil {
		return nil, nil
	}
	switch w.Tag {
	case "const":
		k, err := constKindFromName(w.Kind)
		if err != nil {
			return nil, err
		}
		return &Const{Kind: k, Bool: w.Bool, Int: w.Int, Real: w.Real, Str: w.Str}, nil
	case "field_ref":
		idx := w.Index
		if w.Name != "" {
			idx = -1
		}
		return &FieldRef{Name: w.Name, Index: idx, Alias: w.Alias}, nil
	case "deref_tuple":
		f, err := fromWire(w.Field)
		if err != nil {
			return nil, err
		}
		fr, ok := f.(*FieldRef)
		if !ok {
			return nil, fmt.Errorf("expr: deref_tuple.field must be a field_ref")
		}
		return &DerefTuple{Depth: w.Depth, Field: *fr}, nil
	case "unary":
		op, err := unaryOpFromName(w.Op)
		if err != nil {
			return nil, err
		}
		operand, err := fromWire(w.Operand)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: op, Operand: operand}, nil
	case "binary":
		op, err := binaryOpFromName(w.Op)
		if err != nil {
			return nil, err
		}
		l, err := fromWire(w.L)
		if err != nil {
			return nil, err
		}
		r, err := fromWire(w.R)
		if err != nil {
			return nil, err
		}
		return &Binary{Op: op, L: l, R: r}, nil
	case "ternary":
		cond, err := fromWire(w.Cond)
		if err != nil {
			return nil, err
		}
		b0, err := fromWire(w.B0)
		if err != nil {
			return nil, err
		}
		b1, err := fromWire(w.B1)
		if err != nil {
			return nil, err
		}
		return &Ternary{Cond: cond, B0: b0, B1: b1}, nil
	case "func_call":
		params := make([]Expr, len(w.Parameters))
		for i, pw := range w.Parameters {
			p, err := fromWire(pw)
			if err != nil {
				return nil, err
			}
			params[i] = p
		}
		return &FuncCall{Name: w.Name, Parameters: params}, nil
	default:
		return nil, fmt.Errorf("expr: unknown wire tag %q", w.Tag)
	}
}

func constKindName(k ConstKind) string {
	switch k {
	case ConstNull:
		return "null"
	case ConstBool:
		return "bool"
	case ConstInt:
		return "int"
	case ConstLong:
		return "long"
	case ConstFloat:
		return "float"
	case ConstDouble:
		return "double"
	case ConstStr:
		return "str"
	default:
		return "null"
	}
}

func constKindFromName(s string) (ConstKind, error) {
	switch s {
	case "", "null":
		return ConstNull, nil
	case "bool":
		return ConstBool, nil
	case "int":
		return ConstInt, nil
	case "long":
		return ConstLong, nil
	case "float":
		return ConstFloat, nil
	case "double":
		return ConstDouble, nil
	case "str":
		return ConstStr, nil
	default:
		return ConstNull, fmt.Errorf("expr: unknown const kind %q", s)
	}
}

func unaryOpName(op UnaryOp) string {
	if op == OpNot {
		return "not"
	}
	return "neg"
}

func unaryOpFromName(s string) (UnaryOp, error) {
	switch s {
	case "neg":
		return OpNeg, nil
	case "not":
		return OpNot, nil
	default:
		return 0, fmt.Errorf("expr: unknown unary op %q", s)
	}
}

func binaryOpName(op BinaryOp) string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpMod:
		return "mod"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpLt:
		return "lt"
	case OpLe:
		return "le"
	case OpGt:
		return "gt"
	case OpGe:
		return "ge"
	default:
		return "eq"
	}
}

func binaryOpFromName(s string) (BinaryOp, error) {
	switch s {
	case "add":
		return OpAdd, nil
	case "sub":
		return OpSub, nil
	case "mul":
		return OpMul, nil
	case "div":
		return OpDiv, nil
	case "mod":
		return OpMod, nil
	case "and":
		return OpAnd, nil
	case "or":
		return OpOr, nil
	case "eq":
		return OpEq, nil
	case "ne":
		return OpNe, nil
	case "lt":
		return OpLt, nil
	case "le":
		return OpLe, nil
	case "gt":
		return OpGt, nil
	case "ge":
		return OpGe, nil
	default:
		return 0, fmt.Errorf("expr: unknown binary op %q", s)
	}
}
