// Package expr implements the predicate/generator expression tree shared
// by Filter, Foreach's GeneratorList, Join's per-relation keys, OrderBy's
// key, and Matcher's predicates (SPEC_FULL.md §3). It is a from-scratch
// reimplementation, for the dataflow domain, of the tagged-expression
// idiom used by the teacher's SQL-surface sql.Expr — the SQL grammar
// itself is out of this module's scope.
package expr

import "fmt"

type Tag int

const (
	TagConst Tag = iota
	TagFieldRef
	TagDerefTuple
	TagUnary
	TagBinary
	TagTernary
	TagFuncCall
)

// Expr is the sum type every expression node implements.
type Expr interface {
	Tag() Tag
}

// ConstKind tags the literal's Go-side representation.
type ConstKind int

const (
	ConstNull ConstKind = iota
	ConstBool
	ConstInt
	ConstLong
	ConstFloat
	ConstDouble
	ConstStr
)

// Const is a literal value. It is also where the operator model's
// "distinct literal parameters" invariant (spec.md §3) is anchored:
// lineage strings render Const values verbatim.
type Const struct {
	Kind ConstKind
	Bool bool
	Int  int64
	Real float64
	Str  string
}

func (*Const) Tag() Tag { return TagConst }

func ConstInt64(v int64) *Const   { return &Const{Kind: ConstInt, Int: v} }
func ConstFloat64(v float64) *Const { return &Const{Kind: ConstDouble, Real: v} }
func ConstString(v string) *Const { return &Const{Kind: ConstStr, Str: v} }
func ConstBoolean(v bool) *Const  { return &Const{Kind: ConstBool, Bool: v} }

func (c *Const) String() string {
	switch c.Kind {
	case ConstNull:
		return "null"
	case ConstBool:
		return fmt.Sprintf("%t", c.Bool)
	case ConstInt, ConstLong:
		return fmt.Sprintf("%d", c.Int)
	case ConstFloat, ConstDouble:
		return fmt.Sprintf("%g", c.Real)
	case ConstStr:
		return fmt.Sprintf("%q", c.Str)
	default:
		return "<const>"
	}
}

// FieldRef names a field of the current tuple, either positionally
// ($0, $1, ...) or by name. Positional references are always legal;
// named references require a known input schema (spec.md §4.2).
type FieldRef struct {
	Name  string // empty when purely positional
	Index int    // -1 when purely named
	Alias string // declared output alias, if any (Foreach GeneratorExpr)
}

func (*FieldRef) Tag() Tag { return TagFieldRef }

func (f *FieldRef) String() string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("$%d", f.Index)
}

// DerefTuple resolves a field of an *outer* tuple from inside a nested
// Foreach's ConstructBag body (spec.md §4.2's "ConstructBag children
// receive a back-reference to the parent schema"). Depth counts how many
// enclosing plans to walk up; 0 means the immediate parent.
type DerefTuple struct {
	Depth int
	Field FieldRef
}

func (*DerefTuple) Tag() Tag { return TagDerefTuple }

type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

type Unary struct {
	Op      UnaryOp
	Operand Expr
}

func (*Unary) Tag() Tag { return TagUnary }

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

type Binary struct {
	Op BinaryOp
	L  Expr
	R  Expr
}

func (*Binary) Tag() Tag { return TagBinary }

type Ternary struct {
	Cond Expr
	B0   Expr
	B1   Expr
}

func (*Ternary) Tag() Tag { return TagTernary }

// FuncCall models a call to the function Name with Parameters.
type FuncCall struct {
	Name       string
	Parameters []Expr
}

func (*FuncCall) Tag() Tag { return TagFuncCall }
