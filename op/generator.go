package op

import (
	"github.com/dianpeng/piglet/expr"
	"github.com/dianpeng/piglet/schema"
)

// GeneratorExpr is one projected column of a Foreach's GENERATE clause:
// an expression plus its optional declared alias (spec.md §4.2).
type GeneratorExpr struct {
	Expr  expr.Expr
	Alias string

	// DeclaredType is the explicit "AS alias:type" annotation, if any. It
	// is honored only when stronger than bytearray (spec.md §4.2);
	// otherwise the type is refined from Expr.
	DeclaredType *schema.Type
}

// Generator is either a flat list of projection expressions or a nested
// sub-plan whose final statement resolves the projection.
type Generator interface {
	isGenerator()
}

type GeneratorList struct {
	Exprs []GeneratorExpr
}

func (*GeneratorList) isGenerator() {}

// NestedPlan is the narrow surface Foreach needs from a nested
// DataflowPlan; op does not import plan (plan imports op) so the
// concrete type is supplied by the caller and only this interface is
// depended on here.
type NestedPlan interface {
	// FinalSchema returns the schema of the sub-plan's final Generate
	// statement, once the sub-plan has been schema-linked.
	FinalSchema() (*schema.BagType, bool)

	// Validate reports an error if the sub-plan's last statement is not
	// a Generate (spec.md §4.2's "must be Generate, else InvalidPlan").
	Validate() error
}

type GeneratorPlan struct {
	Sub NestedPlan
}

func (*GeneratorPlan) isGenerator() {}

// fieldTypeFromSchema resolves a FieldRef against a (possibly nil)
// input schema; unknown/unresolved references fall back to ByteArray,
// the lattice's bottom, per spec.md §3.
func fieldTypeFromSchema(f *expr.FieldRef, in *schema.BagType) schema.Type {
	if in == nil || in.Elem == nil {
		return schema.Scalar(schema.ByteArray)
	}
	if f.Name != "" {
		if idx, ok := in.Elem.FieldByName(f.Name); ok {
			return in.Elem.Fields[idx].Type
		}
		return schema.Scalar(schema.ByteArray)
	}
	if field, ok := in.Elem.FieldByIndex(f.Index); ok {
		return field.Type
	}
	return schema.Scalar(schema.ByteArray)
}

// inferType is a small, deliberately conservative evaluator used to
// refine a GeneratorExpr's result type when its declared alias type is
// no stronger than bytearray (spec.md §4.2). It does not attempt full
// constant folding; it only widens along the scalar lattice.
func inferType(e expr.Expr, in *schema.BagType) schema.Type {
	switch n := e.(type) {
	case *expr.Const:
		return constType(n)
	case *expr.FieldRef:
		return fieldTypeFromSchema(n, in)
	case *expr.DerefTuple:
		return fieldTypeFromSchema(&n.Field, in)
	case *expr.Unary:
		if n.Op == expr.OpNot {
			return schema.Scalar(schema.Boolean)
		}
		return inferType(n.Operand, in)
	case *expr.Binary:
		return inferBinaryType(n, in)
	case *expr.Ternary:
		return widen(inferType(n.B0, in), inferType(n.B1, in))
	case *expr.FuncCall:
		return schema.Scalar(schema.ByteArray) // aggregation/UDF results start untyped
	default:
		return schema.Scalar(schema.ByteArray)
	}
}

func constType(c *expr.Const) schema.Type {
	switch c.Kind {
	case expr.ConstBool:
		return schema.Scalar(schema.Boolean)
	case expr.ConstInt:
		return schema.Scalar(schema.Int)
	case expr.ConstLong:
		return schema.Scalar(schema.Long)
	case expr.ConstFloat:
		return schema.Scalar(schema.Float)
	case expr.ConstDouble:
		return schema.Scalar(schema.Double)
	case expr.ConstStr:
		return schema.Scalar(schema.CharArray)
	default:
		return schema.Scalar(schema.ByteArray)
	}
}

func inferBinaryType(n *expr.Binary, in *schema.BagType) schema.Type {
	switch n.Op {
	case expr.OpAnd, expr.OpOr, expr.OpEq, expr.OpNe, expr.OpLt, expr.OpLe, expr.OpGt, expr.OpGe:
		return schema.Scalar(schema.Boolean)
	default:
		return widen(inferType(n.L, in), inferType(n.R, in))
	}
}

func widen(a, b schema.Type) schema.Type {
	if schema.Compatible(a, b) {
		return b
	}
	if schema.Compatible(b, a) {
		return a
	}
	return schema.Scalar(schema.ByteArray)
}

// resolveGeneratorFields turns a projection list into concrete output
// fields, applying the declared-alias-wins-unless-bytearray rule.
func resolveGeneratorFields(exprs []GeneratorExpr, in *schema.BagType) []schema.Field {
	fields := make([]schema.Field, len(exprs))
	for i, ge := range exprs {
		name := ge.Alias
		if name == "" {
			name = syntheticFieldName(i)
		}
		var ty schema.Type
		if ge.DeclaredType != nil && ge.DeclaredType.Kind != schema.ByteArray {
			ty = *ge.DeclaredType
		} else {
			ty = inferType(ge.Expr, in)
		}
		fields[i] = schema.Field{Name: name, Type: ty}
	}
	return fields
}

func syntheticFieldName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if i < len(letters) {
		return string(letters[i])
	}
	return "col" + string(rune('0'+i%10))
}
