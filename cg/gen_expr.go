package cg

import (
	"fmt"
	"strings"

	"github.com/dianpeng/piglet/expr"
)

// fieldIndex resolves a schema field name to its position within a
// tuple's serialized AWK array, since op.CheckSchemaConformance has
// already guaranteed named references resolve.
type fieldIndex map[string]int

// genExpr renders e as an AWK expression reading the current tuple out
// of the array named tupleVar (e.g. "t"), keyed by field name/index.
func genExpr(e expr.Expr, tupleVar string, fi fieldIndex) string {
	switch n := e.(type) {
	case *expr.Const:
		return genConst(n)
	case *expr.FieldRef:
		return genFieldRef(n, tupleVar, fi)
	case *expr.DerefTuple:
		return genFieldRef(&n.Field, "outer_"+tupleVar, fi)
	case *expr.Unary:
		operand := genExpr(n.Operand, tupleVar, fi)
		if n.Op == expr.OpNot {
			return fmt.Sprintf("(!(%s))", operand)
		}
		return fmt.Sprintf("(-(%s))", operand)
	case *expr.Binary:
		l := genExpr(n.L, tupleVar, fi)
		r := genExpr(n.R, tupleVar, fi)
		return fmt.Sprintf("(%s %s %s)", l, awkBinaryOp(n.Op), r)
	case *expr.Ternary:
		c := genExpr(n.Cond, tupleVar, fi)
		b0 := genExpr(n.B0, tupleVar, fi)
		b1 := genExpr(n.B1, tupleVar, fi)
		return fmt.Sprintf("(%s ? %s : %s)", c, b0, b1)
	case *expr.FuncCall:
		return genFuncCall(n, tupleVar, fi)
	default:
		return `""`
	}
}

func genConst(c *expr.Const) string {
	switch c.Kind {
	case expr.ConstBool:
		if c.Bool {
			return "1"
		}
		return "0"
	case expr.ConstInt, expr.ConstLong:
		return fmt.Sprintf("%d", c.Int)
	case expr.ConstFloat, expr.ConstDouble:
		return fmt.Sprintf("%g", c.Real)
	case expr.ConstStr:
		return fmt.Sprintf("%q", c.Str)
	default:
		return `""`
	}
}

func genFieldRef(f *expr.FieldRef, tupleVar string, fi fieldIndex) string {
	if f.Name != "" {
		if idx, ok := fi[f.Name]; ok {
			return fmt.Sprintf(`%s[%d]`, tupleVar, idx)
		}
		return fmt.Sprintf(`%s["%s"]`, tupleVar, f.Name)
	}
	return fmt.Sprintf(`%s[%d]`, tupleVar, f.Index)
}

func awkBinaryOp(op expr.BinaryOp) string {
	switch op {
	case expr.OpAnd:
		return "&&"
	case expr.OpOr:
		return "||"
	default:
		return op.String()
	}
}

func genFuncCall(f *expr.FuncCall, tupleVar string, fi fieldIndex) string {
	args := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		args[i] = genExpr(p, tupleVar, fi)
	}
	name := strings.ToLower(f.Name)
	switch name {
	case "count":
		return "1"
	case "sum", "min", "max", "avg":
		if len(args) == 0 {
			return "0"
		}
		return args[0]
	case "is_null", "isnull":
		return fmt.Sprintf("is_null(%s)", strings.Join(args, ", "))
	case "is_number":
		return fmt.Sprintf("is_number(%s)", strings.Join(args, ", "))
	case "is_integer":
		return fmt.Sprintf("is_integer(%s)", strings.Join(args, ", "))
	case "is_decimal":
		return fmt.Sprintf("is_decimal(%s)", strings.Join(args, ", "))
	case "is_string":
		return fmt.Sprintf("is_string(%s)", strings.Join(args, ", "))
	case "cast":
		return fmt.Sprintf("cast(%s)", strings.Join(args, ", "))
	case "array_join":
		return fmt.Sprintf("array_join(%s)", strings.Join(args, ", "))
	case "kv_make":
		return fmt.Sprintf("kv_make(%s)", strings.Join(args, ", "))
	case "kv_getv":
		return fmt.Sprintf("kv_getv(%s)", strings.Join(args, ", "))
	case "percentile":
		return fmt.Sprintf("agg_percentile(%s)", strings.Join(args, ", "))
	case "histogram":
		return fmt.Sprintf("agg_histogram(%s)", strings.Join(args, ", "))
	default:
		return fmt.Sprintf("%s(%s)", f.Name, strings.Join(args, ", "))
	}
}
