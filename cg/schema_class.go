package cg

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dianpeng/piglet/schema"
)

// schemaClassName derives a short, stable identifier for a tuple shape
// so two operators with structurally identical output schemas share
// one comment banner in the emitted program, instead of every operator
// re-declaring its own.
func schemaClassName(t *schema.TupleType) string {
	if t == nil {
		return "anon"
	}
	sum := md5.Sum([]byte(t.String()))
	return "schema_" + hex.EncodeToString(sum[:])[:10]
}

// fieldIndexOf builds the tupleVar-relative index table genExpr needs
// from a tuple's field order.
func fieldIndexOf(t *schema.TupleType) fieldIndex {
	fi := fieldIndex{}
	if t == nil {
		return fi
	}
	for i, f := range t.Fields {
		fi[f.Name] = i
	}
	return fi
}

// schemaBanner renders a comment documenting a schema class's field
// layout, emitted once per distinct schema the plan produces.
func schemaBanner(name string, t *schema.TupleType) string {
	if t == nil {
		return fmt.Sprintf("# %s: <unknown schema>", name)
	}
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = fmt.Sprintf("%d:%s(%s)", i, f.Name, f.Type.String())
	}
	return fmt.Sprintf("# %s: %s", name, strings.Join(parts, ", "))
}
