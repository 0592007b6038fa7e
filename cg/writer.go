// Package cg is the code generator: one emitter per op.Tag, assembled
// into a single AWK-family program. The overall shape — a small
// indenting text buffer plus one function-per-construct emitter,
// concatenated into a skeleton string by a top-level Generate() — is carried
// over from the teacher's cg.go/gen_*.go split, retargeted from SQL
// phases (table scan/join/group/agg/sort/output) to dataflow operator
// variants.
package cg

import (
	"fmt"
	"strings"
)

// writer is a small indenting text buffer, plus a record of the
// whole-program global variable names emitters have claimed through
// Global (AWK has no block scope: every variable not passed as a
// function parameter is global). The globals are not declared anywhere
// in the emitted program; AWK creates them on first use.
type writer struct {
	buf         strings.Builder
	indent      int
	globals     []string
	globalIndex map[string]bool
}

func newWriter() *writer {
	return &writer{globalIndex: map[string]bool{}}
}

func (w *writer) Global(name string) string {
	if !w.globalIndex[name] {
		w.globalIndex[name] = true
		w.globals = append(w.globals, name)
	}
	return name
}

func (w *writer) Indent()   { w.indent++ }
func (w *writer) Unindent() { w.indent-- }

func (w *writer) Line(format string, args ...interface{}) {
	w.buf.WriteString(strings.Repeat("  ", w.indent))
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

func (w *writer) String() string { return w.buf.String() }

// varFor derives a stable AWK variable name from a lineage signature,
// since AWK identifiers can't contain the hex signature's leading
// digits safely in every position; prefixing with the operator tag
// keeps generated names readable during debugging.
func varFor(tag, lineageSig string) string {
	if len(lineageSig) > 8 {
		lineageSig = lineageSig[:8]
	}
	return fmt.Sprintf("%s_%s", strings.ToLower(tag), lineageSig)
}
