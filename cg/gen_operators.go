package cg

import (
	"fmt"
	"strings"

	"github.com/dianpeng/piglet/markov"
	"github.com/dianpeng/piglet/op"
)

func (e *emitter) fieldIndexOf(o op.Operator) fieldIndex {
	bag := o.Schema()
	if bag == nil {
		return fieldIndex{}
	}
	return fieldIndexOf(bag.Elem)
}

// genLoad emits a function that opens File with getline and pushes one
// tuple array per line to every consumer. AWK has no first-class tuple
// type, so a "tuple" is an associative array indexed both by field name
// and by position, populated from the line split on the field
// separator (spec.md §4.2's declared schema drives field naming).
func (e *emitter) genLoad(l *op.Load) error {
	fn := e.funcName(l)
	e.w.Line("function %s(   line, fields, n, i, t) {", fn)
	e.w.Indent()
	e.w.Line(`while ((getline line < "%s") > 0) {`, l.File)
	e.w.Indent()
	e.w.Line(`n = split(line, fields, "\t");`)
	e.w.Line(`for (i = 1; i <= n; i++) { t[i-1] = fields[i]; }`)
	if l.DeclaredSchema != nil {
		for i, f := range l.DeclaredSchema.Elem.Fields {
			e.w.Line(`t["%s"] = t[%d];`, f.Name, i)
		}
	}
	e.emitToDownstream(l, "t")
	e.w.Line(`delete t;`)
	e.w.Unindent()
	e.w.Line("}")
	e.w.Line(`close("%s");`, l.File)
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

func (e *emitter) genFilter(f *op.Filter) error {
	fn := e.funcName(f)
	fi := e.fieldIndexOf(f)
	e.w.Line("function %s(t) {", fn)
	e.w.Indent()
	e.w.Line("if (%s) {", genExpr(f.Pred, "t", fi))
	e.w.Indent()
	e.emitToDownstream(f, "t")
	e.w.Unindent()
	e.w.Line("}")
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

func (e *emitter) genForeach(f *op.Foreach) error {
	fn := e.funcName(f)
	e.w.Line("function %s(t,   out) {", fn)
	e.w.Indent()
	if gl, ok := f.Gen.(*op.GeneratorList); ok {
		fi := e.fieldIndexOf(f)
		for i, ge := range gl.Exprs {
			name := ge.Alias
			if name == "" {
				name = fmt.Sprintf("%d", i)
			}
			e.w.Line(`out[%d] = %s; out["%s"] = out[%d];`, i, genExpr(ge.Expr, "t", fi), name, i)
		}
	}
	e.emitToDownstream(f, "out")
	e.w.Line("delete out;")
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

func (e *emitter) genGenerate(g *op.Generate) error {
	fn := e.funcName(g)
	fi := e.fieldIndexOf(g)
	e.w.Line("function %s(t,   out) {", fn)
	e.w.Indent()
	for i, ge := range g.Exprs {
		name := ge.Alias
		if name == "" {
			name = fmt.Sprintf("%d", i)
		}
		e.w.Line(`out[%d] = %s; out["%s"] = out[%d];`, i, genExpr(ge.Expr, "t", fi), name, i)
	}
	e.emitToDownstream(g, "out")
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

func (e *emitter) genConstructBag(c *op.ConstructBag) error {
	fn := e.funcName(c)
	fi := fieldIndexOf(nil)
	if c.ParentSchema != nil {
		fi = fieldIndexOf(c.ParentSchema.Elem)
	}
	e.w.Line("function %s(outer_t,   out) {", fn)
	e.w.Indent()
	for i, ge := range c.Elems {
		e.w.Line(`out[%d] = %s;`, i, genExpr(ge.Expr, "outer_t", fi))
	}
	e.emitToDownstream(c, "out")
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

// genGrouping accumulates every input tuple into a bag keyed by group
// key, joining the flattened member tuples with SUBSEP into a single
// bucket value per key — the same "join buffered rows with SUBSEP"
// idiom genJoin uses for its per-relation tables, generalized from N
// joined rows under one probe key to N grouped rows under one group
// key.
func (e *emitter) genGrouping(g *op.Grouping) error {
	fn := e.funcName(g)
	fi := e.fieldIndexOf(g)
	bucket := e.w.Global(fmt.Sprintf("grp_%d", g.ID()))
	bagField := g.InPipeNames()[0]

	e.w.Line("function %s(t,   key) {", fn)
	e.w.Indent()
	if g.IsGroupAll() {
		e.w.Line(`key = "%s";`, op.GroupAllKey)
	} else {
		parts := make([]string, len(g.Keys))
		for i, k := range g.Keys {
			parts[i] = genExpr(k, "t", fi)
		}
		e.w.Line(`key = %s;`, joinAwkConcat(parts))
	}
	e.w.Line(`%s[key] = (key in %s) ? %s[key] SUBSEP flatten_tuple(t) : flatten_tuple(t);`, bucket, bucket, bucket)
	e.w.Unindent()
	e.w.Line("}")

	e.w.Line("function %s_flush(   key, out) {", fn)
	e.w.Indent()
	e.w.Line(`for (key in %s) {`, bucket)
	e.w.Indent()
	e.w.Line(`clear_array(out);`)
	e.w.Line(`out[0] = key; out["group"] = key;`)
	e.w.Line(`out[1] = %s[key]; out["%s"] = out[1];`, bucket, bagField)
	e.emitToDownstream(g, "out")
	e.w.Unindent()
	e.w.Line("}")
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

// genJoin performs a hash join: the first N-1 relations are buffered
// into per-relation tables keyed by their join expression, and probing
// happens as the last relation's rows stream through, emitting one
// downstream tuple per combination that has a match on every side. This
// is the classic AWK "build a table keyed by join column, then probe"
// pattern the teacher's gen_join.go used for SQL's two-relation joins,
// generalized to N relations with the last one streamed rather than
// buffered — every relation but the last must be fully loaded before
// the probing side starts arriving.
func (e *emitter) genJoin(j *op.Join) error {
	fn := e.funcName(j)
	n := len(j.Keys)
	tbl := make([]string, n)
	for i := range j.Keys {
		tbl[i] = e.w.Global(fmt.Sprintf("jointbl_%d_%d", j.ID(), i))
	}

	fi := fieldIndexOf(nil) // relations arrive pre-concatenation; keys were validated against each side's own schema at construction time
	for i := 0; i < n; i++ {
		e.w.Line("function %s_side%d(t,   key) {", fn, i)
		e.w.Indent()
		parts := make([]string, len(j.Keys[i]))
		for ki, k := range j.Keys[i] {
			parts[ki] = genExpr(k, "t", fi)
		}
		e.w.Line(`key = %s;`, joinAwkConcat(parts))
		if i < n-1 {
			e.w.Line(`%s[key] = (key in %s) ? %s[key] SUBSEP flatten_tuple(t) : flatten_tuple(t);`, tbl[i], tbl[i], tbl[i])
		} else {
			// probing side: emit the cross product of every prior relation's
			// rows matching this key, concatenated with t.
			e.w.Line(`%s_probe(key, t);`, fn)
		}
		e.w.Unindent()
		e.w.Line("}")
	}

	e.w.Line("function %s_probe(key, t,   i, row, out) {", fn)
	e.w.Indent()
	for i := 0; i < n-1; i++ {
		e.w.Line(`if (!(key in %s)) { return; }`, tbl[i])
	}
	e.w.Line(`row[0] = flatten_tuple(t);`)
	for i := 0; i < n-1; i++ {
		e.w.Line(`row[%d] = %s[key];`, i+1, tbl[i])
	}
	e.w.Line(`out[0] = row[0];`)
	for i := 1; i < n; i++ {
		e.w.Line(`out[%d] = row[%d];`, i, i)
	}
	e.emitToDownstream(j, "out")
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

func (e *emitter) genDistinct(d *op.Distinct) error {
	fn := e.funcName(d)
	seen := e.w.Global(fmt.Sprintf("distinct_seen_%d", d.ID()))
	e.w.Line("function %s(t,   key) {", fn)
	e.w.Indent()
	e.w.Line(`key = flatten_tuple(t);`)
	e.w.Line(`if (!(key in %s)) {`, seen)
	e.w.Indent()
	e.w.Line(`%s[key] = 1;`, seen)
	e.emitToDownstream(d, "t")
	e.w.Unindent()
	e.w.Line("}")
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

func (e *emitter) genLimit(l *op.Limit) error {
	fn := e.funcName(l)
	counter := e.w.Global(fmt.Sprintf("limit_n_%d", l.ID()))
	e.w.Line("function %s(t) {", fn)
	e.w.Indent()
	e.w.Line(`if (%s >= %d) { return; }`, counter, l.N)
	e.w.Line(`%s++;`, counter)
	e.emitToDownstream(l, "t")
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

func (e *emitter) genUnion(u *op.Union) error {
	fn := e.funcName(u)
	e.w.Line("function %s(t) {", fn)
	e.w.Indent()
	e.emitToDownstream(u, "t")
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

// genOrderBy buffers every tuple keyed by orderHelper's composite sort
// key (built on builtin.go's order_key so AWK's inherent string/number
// duality doesn't scramble numeric orderings), then flushes in sorted
// order via asorti over the collected keys. Each key is suffixed with an
// arrival sequence number so tuples with equal sort keys are all kept,
// in arrival order.
func (e *emitter) genOrderBy(o *op.OrderBy) error {
	fn := e.funcName(o)
	fi := e.fieldIndexOf(o)
	buf := e.w.Global(fmt.Sprintf("order_buf_%d", o.ID()))
	seq := e.w.Global(fmt.Sprintf("order_seq_%d", o.ID()))
	e.w.Line("function %s(t,   key) {", fn)
	e.w.Indent()
	e.w.Line(`key = %s;`, orderHelper(o.Keys, fi))
	e.w.Line(`%s[key SUBSEP sprintf("%%012d", ++%s)] = flatten_tuple(t);`, buf, seq)
	e.w.Unindent()
	e.w.Line("}")

	e.w.Line("function %s_flush(   sorted, n, i, fields, m, j, out) {", fn)
	e.w.Indent()
	e.w.Line(`n = asorti(%s, sorted);`, buf)
	e.w.Line(`for (i = 1; i <= n; i++) {`)
	e.w.Indent()
	e.w.Line(`clear_array(out);`)
	e.w.Line(`m = split(%s[sorted[i]], fields, SUBSEP);`, buf)
	e.w.Line(`for (j = 1; j <= m; j++) { out[j-1] = fields[j]; }`)
	if s := o.Schema(); s != nil && s.Elem != nil {
		for i, f := range s.Elem.Fields {
			e.w.Line(`out["%s"] = out[%d];`, f.Name, i)
		}
	}
	e.emitToDownstream(o, "out")
	e.w.Unindent()
	e.w.Line("}")
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

// orderHelper renders a single composite sort key from OrderBy's keys,
// descending keys negated via order_key's numeric convention.
func orderHelper(keys []op.SortKey, fi fieldIndex) string {
	if len(keys) == 0 {
		return `""`
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		expr := fmt.Sprintf("order_key(%s)", genExpr(k.Expr, "t", fi))
		if k.Desc {
			expr = fmt.Sprintf(`sprintf("%%s", -1 * (%s))`, expr)
		}
		parts[i] = expr
	}
	return joinAwkConcat(parts)
}

// topHelper renders a top_n call that keeps only the first n entries of
// a buffered, sorted array. No emitter or rewrite rule calls it.
func topHelper(bufVar string, n int64) string {
	return fmt.Sprintf(`top_n(%s, %d);`, bufVar, n)
}

func (e *emitter) genStore(s *op.Store) error {
	fn := e.funcName(s)
	e.w.Line("function %s(t) {", fn)
	e.w.Indent()
	e.w.Line(`print flatten_tuple_tsv(t) > "%s";`, s.File)
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

func (e *emitter) genDump(d *op.Dump) error {
	fn := e.funcName(d)
	e.w.Line("function %s(t) {", fn)
	e.w.Indent()
	e.w.Line(`print flatten_tuple_tsv(t);`)
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

// genCache emits a load from the materialization store's on-disk
// representation, mirroring genLoad but reading back a previously
// Store-d cache file addressed by lineage signature instead of a
// user-declared source (spec.md §4.4/§4.9).
func (e *emitter) genCache(c *op.Cache) error {
	fn := e.funcName(c)
	e.w.Line("function %s(   line, fields, n, i, t) {", fn)
	e.w.Indent()
	e.w.Line(`while ((getline line < "cache/%s") > 0) {`, c.LineageSig)
	e.w.Indent()
	e.w.Line(`n = split(line, fields, "\t");`)
	e.w.Line(`for (i = 1; i <= n; i++) { t[i-1] = fields[i]; }`)
	e.emitToDownstream(c, "t")
	e.w.Unindent()
	e.w.Line("}")
	e.w.Line(`close("cache/%s");`, c.LineageSig)
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

func (e *emitter) genTimingOp(t *op.TimingOp) error {
	fn := e.funcName(t)
	e.w.Line("function %s(tuple) {", fn)
	e.w.Indent()
	e.w.Line(`report_time("%s", "%s");`, t.WrappedLineageSig, timingParents(t.ParentLineageSigs))
	e.emitToDownstream(t, "tuple")
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

// timingParents renders a TimingOp's upstream lineage signatures into
// the collector's "lineage,partitionId#lineage,partitionId…" wire
// format (spec.md §4.6). The AWK backend runs as a single process with
// no real partitioning, so every real operator reports as partition 0;
// an empty parent list means the wrapped operator is a Load, fed by the
// synthetic Start node instead, which — like SparkContext — always
// reports under partition -1.
func timingParents(sigs []string) string {
	if len(sigs) == 0 {
		return fmt.Sprintf("%s,-1", markov.Start)
	}
	parts := make([]string, len(sigs))
	for i, sig := range sigs {
		pid := 0
		if sig == markov.Start || sig == markov.SparkContext {
			pid = -1
		}
		parts[i] = fmt.Sprintf("%s,%d", sig, pid)
	}
	return strings.Join(parts, "#")
}

// genMatcher lowers the NFA into a flat "from:predicate_result:to" edge
// table consumed by builtin.go's nfa_step, rebuilt once per input tuple
// by evaluating every transition's predicate, so the first transition
// out of the current state whose predicate holds is the one that fires.
func (e *emitter) genMatcher(m *op.Matcher) error {
	fn := e.funcName(m)
	fi := e.fieldIndexOf(m)
	stateVar := e.w.Global(fmt.Sprintf("matcher_state_%d", m.ID()))
	bufVar := e.w.Global(fmt.Sprintf("matcher_buf_%d", m.ID()))
	countVar := e.w.Global(fmt.Sprintf("matcher_n_%d", m.ID()))

	e.w.Line("function %s(t,   i, nxt, edges, out) {", fn)
	e.w.Indent()
	e.w.Line(`if (%s == "") { %s = "%s"; }`, stateVar, stateVar, m.Start)
	for i, tr := range m.Transitions {
		e.w.Line(`edges[%d] = "%s:" ((%s) ? 1 : 0) ":%s";`, i+1, tr.From, genExpr(tr.Predicate, "t", fi), tr.To)
	}
	e.w.Line(`nxt = nfa_step(edges, %d, %s, 1);`, len(m.Transitions), stateVar)
	e.w.Line(`if (nxt != "") { %s = nxt; %s[++%s] = flatten_tuple(t); }`, stateVar, bufVar, countVar)
	for _, accept := range m.Accept {
		e.w.Line(`if (%s == "%s") {`, stateVar, accept)
		e.w.Indent()
		e.w.Line(`out[0] = %s; out["match_id"] = out[0];`, countVar)
		e.w.Line(`out[1] = %s[1]; for (i = 2; i <= %s; i++) { out[1] = out[1] SUBSEP %s[i]; }`, bufVar, countVar, bufVar)
		e.w.Line(`out["events"] = out[1];`)
		e.emitToDownstream(m, "out")
		e.w.Line(`delete %s; %s = ""; %s = 0;`, bufVar, stateVar, countVar)
		e.w.Unindent()
		e.w.Line("}")
	}
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

func (e *emitter) genWindow(w *op.Window) error {
	// Non-flinks backends leave Window as a schema pass-through; the
	// rewrite engine lowers it into Grouping for flinks before emission
	// ever sees it (spec.md §4.3, DESIGN.md "Open Questions resolved").
	fn := e.funcName(w)
	e.w.Line("function %s(t) {", fn)
	e.w.Indent()
	e.w.Line("# WINDOW(%s) is a no-op on this backend", w.LineageParams())
	e.emitToDownstream(w, "t")
	e.w.Unindent()
	e.w.Line("}")
	return nil
}

func joinAwkConcat(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ` SUBSEP `
		}
		out += p
	}
	return out
}
