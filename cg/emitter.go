package cg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/perr"
	"github.com/dianpeng/piglet/plan"
)

// AWK dialect selection, carried over from the teacher's cg.Config.
const (
	AwkGnuAwk = iota
	AwkGoAwk
	AwkAwk
	AwkNAwk
	AwkMAwk
	AwkFrawk
)

type Config struct {
	OutputSeparator string
	AwkType         int

	// ProfilingURL, when non-empty, is the base URL of a running
	// profiling.Collector; the emitted program's TimingOp probes post
	// samples there via report_time (spec.md §4.10).
	ProfilingURL string
}

// Generate lowers p into a single AWK-family program (spec.md §4.7).
// Every operator gets one generated function, in dependency order, so
// downstream operators can call upstream ones as plain AWK function
// calls; Load functions are driven from the BEGIN block's getline loop.
func Generate(p *plan.DataflowPlan, config *Config) (string, error) {
	e := &emitter{plan: p, config: config, w: newWriter(), banners: map[string]bool{}}
	if err := e.gen(); err != nil {
		return "", err
	}
	return e.assemble(), nil
}

type emitter struct {
	plan    *plan.DataflowPlan
	config  *Config
	w       *writer
	banners map[string]bool
	order   []op.NodeID
}

func (e *emitter) gen() error {
	order, err := e.plan.TopoOrder()
	if err != nil {
		return err
	}
	e.order = order
	for _, id := range order {
		o := e.plan.Get(id)
		if o == nil {
			continue
		}
		e.emitSchemaBanner(o)
		if err := e.emitOperator(o); err != nil {
			return err
		}
	}
	return nil
}

// needsFlush reports whether o buffers its whole input before it can
// produce output, so its generated <fn>_flush function must be invoked
// once every Load has finished feeding the program (spec.md §4.7 has no
// END block of its own; the emitted program's only driver loop lives in
// each Load function, so flushing has to be sequenced explicitly here).
func needsFlush(o op.Operator) bool {
	switch o.(type) {
	case *op.Grouping, *op.OrderBy:
		return true
	default:
		return false
	}
}

func (e *emitter) emitSchemaBanner(o op.Operator) {
	bag := o.Schema()
	if bag == nil || bag.Elem == nil {
		return
	}
	name := schemaClassName(bag.Elem)
	if e.banners[name] {
		return
	}
	e.banners[name] = true
	e.w.Line("%s", schemaBanner(name, bag.Elem))
}

func (e *emitter) emitOperator(o op.Operator) error {
	switch v := o.(type) {
	case *op.Load:
		return e.genLoad(v)
	case *op.Filter:
		return e.genFilter(v)
	case *op.Foreach:
		return e.genForeach(v)
	case *op.Generate:
		return e.genGenerate(v)
	case *op.ConstructBag:
		return e.genConstructBag(v)
	case *op.Grouping:
		return e.genGrouping(v)
	case *op.Join:
		return e.genJoin(v)
	case *op.Distinct:
		return e.genDistinct(v)
	case *op.Limit:
		return e.genLimit(v)
	case *op.Union:
		return e.genUnion(v)
	case *op.OrderBy:
		return e.genOrderBy(v)
	case *op.Store:
		return e.genStore(v)
	case *op.Dump:
		return e.genDump(v)
	case *op.MaterializeHint:
		// The materialization manager does not remove MATERIALIZE hints,
		// so one is emitted as a pass-through to its consumers.
		e.w.Line("function %s(t) {", e.funcName(v))
		e.w.Indent()
		e.emitToDownstream(v, "t")
		e.w.Unindent()
		e.w.Line("}")
		return nil
	case *op.Cache:
		return e.genCache(v)
	case *op.TimingOp:
		return e.genTimingOp(v)
	case *op.Matcher:
		return e.genMatcher(v)
	case *op.Window:
		return e.genWindow(v)
	default:
		return perr.New("cg", perr.BackendError, "no emitter registered for operator %s", o.Tag())
	}
}

func (e *emitter) funcName(o op.Operator) string {
	return fmt.Sprintf("op_%s_%d", strings.ToLower(o.Tag().String()), o.ID())
}

func (e *emitter) consumeCall(o op.Operator, tupleVar string) string {
	return fmt.Sprintf("%s(%s)", e.funcName(o), tupleVar)
}

// downstream returns every operator consuming o's output pipe.
func (e *emitter) downstream(o op.Operator) []op.Operator {
	out := o.OutPipeName()
	if out == "" {
		return nil
	}
	pp := e.plan.Pipes[out]
	if pp == nil {
		return nil
	}
	ops := make([]op.Operator, 0, len(pp.Consumers))
	for _, id := range pp.Consumers {
		if c := e.plan.Get(id); c != nil {
			ops = append(ops, c)
		}
	}
	return ops
}

// emitToDownstream generates one call per consumer of o passing tupleVar
// through, the shared tail every non-sink operator's function body ends
// with.
func (e *emitter) emitToDownstream(o op.Operator, tupleVar string) {
	for _, d := range e.downstream(o) {
		e.w.Line("%s;", e.consumeCall(d, tupleVar))
	}
}

func (e *emitter) assemble() string {
	var b strings.Builder
	if e.config.AwkType == AwkGoAwk {
		b.WriteString(builtinAWK)
		b.WriteString(builtinGoAWK)
	} else {
		b.WriteString(builtinAWK)
	}
	b.WriteString("\n")
	b.WriteString(e.w.String())
	b.WriteString("\nBEGIN {\n")
	fmt.Fprintf(&b, "  PIGLET_START_TIME = systime();\n")
	if e.config.ProfilingURL != "" {
		fmt.Fprintf(&b, "  PIGLET_PROFILING_URL = %q;\n", e.config.ProfilingURL)
		b.WriteString("  report_bootstrap();\n")
	}
	for _, id := range e.plan.SourceNodes() {
		switch o := e.plan.Get(id).(type) {
		case *op.Load:
			fmt.Fprintf(&b, "  %s();\n", e.funcName(o))
		case *op.Cache:
			fmt.Fprintf(&b, "  %s();\n", e.funcName(o))
		}
	}
	for _, id := range e.order {
		o := e.plan.Get(id)
		if o == nil || !needsFlush(o) {
			continue
		}
		fmt.Fprintf(&b, "  %s_flush();\n", e.funcName(o))
	}
	b.WriteString("}\n")
	return b.String()
}

// sortedKeys returns a sorted copy of keys, for deterministic iteration
// order; no emitter in this package calls it.
func sortedKeys(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	return out
}
