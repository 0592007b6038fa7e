package compiler

import (
	"fmt"

	"github.com/dianpeng/piglet/cg"
	"github.com/dianpeng/piglet/markov"
	"github.com/dianpeng/piglet/materialize"
	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/plan"
	"github.com/dianpeng/piglet/rewrite"
)

// Result carries the emitted program plus the plan-surgery counters a
// caller (such as cmd/pigletc's webhook summary) wants to report
// alongside it.
type Result struct {
	Code               string
	CacheHits          int
	Materializations   int
	RewritesApplied    int
	FinalLineageDigest string
}

// Compile runs the full middle-end pipeline of spec.md §2 over an
// already-decoded operator list: link into a DataflowPlan, apply the
// rewrite rule set for ctx.Config.Backend to a fixpoint, load already
// cached sub-plans, decide and insert new materializations, then emit.
func Compile(ctx *Context, ops []op.Operator) (*Result, error) {
	p, err := plan.New(ops)
	if err != nil {
		return nil, fmt.Errorf("compiler: build plan: %w", err)
	}

	rewrites, err := applyRewrites(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("compiler: rewrite: %w", err)
	}

	mgr := materialize.NewManager(ctx.Catalogue, ctx.Model, ctx.Backend, markov.StrategyAvg, materialize.Thresholds{
		MinCost:              ctx.Config.MinCost,
		MinBenefit:           ctx.Config.MinBenefit,
		ProbThreshold:        ctx.Config.ProbThreshold,
		WriteThroughputMiBps: ctx.Config.WriteThroughputMiBps,
		ReadThroughputMiBps:  ctx.Config.ReadThroughputMiBps,
	})
	mgr.Logger = ctx.Logger

	cacheHits, err := mgr.LoadCached(p)
	if err != nil {
		return nil, fmt.Errorf("compiler: load cached materializations: %w", err)
	}

	inserted, err := mgr.InsertNew(p)
	if err != nil {
		return nil, fmt.Errorf("compiler: insert materializations: %w", err)
	}

	code, err := cg.Generate(p, &cg.Config{
		OutputSeparator: "\t",
		AwkType:         awkTypeFor(ctx.Config.Backend),
		ProfilingURL:    ctx.Config.ProfilingURL,
	})
	if err != nil {
		return nil, fmt.Errorf("compiler: emit: %w", err)
	}

	digest := ""
	if sinks := p.SinkNodes(); len(sinks) > 0 {
		if sig, err := p.LineageSignature(sinks[len(sinks)-1]); err == nil {
			digest = sig
		}
	}

	ctx.Logger.Info().
		Int("cache_hits", cacheHits).
		Int("materializations", inserted).
		Int("rewrites", rewrites).
		Str("backend", ctx.Config.Backend).
		Msg("compile finished")

	return &Result{
		Code:               code,
		CacheHits:          cacheHits,
		Materializations:   inserted,
		RewritesApplied:    rewrites,
		FinalLineageDigest: digest,
	}, nil
}

// applyRewrites runs every rule registered for ctx.Config.Backend to a
// fixpoint over every operator, plus the profiling timing-probe
// insertion when ctx.Config.ProfilingURL is set (spec.md §4.10).
func applyRewrites(ctx *Context, p *plan.DataflowPlan) (int, error) {
	rules := ctx.Registry.RulesFor(ctx.Config.Backend)
	if ctx.Config.ProfilingURL != "" {
		rules = append(rules, rewrite.InstrumentTiming(p))
	}
	if len(rules) == 0 {
		return 0, nil
	}
	rule := rewrite.Fixpoint(rewrite.Sequence(rules...))

	total := 0
	for {
		changedAny := false
		for _, o := range p.Ops {
			if o == nil {
				continue
			}
			changed, err := rule(rewrite.Node{Plan: p, ID: o.ID()})
			if err != nil {
				return total, err
			}
			if changed {
				changedAny = true
				total++
			}
		}
		if !changedAny {
			break
		}
	}
	return total, nil
}

func awkTypeFor(backend string) int {
	if backend == "goawk" {
		return cg.AwkGoAwk
	}
	return cg.AwkGnuAwk
}
