package materialize

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/dianpeng/piglet/markov"
	"github.com/dianpeng/piglet/materialize/store"
	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/perr"
	"github.com/dianpeng/piglet/plan"
)

// GlobalStrategy picks which markov.Strategy the manager uses to fold
// per-edge cost/probability samples when ranking candidates across the
// whole plan in one pass (spec.md §4.4).
type GlobalStrategy = markov.Strategy

// Manager runs the two-pass plan surgery described in spec.md §4.4:
// LoadCached rewrites already-materialized sub-plans into Cache loads
// (bottom-up), and InsertNew decides which additional sub-plan roots
// are worth materializing and inserts Store+Cache pairs for them
// (top-down, ranked by benefit).
type Manager struct {
	Catalogue  *Catalogue
	Model      *markov.Model
	Backend    store.Backend
	Strategy   GlobalStrategy
	Thresholds Thresholds
	Logger     zerolog.Logger
}

func NewManager(cat *Catalogue, model *markov.Model, backend store.Backend, strategy GlobalStrategy, thresholds Thresholds) *Manager {
	return &Manager{Catalogue: cat, Model: model, Backend: backend, Strategy: strategy, Thresholds: thresholds, Logger: zerolog.Nop()}
}

// LoadCached walks the operators in arena order (declaration order,
// sources first) and, for every operator whose lineage signature
// already has a catalogue entry, validates the artifact is actually
// readable (spec.md §7's CacheMiss/CacheCorrupt) and, if so, replaces
// it and everything upstream of it with a single Cache load. Once an
// operator is replaced, the signatures of everything downstream of it
// change, so along one chain the hit nearest the sources is the one
// used; hits further downstream are not. A catalogue entry whose backing artifact can't be read is left
// alone entirely: the subplan recomputes as if it had never been
// materialized (spec.md §7's degrade-gracefully contract; only
// InvalidPlan/SchemaError are fatal, see perr.Kind.Fatal).
func (m *Manager) LoadCached(p *plan.DataflowPlan) (rewrites int, err error) {
	replaced := map[op.NodeID]bool{}
	for _, o := range p.Ops {
		if o == nil || replaced[o.ID()] {
			continue
		}
		sig, err := p.LineageSignature(o.ID())
		if err != nil {
			return rewrites, err
		}
		entry, ok := m.Catalogue.Lookup(sig)
		if !ok {
			continue
		}
		if !m.validateCached(entry) {
			continue
		}

		inPipes := append([]string(nil), o.InPipeNames()...)
		cache := op.NewCache("", sig)
		cache.SetSchema(o.Schema())
		if err := p.Replace(o.ID(), cache); err != nil {
			return rewrites, err
		}
		cache.SetInPipeNames(nil)
		if err := p.Rebuild(); err != nil {
			return rewrites, err
		}
		if err := m.detachCone(p, inPipes); err != nil {
			return rewrites, err
		}
		replaced[o.ID()] = true
		rewrites++
	}
	return rewrites, nil
}

// validateCached confirms entry's backing artifact is actually present
// and non-empty before trusting the catalogue's word for it (spec.md
// §7). A nil Backend (as in tests that never insert a materialization
// through InsertNew's own storage write path) always misses.
func (m *Manager) validateCached(entry CatalogueEntry) bool {
	if m.Backend == nil {
		m.Logger.Warn().Str("lineage_signature", entry.LineageSignature).
			Msg(perr.CacheMiss.String() + ": no storage backend configured")
		return false
	}
	data, err := m.Backend.Get(context.Background(), entry.URI)
	if err != nil {
		m.Logger.Warn().Err(err).Str("uri", entry.URI).
			Msg(perr.CacheMiss.String() + ", recomputing")
		return false
	}
	if len(data) == 0 {
		m.Logger.Warn().Str("uri", entry.URI).
			Msg(perr.CacheCorrupt.String() + ": empty artifact, recomputing")
		return false
	}
	return true
}

// detachCone removes whichever operator used to feed each pipe in
// inPipes, transitively, as long as nothing else still consumes that
// pipe (spec.md §4.4(a)'s cache-hit cone detach, spec.md §4.1's
// remove(op, removePredecessors=true)): once the cached node's own
// input has been cleared, an upstream chain that fed only it has
// nothing left to feed and must not be emitted.
func (m *Manager) detachCone(p *plan.DataflowPlan, inPipes []string) error {
	for _, in := range inPipes {
		pp := p.Pipes[in]
		if pp == nil || pp.Producer == op.NoNode || len(pp.Consumers) > 0 {
			continue
		}
		if err := p.Remove(pp.Producer, true); err != nil {
			return err
		}
		if err := p.Rebuild(); err != nil {
			return err
		}
	}
	return nil
}

// InsertNew ranks every remaining non-sink, non-source operator by
// materialization benefit, keeps the ones clearing m.Thresholds, and
// inserts a Store+Cache pair immediately downstream of each (spec.md
// §4.4). Candidates are stable-sorted by lineage signature before
// ranking so ties resolve deterministically (DESIGN.md "Open Questions
// resolved").
func (m *Manager) InsertNew(p *plan.DataflowPlan) (inserted int, err error) {
	type scored struct {
		id  op.NodeID
		sig string
		c   Candidate
	}
	var candidates []scored
	for _, o := range p.Ops {
		if o == nil || o.OutPipeName() == "" || len(o.InPipeNames()) == 0 {
			continue
		}
		sig, err := p.LineageSignature(o.ID())
		if err != nil {
			return inserted, err
		}
		if _, ok := m.Catalogue.Lookup(sig); ok {
			continue // already materialized, LoadCached already handled it
		}
		c, ok := EvaluateCandidate(m.Model, sig, m.Strategy, m.Thresholds)
		if !ok || !m.Thresholds.Accepts(c) {
			continue
		}
		candidates = append(candidates, scored{id: o.ID(), sig: sig, c: c})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].sig < candidates[j].sig })
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].c.Benefit > candidates[j].c.Benefit })

	for _, cand := range candidates {
		if err := m.insertMaterialization(p, cand.id, cand.sig); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// insertMaterialization taps id's output pipe with a new Store sink
// (which writes it to the relative path cache/<sig>, the file genCache
// reads back) and
// redirects every existing consumer of that pipe onto a new Cache node
// standing in for "read this back from the materialization store"
// (spec.md §4.4). Store keeps reading the original pipe directly, so
// both the persisted copy and the live downstream consumers see the
// same tuples in the same run.
func (m *Manager) insertMaterialization(p *plan.DataflowPlan, id op.NodeID, sig string) error {
	o := p.Get(id)
	if o == nil {
		return perr.New("materialize", perr.InvalidPlan, "insertMaterialization: unknown node %d", id)
	}
	originalPipe := o.OutPipeName()
	if originalPipe == "" {
		return perr.New("materialize", perr.InvalidPlan, "insertMaterialization: node %d has no output pipe", id)
	}

	storeOp := op.NewStore(originalPipe, "cache/"+sig, "PigStorage")
	if _, err := p.AddOperator(storeOp); err != nil {
		return err
	}

	cachePipe := originalPipe + "$cache"
	cache := op.NewCache(cachePipe, sig)
	cache.SetSchema(o.Schema())
	if _, err := p.AddOperator(cache); err != nil {
		return err
	}

	if err := p.RedirectPipe(originalPipe, cachePipe, storeOp.ID()); err != nil {
		return err
	}

	entry := CatalogueEntry{LineageSignature: sig, URI: "pending:" + sig}
	return m.Catalogue.Put(entry)
}
