package profiling

import (
	"github.com/rs/zerolog"

	"github.com/dianpeng/piglet/markov"
)

// ModelSink is the narrow surface the worker needs from markov.Model;
// kept as an interface, rather than a *markov.Model field, so tests can
// substitute a recording fake instead of a full model.
type ModelSink interface {
	Add(from, to string)
	UpdateCost(from, to string, seconds float64)
	UpdateSize(sig string, bytes float64)
}

// partitionKey is the granularity spec.md §4.6 requires currentTimes to
// be keyed at: a lineage signature is not enough on its own, since a
// single operator runs once per partition and each partition finishes
// independently.
type partitionKey struct {
	Lineage     string
	PartitionID int
}

// worker is the single goroutine that owns all writes to the Markov
// model; every HTTP handler only ever sends to in, never touches model
// directly, so collect() needs no locking (spec.md §4.10).
type worker struct {
	in     chan interface{}
	model  ModelSink
	logger zerolog.Logger

	// currentTimes tracks the most recently reported completion time
	// per (lineage, partitionId), spec.md §4.6's "currentTimes[(lineage,
	// partition)] = time" — the raw material collectTime folds into a
	// per-edge cost sample once a downstream operator reports in.
	currentTimes map[partitionKey]int64
}

func newWorker(model ModelSink, queueSize int, logger zerolog.Logger) *worker {
	return &worker{
		in:           make(chan interface{}, queueSize),
		model:        model,
		logger:       logger,
		currentTimes: map[partitionKey]int64{},
	}
}

func (w *worker) run() {
	for msg := range w.in {
		w.collect(msg)
	}
}

func (w *worker) collect(msg interface{}) {
	switch m := msg.(type) {
	case TimeMessage:
		w.collectTime(m)
	case SizeMessage:
		w.model.UpdateSize(m.Lineage, m.Bytes)
	}
}

// collectTime folds a time report into currentTimes and, if at least
// one of its reported parents has already reported in, into the
// Markov edge from whichever parent finished last (spec.md §4.6's
// "latest parent wins" barrier semantics: the operator could not start
// until every parent had produced, so the slowest parent is the one
// whose completion gates this one's start). A duplicate report for a
// (lineage, partitionId) pair already recorded is logged and discarded
// per the "first-write-wins with warning" policy (spec.md §5).
func (w *worker) collectTime(m TimeMessage) {
	key := partitionKey{Lineage: m.Lineage, PartitionID: m.PartitionID}
	if _, seen := w.currentTimes[key]; seen {
		w.logger.Warn().
			Str("lineage", m.Lineage).
			Int("partition", m.PartitionID).
			Msg("profiling: duplicate time report discarded")
		return
	}

	parent, parentTime, haveParent := w.latestParent(m.Parents)
	if haveParent {
		elapsed := float64(m.TimeMillis - parentTime)
		w.model.Add(parent, m.Lineage)
		w.model.UpdateCost(parent, m.Lineage, elapsed)
	}

	w.currentTimes[key] = m.TimeMillis
}

// latestParent picks the parent in parents whose recorded completion
// time is largest, per spec.md §4.6's "time − max(parentTimes)". The
// synthetic Start and SparkContext nodes are always considered to have
// completed at time 0 even without an explicit prior report, since
// they denote the beginning of the run and its fixed startup overhead
// respectively — neither ever reports in on its own.
func (w *worker) latestParent(parents []ParentRef) (lineage string, timeMillis int64, ok bool) {
	for _, p := range parents {
		t, found := w.currentTimes[partitionKey{Lineage: p.Lineage, PartitionID: p.PartitionID}]
		if !found {
			if !isSyntheticRoot(p.Lineage) {
				continue
			}
			t = 0
		}
		if !ok || t > timeMillis {
			lineage, timeMillis, ok = p.Lineage, t, true
		}
	}
	return lineage, timeMillis, ok
}

func isSyntheticRoot(lineage string) bool {
	return lineage == markov.Start || lineage == markov.SparkContext
}
