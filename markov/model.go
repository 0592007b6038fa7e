// Package markov implements the profile-driven cost model of spec.md
// §4.4: a node/edge-weighted multigraph over lineage signatures, with
// synthetic "start" and "end" endpoints, that the materialization
// manager queries for expected cost and execution probability along a
// candidate sub-plan's path.
//
// No example in the retrieved corpus implements anything like this
// (see DESIGN.md); the running-statistic shape of Stat is grounded on
// the teacher's plan/agg.go aggregation state, generalized to the
// spec's {sum,count,min,max} summary.
package markov

const (
	Start = "start"
	End   = "end"

	// SparkContext is the synthetic node upstream of Start representing
	// the runtime's fixed per-run startup overhead (spec.md §4.6's
	// "sparkcontext→start" bootstrap edge). Its own visit count is never
	// queried; the edge exists only so Start accumulates one visit per
	// run, making TotalRuns meaningful.
	SparkContext = "sparkcontext"
)

// Stat is a running {sum,count,min,max} summary, updated online as
// profiling samples arrive (spec.md §4.4).
type Stat struct {
	Sum   float64
	Count int64
	Min   float64
	Max   float64
}

func (s *Stat) Update(v float64) {
	if s.Count == 0 {
		s.Min, s.Max = v, v
	} else {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Sum += v
	s.Count++
}

func (s *Stat) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// nodeState holds the sampled size (bytes) of the tuple stream flowing
// through a lineage signature, how many size samples have been folded
// in (Seen), and how many times it has been recorded as the
// destination of a transition (Visits, spec.md §4.5's node visit
// count, used to derive execution probability per spec.md §3/§4.4).
type nodeState struct {
	Size   Stat
	Seen   int64
	Visits int64
}

// edgeState is the directed edge from one lineage signature to another
// (or Start/End): Cost is wall-clock time observed for producing To
// given From has already run, Transitions is the raw count of times
// this edge was traversed (spec.md §4.5).
type edgeState struct {
	Cost        Stat
	Transitions int64
}

// Model is the full Markov cost graph. It is not safe for concurrent
// use without external locking; the profiling collector serializes all
// writes through its single worker goroutine (spec.md §4.10) and reads
// happen only during compilation, which never overlaps a live collector
// in the same process.
type Model struct {
	nodes map[string]*nodeState
	edges map[string]map[string]*edgeState // from -> to -> edge
}

func NewModel() *Model {
	return &Model{
		nodes: map[string]*nodeState{},
		edges: map[string]map[string]*edgeState{},
	}
}

func (m *Model) ensureNode(sig string) *nodeState {
	n := m.nodes[sig]
	if n == nil {
		n = &nodeState{}
		m.nodes[sig] = n
	}
	return n
}

func (m *Model) ensureEdge(from, to string) *edgeState {
	row := m.edges[from]
	if row == nil {
		row = map[string]*edgeState{}
		m.edges[from] = row
	}
	e := row[to]
	if e == nil {
		e = &edgeState{}
		row[to] = e
	}
	return e
}

// Add records that `from` was observed immediately preceding `to` in an
// execution (bootstrap edges use Start as `from` and End as `to` per
// spec.md §4.10 bootstrap-edge convention). Per spec.md §4.5 this
// increments the edge's transition count and `to`'s visit count; the
// `sparkcontext→start` bootstrap edge is what makes Start's own visit
// count double as spec.md §3's totalRuns.
func (m *Model) Add(from, to string) {
	m.ensureNode(from)
	toNode := m.ensureNode(to)
	toNode.Visits++
	m.ensureEdge(from, to).Transitions++
}

// UpdateCost folds a new wall-clock sample into the from->to edge.
func (m *Model) UpdateCost(from, to string, seconds float64) {
	m.ensureEdge(from, to).Cost.Update(seconds)
}

// UpdateSize folds a new observed byte size into sig's node stat.
func (m *Model) UpdateSize(sig string, bytes float64) {
	n := m.ensureNode(sig)
	n.Size.Update(bytes)
	n.Seen++
}

// Parents returns every lineage signature with a recorded edge into
// sig, in no particular order.
func (m *Model) Parents(sig string) []string {
	var out []string
	for from, row := range m.edges {
		if _, ok := row[sig]; ok {
			out = append(out, from)
		}
	}
	return out
}

// SizeStat returns sig's running size summary and whether it has ever
// been observed.
func (m *Model) SizeStat(sig string) (Stat, bool) {
	n, ok := m.nodes[sig]
	if !ok {
		return Stat{}, false
	}
	return n.Size, true
}

// EdgeCost returns the from->to edge's running cost summary.
func (m *Model) EdgeCost(from, to string) (Stat, bool) {
	row, ok := m.edges[from]
	if !ok {
		return Stat{}, false
	}
	e, ok := row[to]
	if !ok {
		return Stat{}, false
	}
	return e.Cost, true
}

// HasNode reports whether sig has ever been recorded.
func (m *Model) HasNode(sig string) bool {
	_, ok := m.nodes[sig]
	return ok
}

// VisitCount returns how many times sig has been recorded as the
// destination of a transition (spec.md §4.5).
func (m *Model) VisitCount(sig string) int64 {
	n, ok := m.nodes[sig]
	if !ok {
		return 0
	}
	return n.Visits
}

// TotalRuns returns the number of times Start has been visited, per
// spec.md §3's invariant `totalRuns = visitCount(start)`.
func (m *Model) TotalRuns() int64 { return m.VisitCount(Start) }

// TransitionCount returns how many times the from->to edge has been
// traversed (spec.md §4.5, and §3's invariant that a node's outgoing
// transition counts sum to its visit count).
func (m *Model) TransitionCount(from, to string) int64 {
	row, ok := m.edges[from]
	if !ok {
		return 0
	}
	e, ok := row[to]
	if !ok {
		return 0
	}
	return e.Transitions
}
