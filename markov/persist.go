package markov

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/dianpeng/piglet/fsutil"
	"github.com/dianpeng/piglet/perr"
)

// snapshot is the on-disk JSON shape written to ~/.piglet/profiling.json
// (spec.md §4.10). It flattens the internal map-of-maps edge structure
// into a slice so it round-trips through encoding/json without custom
// marshalers.
type snapshot struct {
	Nodes map[string]nodeSnapshot `json:"nodes"`
	Edges []edgeSnapshot          `json:"edges"`
}

type nodeSnapshot struct {
	SizeSum   float64 `json:"size_sum"`
	SizeCount int64   `json:"size_count"`
	SizeMin   float64 `json:"size_min"`
	SizeMax   float64 `json:"size_max"`
	Seen      int64   `json:"seen"`
	Visits    int64   `json:"visits"`
}

type edgeSnapshot struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	CostSum     float64 `json:"cost_sum"`
	CostCount   int64   `json:"cost_count"`
	CostMin     float64 `json:"cost_min"`
	CostMax     float64 `json:"cost_max"`
	Transitions int64   `json:"transitions"`
}

// DefaultPath returns ~/.piglet/profiling.json, the path spec.md §4.10
// names as the collector's persistence target.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", perr.New("profiling", perr.ProfilingError, "resolve home directory: %v", err)
	}
	return filepath.Join(home, ".piglet", "profiling.json"), nil
}

// Save atomically writes the model to path (spec.md §4.5's
// temp-and-rename requirement, shared via fsutil).
func (m *Model) Save(path string) error {
	snap := snapshot{Nodes: map[string]nodeSnapshot{}}
	for sig, n := range m.nodes {
		snap.Nodes[sig] = nodeSnapshot{
			SizeSum: n.Size.Sum, SizeCount: n.Size.Count,
			SizeMin: n.Size.Min, SizeMax: n.Size.Max, Seen: n.Seen,
			Visits: n.Visits,
		}
	}
	for from, row := range m.edges {
		for to, e := range row {
			snap.Edges = append(snap.Edges, edgeSnapshot{
				From: from, To: to,
				CostSum: e.Cost.Sum, CostCount: e.Cost.Count,
				CostMin: e.Cost.Min, CostMax: e.Cost.Max,
				Transitions: e.Transitions,
			})
		}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return perr.New("profiling", perr.ProfilingError, "marshal model: %v", err)
	}
	if err := fsutil.AtomicWriteFile(path, data, 0o644); err != nil {
		return perr.New("profiling", perr.ProfilingError, "persist model to %s: %v", path, err)
	}
	return nil
}

// Load reads a previously-saved model from path. A missing file is not
// an error: a fresh Model with no history is returned, since a
// first-ever run has nothing to load (spec.md §4.4).
func Load(path string) (*Model, error) {
	if !fsutil.Exists(path) {
		return NewModel(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.New("profiling", perr.ProfilingError, "read model from %s: %v", path, err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, perr.New("profiling", perr.CacheCorrupt, "decode model from %s: %v", path, err)
	}
	m := NewModel()
	for sig, ns := range snap.Nodes {
		m.nodes[sig] = &nodeState{
			Size:   Stat{Sum: ns.SizeSum, Count: ns.SizeCount, Min: ns.SizeMin, Max: ns.SizeMax},
			Seen:   ns.Seen,
			Visits: ns.Visits,
		}
	}
	for _, es := range snap.Edges {
		e := m.ensureEdge(es.From, es.To)
		e.Cost = Stat{Sum: es.CostSum, Count: es.CostCount, Min: es.CostMin, Max: es.CostMax}
		e.Transitions = es.Transitions
	}
	return m, nil
}
