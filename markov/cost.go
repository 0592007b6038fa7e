package markov

// Strategy selects how TotalCost folds the costs of parallel paths
// (each the sum of its edges' average costs) into a single scalar
// (spec.md §4.4); PathProbability accepts a Strategy but ignores it.
type Strategy int

const (
	StrategyMin Strategy = iota
	StrategyMax
	StrategyAvg
	StrategyProduct
)

func fold(strategy Strategy, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	switch strategy {
	case StrategyMin:
		m := values[0]
		for _, v := range values[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case StrategyMax:
		m := values[0]
		for _, v := range values[1:] {
			if v > m {
				m = v
			}
		}
		return m
	case StrategyProduct:
		p := 1.0
		for _, v := range values {
			p *= v
		}
		return p
	default: // StrategyAvg
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	}
}

// TotalCost aggregates the average edge cost along every simple path
// from Start to sig using strategy, walking parent edges backward from
// sig to Start (spec.md §4.4). A sig with no recorded path returns
// (0, false).
func (m *Model) TotalCost(sig string, strategy Strategy) (float64, bool) {
	paths := m.pathsFromStart(sig)
	if len(paths) == 0 {
		return 0, false
	}
	var pathCosts []float64
	for _, path := range paths {
		var edgeCosts []float64
		for i := 0; i+1 < len(path); i++ {
			c, ok := m.EdgeCost(path[i], path[i+1])
			if !ok {
				continue
			}
			edgeCosts = append(edgeCosts, c.Avg())
		}
		if len(edgeCosts) == 0 {
			continue
		}
		pathCosts = append(pathCosts, sumFloats(edgeCosts))
	}
	if len(pathCosts) == 0 {
		return 0, false
	}
	return fold(strategy, pathCosts), true
}

// PathProbability estimates how likely sig is to execute at all, as
// the fraction of recorded runs that visited it: `pathVisits /
// totalRuns` (spec.md §3, §4.4). Start is definitionally reached by
// every run. strategy is accepted for API symmetry with TotalCost but
// unused: pathVisits/totalRuns needs no per-path folding.
func (m *Model) PathProbability(sig string, strategy Strategy) (float64, bool) {
	if sig == Start {
		return 1.0, true
	}
	total := m.TotalRuns()
	if total == 0 {
		return 0, false
	}
	visits := m.VisitCount(sig)
	if visits == 0 {
		return 0, false
	}
	return float64(visits) / float64(total), true
}

func sumFloats(vs []float64) float64 {
	total := 0.0
	for _, v := range vs {
		total += v
	}
	return total
}

func (m *Model) pathsFromStart(sig string) [][]string {
	if sig == Start {
		return [][]string{{Start}}
	}
	parents := m.Parents(sig)
	if len(parents) == 0 {
		return nil
	}
	var out [][]string
	for _, parent := range parents {
		for _, prefix := range m.pathsFromStart(parent) {
			out = append(out, append(append([]string(nil), prefix...), sig))
		}
	}
	return out
}
