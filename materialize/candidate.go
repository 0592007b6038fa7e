package materialize

import "github.com/dianpeng/piglet/markov"

// Candidate is a sub-plan root under consideration for materialization:
// its lineage signature, the model's cost/probability/size estimate for
// it, and the benefit score used to rank candidates (spec.md §4.4).
type Candidate struct {
	LineageSignature string
	Cost             float64
	Probability      float64
	SizeBytes        float64
	Benefit          float64
}

// Thresholds gates which candidates are worth materializing at all
// (spec.md §4.4): a candidate must clear MinCost (not worth caching
// something already free), clear ProbThreshold (not worth caching
// something that rarely re-executes), and clear MinBenefit once the
// storage write-back cost is discounted. WriteThroughputMiBps and
// ReadThroughputMiBps are the configured backing-store throughput
// constants, in MiB/s, the benefit formula amortizes against.
type Thresholds struct {
	MinCost              float64
	MinBenefit           float64
	ProbThreshold        float64
	WriteThroughputMiBps float64
	ReadThroughputMiBps  float64
}

const bytesPerMiB = 1 << 20

// benefit implements spec.md §4.4's formula: the wall-clock cost this
// sub-plan would otherwise re-pay on re-execution, minus the time
// spent writing its output to the materialization store at the
// configured write throughput. A non-positive or unconfigured
// throughput means "cannot amortize a write cost", so benefit reduces
// to raw cost.
func benefit(cost, bytes, writeThroughputMiBps float64) float64 {
	if writeThroughputMiBps <= 0 {
		return cost
	}
	writeSeconds := bytes / (writeThroughputMiBps * bytesPerMiB)
	return cost - writeSeconds
}

// EvaluateCandidate scores sig against m using strategy, returning
// ok=false when the model has no history for sig at all.
func EvaluateCandidate(m *markov.Model, sig string, strategy markov.Strategy, t Thresholds) (Candidate, bool) {
	cost, ok := m.TotalCost(sig, strategy)
	if !ok {
		return Candidate{}, false
	}
	prob, ok := m.PathProbability(sig, strategy)
	if !ok {
		prob = 1.0
	}
	sizeStat, _ := m.SizeStat(sig)
	// outputRecords * outputBytesPerRecord collapses to the model's
	// directly-observed average output size: it already tracks total
	// bytes per run rather than per-record size and record count
	// separately (DESIGN.md).
	bytes := sizeStat.Avg()

	return Candidate{
		LineageSignature: sig,
		Cost:             cost,
		Probability:      prob,
		SizeBytes:        bytes,
		Benefit:          benefit(cost, bytes, t.WriteThroughputMiBps),
	}, true
}

// Accepts reports whether c clears t: enough cost to be worth caching
// at all, a high enough re-execution probability, and a benefit that
// is both positive and above the configured minimum (spec.md §4.4,
// scenario 5).
func (t Thresholds) Accepts(c Candidate) bool {
	return c.Cost >= t.MinCost &&
		c.Probability >= t.ProbThreshold &&
		c.Benefit > 0 &&
		c.Benefit >= t.MinBenefit
}
