package profiling

import "github.com/dianpeng/piglet/markov"

// Bootstrap seeds a fresh model with a "start" edge into each of the
// given first-executing operators (spec.md §4.10), so
// TotalCost/PathProbability queries have a start-reachable graph to
// walk even before any real profiling data has arrived. It adds no
// edges into "end"; BootstrapEnd records those, one sink at a time.
func Bootstrap(m *markov.Model, firstLineageSignatures []string) {
	for _, sig := range firstLineageSignatures {
		m.Add(markov.Start, sig)
	}
}

// BootstrapEnd records that sig is a terminal sink whose completion
// should be folded into the synthetic "end" node, so path enumeration
// from Start can terminate cleanly at plan sinks.
func BootstrapEnd(m *markov.Model, sig string) {
	m.Add(sig, markov.End)
}
