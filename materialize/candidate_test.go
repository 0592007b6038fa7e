package materialize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dianpeng/piglet/markov"
)

func TestThresholdsAcceptsRejectsBelowProbThreshold(t *testing.T) {
	assert := assert.New(t)
	th := Thresholds{ProbThreshold: 0.9, MinBenefit: 1}

	assert.False(th.Accepts(Candidate{Probability: 0.5, Benefit: 10}))
	assert.False(th.Accepts(Candidate{Probability: 1.0, Benefit: 0.5}))
	assert.True(th.Accepts(Candidate{Probability: 1.0, Benefit: 5}))
}

func TestThresholdsAcceptsRejectsNonPositiveBenefit(t *testing.T) {
	assert := assert.New(t)
	th := Thresholds{}
	assert.False(th.Accepts(Candidate{Probability: 1.0, Benefit: 0}))
	assert.False(th.Accepts(Candidate{Probability: 1.0, Benefit: -1}))
}

func TestEvaluateCandidateDiscountsBenefitByWriteThroughput(t *testing.T) {
	assert := assert.New(t)
	m := markov.NewModel()
	m.Add(markov.Start, "sig")
	m.UpdateCost(markov.Start, "sig", 10.0)
	m.UpdateSize("sig", 10*bytesPerMiB)

	c, ok := EvaluateCandidate(m, "sig", markov.StrategyAvg, Thresholds{WriteThroughputMiBps: 5})
	assert.True(ok)
	assert.InDelta(10.0, c.Cost, 1e-9)
	assert.InDelta(8.0, c.Benefit, 1e-9) // 10s cost - (10MiB / 5MiB/s) = 8s
}

func TestEvaluateCandidateWithoutThroughputFallsBackToRawCost(t *testing.T) {
	assert := assert.New(t)
	m := markov.NewModel()
	m.Add(markov.Start, "sig")
	m.UpdateCost(markov.Start, "sig", 10.0)
	m.UpdateSize("sig", 999)

	c, ok := EvaluateCandidate(m, "sig", markov.StrategyAvg, Thresholds{})
	assert.True(ok)
	assert.InDelta(10.0, c.Benefit, 1e-9)
}

func TestEvaluateCandidateUnknownSignature(t *testing.T) {
	assert := assert.New(t)
	m := markov.NewModel()
	_, ok := EvaluateCandidate(m, "nope", markov.StrategyAvg, Thresholds{})
	assert.False(ok)
}
