package markov

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalCostAveragesEdgeSamples(t *testing.T) {
	assert := assert.New(t)
	m := NewModel()
	m.Add(Start, "load1")
	m.UpdateCost(Start, "load1", 1.0)
	m.UpdateCost(Start, "load1", 3.0)

	cost, ok := m.TotalCost("load1", StrategyAvg)
	assert.True(ok)
	assert.InDelta(2.0, cost, 1e-9)
}

func TestTotalCostSumsMultiHopPath(t *testing.T) {
	assert := assert.New(t)
	m := NewModel()
	m.Add(Start, "load1")
	m.Add("load1", "filter1")
	m.UpdateCost(Start, "load1", 2.0)
	m.UpdateCost("load1", "filter1", 3.0)

	cost, ok := m.TotalCost("filter1", StrategyAvg)
	assert.True(ok)
	assert.InDelta(5.0, cost, 1e-9)
}

func TestTotalCostUnknownSignature(t *testing.T) {
	assert := assert.New(t)
	m := NewModel()
	_, ok := m.TotalCost("nope", StrategyAvg)
	assert.False(ok)
}

func TestPathProbabilityStartIsOne(t *testing.T) {
	assert := assert.New(t)
	m := NewModel()
	p, ok := m.PathProbability(Start, StrategyAvg)
	assert.True(ok)
	assert.Equal(1.0, p)
}

func TestSaveAndLoadRoundTrips(t *testing.T) {
	assert := assert.New(t)
	m := NewModel()
	m.Add(Start, "load1")
	m.UpdateCost(Start, "load1", 4.0)
	m.UpdateSize("load1", 1024)

	path := filepath.Join(t.TempDir(), "profiling.json")
	assert.NoError(m.Save(path))

	loaded, err := Load(path)
	assert.NoError(err)
	cost, ok := loaded.TotalCost("load1", StrategyAvg)
	assert.True(ok)
	assert.InDelta(4.0, cost, 1e-9)

	size, ok := loaded.SizeStat("load1")
	assert.True(ok)
	assert.InDelta(1024, size.Sum, 1e-9)

	assert.EqualValues(1, loaded.VisitCount("load1"))
	assert.EqualValues(1, loaded.TransitionCount(Start, "load1"))
}

func TestAddIncrementsEdgeCountAndDestinationVisitCount(t *testing.T) {
	assert := assert.New(t)
	m := NewModel()
	m.Add(Start, "load1")
	m.Add(Start, "load1")
	m.Add("load1", "filter1")

	assert.EqualValues(2, m.VisitCount("load1"))
	assert.EqualValues(1, m.VisitCount("filter1"))
	assert.EqualValues(0, m.VisitCount(Start))
	assert.EqualValues(2, m.TransitionCount(Start, "load1"))
	assert.EqualValues(1, m.TransitionCount("load1", "filter1"))
}

func TestTotalRunsIsStartVisitCount(t *testing.T) {
	assert := assert.New(t)
	m := NewModel()
	assert.EqualValues(0, m.TotalRuns())

	m.Add("sparkcontext", Start)
	m.Add("sparkcontext", Start)
	m.Add(Start, "load1")

	assert.EqualValues(2, m.TotalRuns())
}

func TestPathProbabilityIsVisitsOverTotalRuns(t *testing.T) {
	assert := assert.New(t)
	m := NewModel()
	m.Add("sparkcontext", Start)
	m.Add("sparkcontext", Start)
	m.Add("sparkcontext", Start)
	m.Add("sparkcontext", Start)
	m.Add(Start, "load1")
	m.Add(Start, "load1")

	p, ok := m.PathProbability("load1", StrategyAvg)
	assert.True(ok)
	assert.InDelta(0.5, p, 1e-9)

	_, ok = m.PathProbability("never-seen", StrategyAvg)
	assert.False(ok)
}

func TestLoadMissingFileReturnsEmptyModel(t *testing.T) {
	assert := assert.New(t)
	m, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.NoError(err)
	assert.False(m.HasNode("anything"))
}
