package profiling

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/dianpeng/piglet/markov"
)

type recordingSink struct {
	added   [][2]string
	costs   map[[2]string]float64
	sizes   map[string]float64
}

func newRecordingSink() *recordingSink {
	return &recordingSink{costs: map[[2]string]float64{}, sizes: map[string]float64{}}
}

func (s *recordingSink) Add(from, to string) { s.added = append(s.added, [2]string{from, to}) }
func (s *recordingSink) UpdateCost(from, to string, seconds float64) {
	s.costs[[2]string{from, to}] = seconds
}
func (s *recordingSink) UpdateSize(sig string, bytes float64) { s.sizes[sig] = bytes }

func TestCollectTimeScenarioSixDefaultsStartToZero(t *testing.T) {
	assert := assert.New(t)
	sink := newRecordingSink()
	w := newWorker(sink, 1, zerolog.Nop())

	msg, err := ParseTimeMessage("L;0;start,-1#;1000")
	assert.NoError(err)
	w.collectTime(msg)

	assert.Contains(sink.added, [2]string{markov.Start, "L"})
	assert.InDelta(1000.0, sink.costs[[2]string{markov.Start, "L"}], 1e-9)
}

func TestCollectTimeUsesLatestParent(t *testing.T) {
	assert := assert.New(t)
	sink := newRecordingSink()
	w := newWorker(sink, 4, zerolog.Nop())

	a, err := ParseTimeMessage("a;0;start,-1#;100")
	assert.NoError(err)
	w.collectTime(a)

	b, err := ParseTimeMessage("b;0;start,-1#;300")
	assert.NoError(err)
	w.collectTime(b)

	join, err := ParseTimeMessage("j;0;a,0#b,0;500")
	assert.NoError(err)
	w.collectTime(join)

	assert.Contains(sink.added, [2]string{"b", "j"})
	assert.NotContains(sink.added, [2]string{"a", "j"})
	assert.InDelta(200.0, sink.costs[[2]string{"b", "j"}], 1e-9) // 500 - max(100,300)
}

func TestCollectTimeDuplicatePartitionIsDiscardedWithWarning(t *testing.T) {
	assert := assert.New(t)
	sink := newRecordingSink()
	w := newWorker(sink, 4, zerolog.Nop())

	first, err := ParseTimeMessage("L;0;start,-1#;1000")
	assert.NoError(err)
	w.collectTime(first)

	dup, err := ParseTimeMessage("L;0;start,-1#;9999")
	assert.NoError(err)
	w.collectTime(dup)

	assert.InDelta(1000.0, sink.costs[[2]string{markov.Start, "L"}], 1e-9)
}

func TestCollectTimeDistinguishesPartitions(t *testing.T) {
	assert := assert.New(t)
	sink := newRecordingSink()
	w := newWorker(sink, 4, zerolog.Nop())

	p0, err := ParseTimeMessage("L;0;start,-1#;1000")
	assert.NoError(err)
	w.collectTime(p0)

	p1, err := ParseTimeMessage("L;1;start,-1#;2000")
	assert.NoError(err)
	w.collectTime(p1)

	assert.Equal(int64(1000), w.currentTimes[partitionKey{"L", 0}])
	assert.Equal(int64(2000), w.currentTimes[partitionKey{"L", 1}])
}

func TestCollectTimeBootstrapsStartFromSparkContext(t *testing.T) {
	assert := assert.New(t)
	sink := newRecordingSink()
	w := newWorker(sink, 4, zerolog.Nop())

	boot, err := ParseTimeMessage("start;-1;sparkcontext,-1;500")
	assert.NoError(err)
	w.collectTime(boot)

	assert.Contains(sink.added, [2]string{markov.SparkContext, markov.Start})
	assert.InDelta(500.0, sink.costs[[2]string{markov.SparkContext, markov.Start}], 1e-9)

	first, err := ParseTimeMessage("L;0;start,-1#;900")
	assert.NoError(err)
	w.collectTime(first)

	assert.Contains(sink.added, [2]string{markov.Start, "L"})
	assert.InDelta(400.0, sink.costs[[2]string{markov.Start, "L"}], 1e-9)
}

func TestCollectSizeMessageUpdatesModel(t *testing.T) {
	assert := assert.New(t)
	sink := newRecordingSink()
	w := newWorker(sink, 1, zerolog.Nop())

	w.collect(SizeMessage{Lineage: "L", Bytes: 4096})
	assert.InDelta(4096.0, sink.sizes["L"], 1e-9)
}
