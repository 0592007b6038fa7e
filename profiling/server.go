package profiling

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Collector receives profiling reports over HTTP and hands them to a
// single background worker goroutine that owns the markov.Model
// (spec.md §4.10). Handlers decode and enqueue only; they never touch
// the model directly, matching the fire-and-forget shape of the
// teacher's mini-spark master API handlers (decode, hand off, return).
type Collector struct {
	queue  chan interface{}
	worker *worker
	logger zerolog.Logger
}

// NewCollector creates a Collector with a bounded queue; queueSize
// bounds how many reports can be buffered before a producer blocks,
// which keeps a runaway backend job from growing memory unboundedly.
func NewCollector(model ModelSink, queueSize int, logger zerolog.Logger) *Collector {
	w := newWorker(model, queueSize, logger)
	return &Collector{queue: w.in, worker: w, logger: logger}
}

// Router registers /times and /sizes on a fresh gorilla/mux router.
// Both routes are GET-only, carrying their payload in the "data" query
// parameter per spec.md §6's "HTTP GET only" collector wire format.
func (c *Collector) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/times", c.handleTimes).Methods(http.MethodGet)
	r.HandleFunc("/sizes", c.handleSizes).Methods(http.MethodGet)
	return r
}

// requestID tags a single inbound report for correlating its log lines,
// the way mini-spark's master API stamps every submitted job with a
// fresh uuid on arrival.
func requestID() string { return uuid.New().String() }

// respondAccepted writes spec.md §6's success response: "200 with body
// ok" (fire-and-forget — the caller does not wait for the report to be
// processed, only for the collector to have queued it).
func respondAccepted(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// dataParam returns the "data" query parameter. It scans RawQuery itself
// because net/url drops any pair containing a raw ';', the payload's own
// field delimiter.
func dataParam(r *http.Request) string {
	for _, kv := range strings.Split(r.URL.RawQuery, "&") {
		if v, ok := strings.CutPrefix(kv, "data="); ok {
			s, err := url.QueryUnescape(v)
			if err != nil {
				return ""
			}
			return s
		}
	}
	return ""
}

func (c *Collector) handleTimes(w http.ResponseWriter, r *http.Request) {
	rid := requestID()
	msg, err := ParseTimeMessage(dataParam(r))
	if err != nil {
		c.logger.Warn().Str("request_id", rid).Err(err).Msg("profiling: malformed time report")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.logger.Debug().Str("request_id", rid).Str("lineage", msg.Lineage).Int("partition", msg.PartitionID).Msg("profiling: time report queued")
	c.queue <- msg
	respondAccepted(w)
}

func (c *Collector) handleSizes(w http.ResponseWriter, r *http.Request) {
	rid := requestID()
	msgs, err := ParseSizeMessages(dataParam(r))
	if err != nil {
		c.logger.Warn().Str("request_id", rid).Err(err).Msg("profiling: malformed size report")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, msg := range msgs {
		c.queue <- msg
	}
	c.logger.Debug().Str("request_id", rid).Int("count", len(msgs)).Msg("profiling: size reports queued")
	respondAccepted(w)
}

// Run starts the background worker goroutine; it blocks until the
// collector's queue channel is closed by Stop.
func (c *Collector) Run() { c.worker.run() }

// Stop closes the queue, letting the worker goroutine drain and exit.
func (c *Collector) Stop() { close(c.queue) }
