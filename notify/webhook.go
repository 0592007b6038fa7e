// Package notify implements the optional end-of-run notification
// webhook mentioned in spec.md §5: a best-effort POST that never blocks
// a compile past its timeout and never fails a compile on its own
// account (spec.md §7's graceful-degradation policy).
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

// Summary is the JSON body posted at the end of a compile run.
type Summary struct {
	LineageDigest    string `json:"lineage_digest"`
	Materializations int    `json:"materializations"`
	CacheHits        int    `json:"cache_hits"`
	RuntimeSeconds   float64 `json:"runtime_seconds"`
}

// Webhook posts Summary values to a fixed URL with a hard timeout,
// logging and swallowing any failure rather than propagating it.
type Webhook struct {
	URL     string
	Client  *http.Client
	Logger  zerolog.Logger
}

func New(url string, logger zerolog.Logger) *Webhook {
	return &Webhook{URL: url, Client: &http.Client{Timeout: defaultTimeout}, Logger: logger}
}

// Notify sends s to w.URL, bounded by a 10-second context deadline
// (spec.md §5). A nil w or empty URL makes this a no-op, since the
// webhook is optional.
func (w *Webhook) Notify(ctx context.Context, s Summary) {
	if w == nil || w.URL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	body, err := json.Marshal(s)
	if err != nil {
		w.Logger.Error().Err(err).Msg("notify: encode summary")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		w.Logger.Error().Err(err).Msg("notify: build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		w.Logger.Warn().Err(err).Str("url", w.URL).Msg("notify: webhook unreachable, continuing")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		w.Logger.Warn().Int("status", resp.StatusCode).Str("url", w.URL).Msg("notify: webhook rejected summary, continuing")
	}
}
