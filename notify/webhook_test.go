package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNotifyPostsSummaryJSON(t *testing.T) {
	assert := assert.New(t)

	var got Summary
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(http.MethodPost, r.Method)
		assert.Equal("application/json", r.Header.Get("Content-Type"))
		assert.NoError(json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := New(srv.URL, zerolog.Nop())
	wh.Notify(context.Background(), Summary{LineageDigest: "abc123", Materializations: 2, CacheHits: 1})

	assert.Equal("abc123", got.LineageDigest)
	assert.Equal(2, got.Materializations)
	assert.Equal(1, got.CacheHits)
}

func TestNotifyIsNoOpWithEmptyURL(t *testing.T) {
	wh := New("", zerolog.Nop())
	wh.Notify(context.Background(), Summary{LineageDigest: "x"})
}

func TestNotifyIsNoOpOnNilReceiver(t *testing.T) {
	var wh *Webhook
	wh.Notify(context.Background(), Summary{LineageDigest: "x"})
}

func TestNotifySwallowsUnreachableServer(t *testing.T) {
	wh := New("http://127.0.0.1:0/nowhere", zerolog.Nop())
	wh.Notify(context.Background(), Summary{LineageDigest: "x"})
}

func TestNotifyLogsNonSuccessStatusButDoesNotPanic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wh := New(srv.URL, zerolog.Nop())
	wh.Notify(context.Background(), Summary{LineageDigest: "x"})
}
