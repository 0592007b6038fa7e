package profiling

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/dianpeng/piglet/markov"
)

func TestCollectorAcceptsScenarioSixTimesRequest(t *testing.T) {
	assert := assert.New(t)
	sink := newRecordingSink()
	c := NewCollector(sink, 8, zerolog.Nop())
	go c.Run()
	defer c.Stop()

	srv := httptest.NewServer(c.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/times?data=" + "L;0;start,-1%23;1000")
	assert.NoError(err)
	defer resp.Body.Close()
	assert.Equal(http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal("ok", string(body))

	assert.Eventually(func() bool {
		return sink.costs[[2]string{markov.Start, "L"}] == 1000.0
	}, time.Second, time.Millisecond)
}

func TestCollectorRejectsPostOnTimesRoute(t *testing.T) {
	assert := assert.New(t)
	c := NewCollector(newRecordingSink(), 1, zerolog.Nop())
	srv := httptest.NewServer(c.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/times", "application/json", nil)
	assert.NoError(err)
	defer resp.Body.Close()
	assert.NotEqual(http.StatusOK, resp.StatusCode)
}

func TestCollectorRejectsMalformedTimesPayload(t *testing.T) {
	assert := assert.New(t)
	c := NewCollector(newRecordingSink(), 1, zerolog.Nop())
	srv := httptest.NewServer(c.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/times?data=garbage")
	assert.NoError(err)
	defer resp.Body.Close()
	assert.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestCollectorAcceptsSizesRequest(t *testing.T) {
	assert := assert.New(t)
	sink := newRecordingSink()
	c := NewCollector(sink, 8, zerolog.Nop())
	go c.Run()
	defer c.Stop()

	srv := httptest.NewServer(c.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/sizes?data=a:100;b:200")
	assert.NoError(err)
	defer resp.Body.Close()
	assert.Equal(http.StatusOK, resp.StatusCode)

	assert.Eventually(func() bool {
		return sink.sizes["a"] == 100 && sink.sizes["b"] == 200
	}, time.Second, time.Millisecond)
}
