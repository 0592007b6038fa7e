package profiling

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dianpeng/piglet/markov"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCollectorFoldsTimeMessageIntoModel(t *testing.T) {
	assert := assert.New(t)
	model := markov.NewModel()
	c := NewCollector(model, 8, zerolog.Nop())
	go c.Run()
	defer c.Stop()

	srv := httptest.NewServer(c.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/times?data=" + "sig1;0;start,-1%23;2500")
	assert.NoError(err)
	assert.Equal(http.StatusOK, resp.StatusCode)

	assert.Eventually(func() bool {
		cost, ok := model.TotalCost("sig1", markov.StrategyAvg)
		return ok && cost == 2500
	}, time.Second, 5*time.Millisecond)
}

func TestCollectorRejectsMalformedBody(t *testing.T) {
	assert := assert.New(t)
	model := markov.NewModel()
	c := NewCollector(model, 8, zerolog.Nop())
	go c.Run()
	defer c.Stop()

	srv := httptest.NewServer(c.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/times?data=not%20json")
	assert.NoError(err)
	assert.Equal(http.StatusBadRequest, resp.StatusCode)
}
