// Command pigletprofd runs the standalone runtime profiling collector
// of spec.md §4.6: an HTTP server that emitted backend programs send
// timing and size reports to (as GET requests) over the run, folding them into a
// markov.Model that the next compilation's materialization manager
// consults. It is a separate long-lived process from cmd/pigletc, since
// the collector outlives any single compile and must keep listening
// across many runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/dianpeng/piglet/markov"
	"github.com/dianpeng/piglet/profiling"
)

// quiescence is the drain window spec.md §5 allows the queue before the
// collector is stopped, so in-flight messages from a job's final
// reports are not dropped by a Ctrl-C landing mid-run.
const quiescence = 3 * time.Second

func main() {
	fAddr := flag.String("addr", ":8099", "address to listen on")
	fModelPath := flag.String("model", "", "path to the persisted markov model; defaults to ~/.piglet/profiling.json")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	modelPath := *fModelPath
	if modelPath == "" {
		p, err := markov.DefaultPath()
		if err != nil {
			logger.Fatal().Err(err).Msg("resolve model path")
		}
		modelPath = p
	}

	model, err := markov.Load(modelPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", modelPath).Msg("load model")
	}

	collector := profiling.NewCollector(model, 256, logger)
	go collector.Run()

	srv := &http.Server{Addr: *fAddr, Handler: collector.Router()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		logger.Info().Str("addr", *fAddr).Str("model", modelPath).Msg("pigletprofd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("collector server exited")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down, draining queue")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), quiescence)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("collector server shutdown")
	}

	time.Sleep(quiescence)
	collector.Stop()

	if err := model.Save(modelPath); err != nil {
		logger.Error().Err(err).Str("path", modelPath).Msg("persist model")
		fmt.Fprintf(os.Stderr, "pigletprofd: persist model: %v\n", err)
		os.Exit(1)
	}
}
