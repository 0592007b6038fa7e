// Command pigletc drives the compiler package end to end: it reads a
// pre-parsed operator list from stdin (JSON, standing in for the
// surface parser excluded from this module's scope, SPEC_FULL.md
// §4.12), runs the middle-end pipeline, and writes the emitted program
// to -outdir or stdout. It exists to exercise the whole pipeline for
// integration testing and manual use, in the shape of the teacher's
// own single-file main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/dianpeng/piglet/compiler"
	"github.com/dianpeng/piglet/notify"
	"github.com/dianpeng/piglet/op"
	"github.com/dianpeng/piglet/plan"
)

// paramList accumulates repeated -params k=v flags into an ordered
// slice; Compile itself has no use for them yet (spec.md's UDF
// parameter surface is out of this module's scope), but the CLI
// contract from spec.md §6 names the flag and pigletc must accept it.
type paramList []string

func (p *paramList) String() string { return strings.Join(*p, ",") }
func (p *paramList) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("-params expects key=value, got %q", v)
	}
	*p = append(*p, v)
	return nil
}

func main() {
	var (
		fBackend      = flag.String("backend", "", "target backend name (awk, goawk, flinks); defaults to config")
		fProfiling    = flag.String("profiling", "", "profiling collector base URL; enables TIMING instrumentation when set")
		fCompileOnly  = flag.Bool("compile-only", false, "emit code without contacting a profiling collector or webhook")
		fSequential   = flag.Bool("sequential", false, "disable any backend-side parallelism the emitted program would otherwise request")
		fShowPlan     = flag.Bool("show-plan", false, "print the operator plan (colorized) to stderr before compiling")
		fMuteConsumer = flag.Bool("mute-consumer", false, "suppress DUMP output in the emitted program")
		fOutDir       = flag.String("outdir", "", "directory to write the emitted program to; empty writes to stdout")
		fParams       paramList
	)
	flag.Var(&fParams, "params", "key=value parameter, may be repeated")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	cfg, err := compiler.LoadConfig()
	if err != nil {
		fail(logger, "config", err)
	}
	if *fBackend != "" {
		cfg.Backend = *fBackend
	}
	if *fProfiling != "" {
		cfg.ProfilingURL = *fProfiling
	}
	cfg.Sequential = *fSequential

	ctx, err := compiler.NewContext(cfg, logger)
	if err != nil {
		fail(logger, "init", err)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fail(logger, "read stdin", err)
	}

	ops, err := op.DecodePlan(data, func(sub []op.Operator) (op.NestedPlan, error) {
		return plan.New(sub)
	})
	if err != nil {
		fail(logger, "decode", err)
	}
	if *fMuteConsumer {
		ops = muteDumps(ops)
	}

	if *fShowPlan {
		printPlan(ops)
	}

	result, err := compiler.Compile(ctx, ops)
	if err != nil {
		fail(logger, "compile", err)
	}

	if err := writeOutput(*fOutDir, result.Code); err != nil {
		fail(logger, "write output", err)
	}

	if !*fCompileOnly && ctx.Config.WebhookURL != "" {
		wh := notify.New(ctx.Config.WebhookURL, logger)
		wh.Notify(context.Background(), notify.Summary{
			LineageDigest:    result.FinalLineageDigest,
			Materializations: result.Materializations,
			CacheHits:        result.CacheHits,
		})
	}

	os.Exit(0)
}

func fail(logger zerolog.Logger, stage string, err error) {
	logger.Error().Str("stage", stage).Err(err).Msg("pigletc failed")
	fmt.Fprintf(os.Stderr, "pigletc: %s: %v\n", stage, err)
	os.Exit(1)
}

func writeOutput(outDir, code string) error {
	if outDir == "" {
		fmt.Println(code)
		return nil
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, "program.awk"), []byte(code), 0644)
}

// muteDumps returns ops without its DUMP operators, so the code
// generator emits no print for them. A dedicated op.NewNullSink would
// be cleaner but is not worth a new operator variant for a debug-only
// CLI flag.
func muteDumps(ops []op.Operator) []op.Operator {
	out := make([]op.Operator, 0, len(ops))
	for _, o := range ops {
		if _, ok := o.(*op.Dump); !ok {
			out = append(out, o)
		}
	}
	return out
}

// printPlan renders a one-line-per-operator summary of the decoded plan
// to stderr, colorized by operator tag the way the teacher's
// cg/gen_format.go colorizes its own diagnostic output.
func printPlan(ops []op.Operator) {
	tag := color.New(color.FgCyan, color.Bold)
	pipe := color.New(color.FgYellow)
	for _, o := range ops {
		in := strings.Join(o.InPipeNames(), ",")
		fmt.Fprintf(os.Stderr, "  %s  in=%s out=%s\n",
			tag.Sprintf("%-14s", o.Tag()),
			pipe.Sprintf("%s", in),
			pipe.Sprintf("%s", o.OutPipeName()),
		)
	}
}
