// Package compiler threads configuration, logging, and the durable
// planning state (Markov model, cache catalogue, storage backend)
// through the compile pipeline, replacing the teacher's package-level
// globals with an explicit context struct per spec.md §9's "no global
// mutable state" design note.
package compiler

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/dianpeng/piglet/markov"
	"github.com/dianpeng/piglet/materialize"
	"github.com/dianpeng/piglet/materialize/store"
	"github.com/dianpeng/piglet/rewrite"
)

// Config is the compiler's tunable surface, loaded via viper layering
// (flags > env > file > defaults, SPEC_FULL.md §2) from
// ~/.piglet/config.json.
type Config struct {
	Backend               string  `mapstructure:"backend"`
	MatBaseDir            string  `mapstructure:"mat_base_dir"`
	CataloguePath         string  `mapstructure:"catalogue_path"`
	ModelPath             string  `mapstructure:"model_path"`
	ProfilingURL          string  `mapstructure:"profiling_url"`
	WebhookURL            string  `mapstructure:"webhook_url"`
	MinCost               float64 `mapstructure:"min_cost"`
	MinBenefit            float64 `mapstructure:"min_benefit"`
	ProbThreshold         float64 `mapstructure:"prob_threshold"`
	WriteThroughputMiBps  float64 `mapstructure:"write_throughput_mibps"`
	ReadThroughputMiBps   float64 `mapstructure:"read_throughput_mibps"`
	Sequential            bool    `mapstructure:"sequential"`
}

// LoadConfig layers ~/.piglet/config.json, PIGLET_-prefixed environment
// variables, and hard defaults into a Config (SPEC_FULL.md §2). Flag
// overrides are applied by the caller (cmd/pigletc) after LoadConfig
// returns, since viper's flag binding needs the flag.FlagSet in scope.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetDefault("backend", "awk")
	v.SetDefault("min_cost", 0.0)
	v.SetDefault("min_benefit", 0.0)
	v.SetDefault("prob_threshold", 0.0)
	v.SetDefault("write_throughput_mibps", 50.0)
	v.SetDefault("read_throughput_mibps", 100.0)

	home, err := os.UserHomeDir()
	if err == nil {
		v.SetConfigFile(home + "/.piglet/config.json")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("compiler: read config: %w", err)
			}
		}
		if v.GetString("mat_base_dir") == "" {
			v.SetDefault("mat_base_dir", home+"/.piglet/materializations")
		}
		if v.GetString("catalogue_path") == "" {
			v.SetDefault("catalogue_path", home+"/.piglet/catalogue.json")
		}
	}

	v.SetEnvPrefix("piglet")
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("compiler: decode config: %w", err)
	}
	return cfg, nil
}

// Context bundles everything a Compile call needs: configuration, a
// structured logger, the durable cost model, the materialization
// catalogue and its storage backend, and the rewrite rule registry.
type Context struct {
	Config    *Config
	Logger    zerolog.Logger
	Model     *markov.Model
	Catalogue *materialize.Catalogue
	Backend   store.Backend
	Registry  *rewrite.Registry
}

// NewContext wires the durable state named by cfg: loads (or creates)
// the Markov model and cache catalogue, resolves the storage backend,
// and registers the default rewrite rule set.
func NewContext(cfg *Config, logger zerolog.Logger) (*Context, error) {
	modelPath := cfg.ModelPath
	if modelPath == "" {
		var err error
		modelPath, err = markov.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("compiler: resolve model path: %w", err)
		}
	}
	model, err := markov.Load(modelPath)
	if err != nil {
		return nil, fmt.Errorf("compiler: load model: %w", err)
	}

	cat, err := materialize.LoadCatalogue(cfg.CataloguePath)
	if err != nil {
		return nil, fmt.Errorf("compiler: load catalogue: %w", err)
	}

	backend, err := store.ForBaseDir(cfg.MatBaseDir)
	if err != nil {
		return nil, fmt.Errorf("compiler: resolve storage backend: %w", err)
	}

	return &Context{
		Config:    cfg,
		Logger:    logger,
		Model:     model,
		Catalogue: cat,
		Backend:   backend,
		Registry:  defaultRegistry(),
	}, nil
}

// defaultRegistry registers the rewrite rules every backend shares plus
// the flinks-only window lowering (spec.md §4.3, DESIGN.md's resolved
// Open Question on WINDOW's backend-dependent behavior).
func defaultRegistry() *rewrite.Registry {
	r := rewrite.NewRegistry()
	r.Register("", rewrite.MergeAdjacentFilters)
	r.Register("", rewrite.PushDownFilter)
	r.Register(rewrite.FlinksBackend, rewrite.WindowToGroup)
	return r
}
