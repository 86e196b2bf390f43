// Package scenario parses scenario command flags and runs Lua scene scripts.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/louisbranch/defilade/internal/cover"
	entrypoint "github.com/louisbranch/defilade/internal/platform/cmd"
	"github.com/louisbranch/defilade/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Scenario   string        `env:"DEFILADE_SCENARIO_FILE"`
	Assertions bool          `env:"DEFILADE_SCENARIO_ASSERT"  envDefault:"true"`
	Verbose    bool          `env:"DEFILADE_SCENARIO_VERBOSE"`
	Timeout    time.Duration `env:"DEFILADE_SCENARIO_TIMEOUT" envDefault:"10s"`
	Mode       string        `env:"DEFILADE_MODE"             envDefault:"size_differential"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per expectation")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "default evaluation mode")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the scenario command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}

	engine := cover.DefaultConfig()
	if cfg.Mode != "" {
		mode, ok := cover.ParseMode(cfg.Mode)
		if !ok {
			return fmt.Errorf("unknown evaluation mode %q", cfg.Mode)
		}
		engine.Mode = mode
	}

	assertions := scenario.AssertionStrict
	if !cfg.Assertions {
		assertions = scenario.AssertionLogOnly
	}

	summary, err := scenario.RunFile(ctx, scenario.Config{
		Engine:     engine,
		Timeout:    cfg.Timeout,
		Assertions: assertions,
		Verbose:    cfg.Verbose,
		Logger:     log.New(errOut, "", 0),
	}, cfg.Scenario)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "scenario %s: %d/%d expectations passed\n", summary.Scene, summary.Passed, summary.Total)
	for _, mismatch := range summary.Mismatch {
		fmt.Fprintf(out, "  mismatch: %s\n", mismatch)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d expectations failed", summary.Failed, summary.Total)
	}
	return nil
}
