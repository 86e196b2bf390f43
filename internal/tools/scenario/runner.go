// Package scenario executes Lua scene scripts and checks their cover
// expectations against the engine.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/louisbranch/defilade/internal/cover"
	"github.com/louisbranch/defilade/internal/scene"
	"github.com/louisbranch/defilade/internal/scene/scenelua"
)

// AssertionMode controls how expectation mismatches are reported.
type AssertionMode int

const (
	// AssertionStrict fails the run on the first mismatch.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs mismatches and keeps going.
	AssertionLogOnly
)

// Config controls scenario execution.
type Config struct {
	Engine     cover.Config
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Engine:     cover.DefaultConfig(),
		Timeout:    10 * time.Second,
		Assertions: AssertionStrict,
	}
}

// Summary reports the outcome of one scenario run.
type Summary struct {
	Scene    string
	Total    int
	Passed   int
	Failed   int
	Mismatch []string
}

// Runner evaluates scenario expectations against the cover engine.
type Runner struct {
	cfg     Config
	logger  *log.Logger
	timeout time.Duration
}

// NewRunner prepares a scenario runner.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Runner{cfg: cfg, logger: logger, timeout: timeout}
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) (Summary, error) {
	script, err := scenelua.LoadFile(path)
	if err != nil {
		return Summary{}, err
	}
	return NewRunner(cfg).RunScript(ctx, script)
}

// RunScript executes every expectation of the script. In strict mode the
// first mismatch fails the run; in log-only mode mismatches accumulate in
// the summary.
func (r *Runner) RunScript(ctx context.Context, script *scenelua.Script) (Summary, error) {
	if script == nil {
		return Summary{}, errors.New("script is required")
	}
	if len(script.Expectations) == 0 {
		return Summary{}, errors.New("script has no expectations")
	}

	summary := Summary{Scene: script.Scene.ID, Total: len(script.Expectations)}
	r.logf("scenario start: %s (%d expectations)", script.Scene.ID, len(script.Expectations))

	for index, exp := range script.Expectations {
		number := index + 1
		start := time.Now()
		runCtx, cancel := context.WithTimeout(ctx, r.timeout)
		got, err := r.check(runCtx, &script.Scene, exp)
		cancel()
		if err != nil {
			return summary, fmt.Errorf("expectation %d (%s): %w", number, expName(exp, number), err)
		}
		if got == exp.Level {
			summary.Passed++
			r.logf("expectation %d/%d ok: %s = %s (%s)", number, summary.Total, expName(exp, number), got, time.Since(start))
			continue
		}

		summary.Failed++
		mismatch := fmt.Sprintf("%s: got %s, want %s", expName(exp, number), got, exp.Level)
		summary.Mismatch = append(summary.Mismatch, mismatch)
		if r.cfg.Assertions == AssertionStrict {
			return summary, fmt.Errorf("expectation %d failed: %s", number, mismatch)
		}
		r.logger.Printf("expectation %d/%d failed: %s", number, summary.Total, mismatch)
	}

	r.logf("scenario done: %s (%d passed, %d failed)", script.Scene.ID, summary.Passed, summary.Failed)
	return summary, nil
}

// check resolves the cover level for one expectation.
func (r *Runner) check(ctx context.Context, doc *scene.Scene, exp scenelua.Expectation) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target, ok := doc.Find(exp.TargetID)
	if !ok {
		return "", fmt.Errorf("target %q is not in the scene", exp.TargetID)
	}
	var attacker cover.Token
	if exp.Origin != nil {
		attacker = cover.PointToken(*exp.Origin)
	} else {
		attacker, ok = doc.Find(exp.AttackerID)
		if !ok {
			return "", fmt.Errorf("attacker %q is not in the scene", exp.AttackerID)
		}
	}

	cfg := r.cfg.Engine
	if exp.Mode != "" {
		mode, ok := cover.ParseMode(exp.Mode)
		if !ok {
			return "", fmt.Errorf("unknown evaluation mode %q", exp.Mode)
		}
		cfg.Mode = mode
	}

	detector := cover.NewDetector(cfg)
	breakdown, err := detector.Evaluate(doc.ToCover(), attacker, target)
	if err != nil {
		return "", fmt.Errorf("evaluate cover: %w", err)
	}
	return breakdown.Final.String(), nil
}

func expName(exp scenelua.Expectation, number int) string {
	if exp.Name != "" {
		return exp.Name
	}
	return fmt.Sprintf("expectation-%d", number)
}

func (r *Runner) logf(format string, args ...any) {
	if !r.cfg.Verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
