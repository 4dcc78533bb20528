package specrun

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/spectral-sh/specrun/flags"
	"github.com/spectral-sh/specrun/runner"
	"github.com/spectral-sh/specrun/types"
)

// Config holds the application configuration
type Config struct {
	RunListFile  string
	WorkDir      string
	RunnerBinary string

	Concurrency    int           // Number of concurrent workers (0 = auto-determine)
	PerFileTimeout time.Duration // Hard deadline for a single worker process
	FailFast       bool          // Stop admitting new files after the first failure
	Coverage       bool          // Collect and aggregate coverage
	Tags           []string      // Tag filters passed through to the runner binary
	Filter         string        // Test-name filter passed through to the runner binary

	RunInterval time.Duration // Interval between test runs
	RunOnce     bool          // Indicates if the service should exit after one run
	LogDir      string        // Directory to store worker output logs
	OutputLimit int           // Max raw output bytes retained per worker

	ShowProgress     bool          // Whether to log periodic progress updates
	ProgressInterval time.Duration // Interval between progress updates

	Log log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	runListFile := ctx.String(flags.RunList.Name)
	if _, err := os.Stat(runListFile); err != nil {
		return nil, fmt.Errorf("run list file %q not accessible: %w", runListFile, err)
	}

	workDir := ctx.String(flags.WorkDir.Name)
	if workDir != "" {
		abs, err := filepath.Abs(workDir)
		if err != nil {
			return nil, fmt.Errorf("resolving workdir %q: %w", workDir, err)
		}
		workDir = abs
	}

	timeout := ctx.Duration(flags.Timeout.Name)
	if timeout <= 0 {
		timeout = runner.DefaultPerFileTimeout
	}

	interval := ctx.Duration(flags.RunInterval.Name)

	return &Config{
		RunListFile:      runListFile,
		WorkDir:          workDir,
		RunnerBinary:     ctx.String(flags.RunnerBinary.Name),
		Concurrency:      ctx.Int(flags.Concurrency.Name),
		PerFileTimeout:   timeout,
		FailFast:         ctx.Bool(flags.FailFast.Name),
		Coverage:         ctx.Bool(flags.Coverage.Name),
		Tags:             ctx.StringSlice(flags.Tags.Name),
		Filter:           ctx.String(flags.Filter.Name),
		RunInterval:      interval,
		RunOnce:          interval == 0,
		LogDir:           ctx.String(flags.LogDir.Name),
		OutputLimit:      ctx.Int(flags.OutputLimit.Name),
		ShowProgress:     ctx.Bool(flags.ShowProgress.Name),
		ProgressInterval: ctx.Duration(flags.ProgressInterval.Name),
		Log:              log,
	}, nil
}

// RunOptions derives the orchestrator options for a run over numFiles
// files, resolving auto-concurrency and merging run-list default tags.
func (c *Config) RunOptions(numFiles int, defaultTags []string) types.RunOptions {
	tags := c.Tags
	if len(tags) == 0 {
		tags = defaultTags
	}
	return types.RunOptions{
		WorkerLimit:       runner.DetermineConcurrency(c.Concurrency, numFiles),
		PerFileTimeout:    c.PerFileTimeout,
		FailFast:          c.FailFast,
		AggregateCoverage: c.Coverage,
		Coverage:          c.Coverage,
		Tags:              tags,
		NameFilter:        c.Filter,
		RunnerBinary:      c.RunnerBinary,
		WorkDir:           c.WorkDir,
		OutputLimitBytes:  c.OutputLimit,
	}
}
