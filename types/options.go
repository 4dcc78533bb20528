package types

import (
	"fmt"
	"time"
)

// Default limits applied when the caller leaves the corresponding
// RunOptions field zero.
const (
	DefaultOutputLimitBytes = 5 * 1024 * 1024 // raw output kept per worker
	DefaultRunnerBinary     = "specrun-worker"
)

// RunOptions is the configuration snapshot for one orchestrated run.
// It is read-only for the duration of the run and requires no
// synchronization.
type RunOptions struct {
	// WorkerLimit bounds the number of concurrently running worker
	// processes. Must be >= 1.
	WorkerLimit int

	// PerFileTimeout is the hard wall-clock deadline for a single worker
	// process. Must be > 0.
	PerFileTimeout time.Duration

	// FailFast stops admitting new files after the first worker that
	// completes without exit success. In-flight workers still finish and
	// are folded into the aggregate.
	FailFast bool

	// AggregateCoverage merges per-worker coverage maps into the report.
	AggregateCoverage bool

	// Flags passed through to the runner binary.
	Coverage   bool     // instruct the runner to collect coverage
	Tags       []string // zero or more tag filters
	NameFilter string   // optional test-name filter

	// RunnerBinary is the external test-runner executable invoked once
	// per file. Defaults to DefaultRunnerBinary.
	RunnerBinary string

	// WorkDir is the working directory for worker processes. Empty means
	// the orchestrator's own working directory.
	WorkDir string

	// OutputLimitBytes bounds the combined stdout/stderr retained per
	// worker. Excess output is truncated, not an error. Zero means
	// DefaultOutputLimitBytes.
	OutputLimitBytes int
}

// Validate reports whether the options describe a runnable configuration.
// Validation failures are the only errors that cross the orchestrator
// boundary; everything later becomes data in the aggregate report.
func (o RunOptions) Validate() error {
	if o.WorkerLimit < 1 {
		return fmt.Errorf("worker limit must be at least 1, got %d", o.WorkerLimit)
	}
	if o.PerFileTimeout <= 0 {
		return fmt.Errorf("per-file timeout must be positive, got %v", o.PerFileTimeout)
	}
	return nil
}

// WithDefaults returns a copy with zero-valued optional fields replaced by
// their defaults.
func (o RunOptions) WithDefaults() RunOptions {
	if o.RunnerBinary == "" {
		o.RunnerBinary = DefaultRunnerBinary
	}
	if o.OutputLimitBytes <= 0 {
		o.OutputLimitBytes = DefaultOutputLimitBytes
	}
	return o
}
