package specrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spectral-sh/specrun/exitcodes"
	"github.com/spectral-sh/specrun/logging"
	"github.com/spectral-sh/specrun/registry"
	"github.com/spectral-sh/specrun/runner"
	"github.com/spectral-sh/specrun/types"
)

// Service runs orchestrated test runs once or periodically at the
// configured interval.
type Service struct {
	ctx      context.Context
	config   *Config
	version  string
	registry *registry.Registry
	result   *runner.AggregateReport

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	shutdownCallback func(error) // Callback to signal application shutdown
}

// New creates the specrun service around a loaded run list.
func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*Service, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating specrun service",
		"runList", config.RunListFile,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce,
		"failFast", config.FailFast)

	reg, err := registry.NewRegistry(registry.Config{
		Log:         config.Log,
		RunListFile: config.RunListFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	return &Service{
		ctx:              ctx,
		config:           config,
		version:          version,
		registry:         reg,
		done:             make(chan struct{}),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start runs the test files once, or periodically at the configured
// interval until stopped.
func (s *Service) Start(ctx context.Context) error {
	// Panics anywhere below are runtime errors, not test failures.
	defer func() {
		if r := recover(); r != nil {
			s.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	s.ctx = ctx
	s.done = make(chan struct{})
	s.running.Store(true)

	if s.config.RunOnce {
		s.config.Log.Info("Starting specrun in run-once mode")
	} else {
		s.config.Log.Info("Starting specrun in continuous mode", "interval", s.config.RunInterval)
	}

	// Run tests immediately on startup
	if err := s.runTests(); err != nil {
		s.config.Log.Error("Runtime error running tests", "error", err)
		return NewRuntimeError(err)
	}

	if s.config.RunOnce {
		s.config.Log.Info("Tests completed, exiting (run-once mode)")

		if s.result != nil && s.result.Status == types.TestStatusFail {
			s.config.Log.Warn("Run-once test run completed with failures, returning exit code 1")
			return NewTestFailureError(s.result.String())
		}

		go func() {
			s.shutdownCallback(nil)
		}()
		return nil
	}

	// Periodic execution until Stop or context cancellation.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.config.Log.Debug("Starting periodic test runner goroutine", "interval", s.config.RunInterval)

		for {
			select {
			case <-time.After(s.config.RunInterval):
				if !s.running.Load() {
					s.config.Log.Debug("Service stopped, exiting periodic test runner")
					return
				}

				s.config.Log.Info("Running periodic tests")
				if err := s.runTests(); err != nil {
					s.config.Log.Error("Error running periodic tests", "error", err)
				}

			case <-s.done:
				s.config.Log.Debug("Done signal received, stopping periodic test runner")
				return

			case <-ctx.Done():
				s.config.Log.Debug("Context canceled, stopping periodic test runner")
				s.running.Store(false)
				return
			}
		}
	}()

	return nil
}

// Stop stops the service.
func (s *Service) Stop(ctx context.Context) error {
	if !s.running.Load() {
		s.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}

	s.running.Store(false)
	close(s.done)
	s.wg.Wait()
	return nil
}

// Stopped returns true if the service is stopped.
func (s *Service) Stopped() bool {
	return !s.running.Load()
}

// Result returns the most recent aggregate report, if any.
func (s *Service) Result() *runner.AggregateReport {
	return s.result
}

// runTests performs one orchestrated run: execute, persist artifacts,
// report metrics and render the summary.
func (s *Service) runTests() error {
	tasks := s.registry.Tasks()
	opts := s.config.RunOptions(len(tasks), s.registry.DefaultTags())

	var progress runner.ProgressIndicator
	if s.config.ShowProgress {
		progress = runner.NewLogProgressIndicator(s.config.Log, s.config.ProgressInterval)
	}

	report, err := runTests(s.ctx, tasks, opts, s.config.Log, progress)
	if err != nil {
		return err
	}
	s.result = report

	if s.config.LogDir != "" {
		if err := s.persistArtifacts(report); err != nil {
			s.config.Log.Error("Failed to persist run artifacts", "error", err)
		}
	}

	formatter := NewConsoleResultFormatter(s.config.Log)
	if err := formatter.FormatResults(report); err != nil {
		s.config.Log.Error("Failed to format results", "error", err)
	}

	return nil
}

// persistArtifacts writes raw worker outputs and the run summary under
// <logdir>/<runID>/.
func (s *Service) persistArtifacts(report *runner.AggregateReport) error {
	fileLogger, err := logging.NewFileLogger(s.config.LogDir, report.RunID, s.config.Log)
	if err != nil {
		return err
	}

	// FileOutcomes and WorkerOutputs are appended together per fold, so
	// the two slices align index-for-index in completion order.
	for i, outcome := range report.FileOutcomes {
		if i >= len(report.WorkerOutputs) {
			break
		}
		if err := fileLogger.LogWorkerOutput(outcome.File, report.WorkerOutputs[i], outcome.Truncated); err != nil {
			s.config.Log.Error("Failed to write worker output", "file", outcome.File, "error", err)
		}
	}

	if err := fileLogger.LogSummary(report.String()); err != nil {
		return err
	}

	s.config.Log.Info("Run artifacts written", "dir", fileLogger.RunDir())
	return nil
}
