package runner

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/spectral-sh/specrun/metrics"
	"github.com/spectral-sh/specrun/types"
)

// Scheduler drives a whole run: it admits files into a bounded pool of
// concurrent worker executions, folds every completion into the aggregate
// through a single consumer loop, applies the fail-fast policy and returns
// the finished report.
//
// States: idle (no file admitted yet) -> running (workers in flight) ->
// draining (fail-fast triggered, no new admissions) -> done. In-flight
// workers always finish and are folded, including during a drain.
type Scheduler struct {
	executor WorkerExecutor
	opts     types.RunOptions
	log      log.Logger
	progress ProgressIndicator
	tracer   trace.Tracer
}

// completion carries one finished worker back to the dispatch loop.
type completion struct {
	file   string
	result *WorkerResult
}

// NewScheduler creates a scheduler. Invalid options are the only fatal,
// caller-visible error; they are rejected here before any work starts.
func NewScheduler(executor WorkerExecutor, opts types.RunOptions, logger log.Logger, progress ProgressIndicator) (*Scheduler, error) {
	if executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run options: %w", err)
	}
	if logger == nil {
		logger = log.New()
	}
	if progress == nil {
		progress = NewNoOpProgressIndicator()
	}
	if opts.WorkerLimit > MaxReasonableConcurrency {
		logger.Warn("Very high concurrency requested", "workerLimit", opts.WorkerLimit,
			"recommendation", "consider lower values to avoid resource exhaustion")
	}

	return &Scheduler{
		executor: executor,
		opts:     opts,
		log:      logger.New("component", "scheduler"),
		progress: progress,
		tracer:   otel.Tracer("specrun scheduler"),
	}, nil
}

// Run executes all files and returns the frozen aggregate report. Worker
// failures, timeouts and launch errors are data in the report, never an
// abort: the caller always gets a best-effort aggregate.
func (s *Scheduler) Run(ctx context.Context, files []types.TestFileTask) *AggregateReport {
	ctx, span := s.tracer.Start(ctx, "test run")
	defer span.End()

	runID := uuid.New().String()
	start := time.Now()
	agg := NewAggregator(runID)

	s.log.Info("Starting test run", "runID", runID, "files", len(files),
		"workerLimit", s.opts.WorkerLimit, "failFast", s.opts.FailFast)
	s.progress.StartRun(len(files))

	completions := make(chan completion)
	next := 0
	active := 0
	draining := false

	for {
		// Admit in caller order while there is capacity. Each admission
		// starts one worker goroutine; the goroutine owns its process
		// handle and result until it reports back here.
		for !draining && next < len(files) && active < s.opts.WorkerLimit {
			task := files[next]
			next++
			active++
			agg.Admit(task.Path)
			s.progress.StartFile(task.Path)
			go func(task types.TestFileTask) {
				completions <- completion{file: task.Path, result: s.executor.Execute(ctx, task)}
			}(task)
		}

		if active == 0 {
			break
		}

		// The dispatch loop is the single consumer of completions, which
		// keeps all report mutation on one goroutine.
		c := <-completions
		active--
		if !s.opts.AggregateCoverage {
			c.result.Coverage = nil
		}
		agg.Fold(c.file, c.result)

		status := workerStatus(c.result)
		metrics.RecordWorker(runID, c.file, status)
		s.progress.CompleteFile(c.file, status)
		s.log.Debug("Worker finished", "file", c.file, "status", status,
			"tests", c.result.Total, "elapsed", c.result.Elapsed)

		if !draining && s.opts.FailFast && !c.result.ExitSuccess {
			draining = true
			s.log.Warn("Fail-fast triggered, draining in-flight workers",
				"file", c.file, "remaining", len(files)-next)
		}
		if !draining && ctx.Err() != nil {
			draining = true
			s.log.Warn("Context cancelled, draining in-flight workers", "error", ctx.Err())
		}
	}

	report := agg.Report()
	report.WallClockTime = time.Since(start)
	metrics.RecordRun(runID, len(report.FilesRun), report.FilesFailed, report.FilesTimedOut, report.Status.String())
	s.progress.CompleteRun(report.Status)

	s.log.Info("Test run complete", "runID", runID, "status", report.Status,
		"filesRun", len(report.FilesRun), "failed", report.Failed,
		"wallClock", report.WallClockTime)
	return report
}

// DetermineConcurrency resolves the effective worker limit: a positive
// requested value wins, zero auto-sizes from the CPU count. The result is
// always within [1, min(numFiles, MaxReasonableConcurrency)].
func DetermineConcurrency(requested, numFiles int) int {
	if numFiles < 1 {
		return 1
	}

	limit := requested
	if limit <= 0 {
		numCPU := runtime.NumCPU()
		switch {
		case numCPU <= 2:
			limit = numCPU
		case numCPU <= 4:
			limit = int(float64(numCPU) * 1.25)
		default:
			limit = int(float64(numCPU) * 1.5)
		}
		if limit > MaxReasonableConcurrency {
			limit = MaxReasonableConcurrency
		}
	}

	if limit > numFiles {
		limit = numFiles
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}
