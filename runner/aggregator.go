package runner

import (
	"sync"

	"github.com/spectral-sh/specrun/types"
)

// Aggregator owns the AggregateReport for the lifetime of a run and folds
// one WorkerResult at a time into it. The scheduler routes all completions
// through a single consumer, but Fold takes its own lock so the merge law
// holds even if a caller wires it differently.
type Aggregator struct {
	mu     sync.Mutex
	report *AggregateReport
}

// NewAggregator creates an aggregator around an empty report.
func NewAggregator(runID string) *Aggregator {
	return &Aggregator{
		report: &AggregateReport{
			RunID:    runID,
			Coverage: make(types.CoverageMap),
		},
	}
}

// Admit records that a file was started, preserving admission order.
func (a *Aggregator) Admit(file string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.report.FilesRun = append(a.report.FilesRun, file)
}

// Fold merges one worker's result into the running aggregate. Counter and
// coverage merges are pure addition over independent keys, so folding is
// commutative and associative: the final report does not depend on the
// order concurrently completing workers arrive in.
func (a *Aggregator) Fold(file string, result *WorkerResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := a.report
	r.Total += result.Total
	r.Passed += result.Passed
	r.Failed += result.Failed
	r.Skipped += result.Skipped
	r.Pending += result.Pending
	r.Duration += result.Elapsed

	for _, e := range result.Errors {
		r.Errors = append(r.Errors, types.FileError{
			File:    file,
			Message: e.Message,
			Trace:   e.Trace,
		})
	}

	r.WorkerOutputs = append(r.WorkerOutputs, result.RawOutput)
	r.FileOutcomes = append(r.FileOutcomes, FileOutcome{
		File:      file,
		Status:    workerStatus(result),
		Total:     result.Total,
		Passed:    result.Passed,
		Failed:    result.Failed,
		Skipped:   result.Skipped,
		Pending:   result.Pending,
		Elapsed:   result.Elapsed,
		TimedOut:  result.TimedOut,
		Truncated: result.Truncated,
	})

	if !result.ExitSuccess {
		r.FilesFailed++
	}
	if result.TimedOut {
		r.FilesTimedOut++
	}

	r.Coverage.Merge(result.Coverage)
}

// Report finalizes and returns the aggregate. The returned report is
// frozen; the aggregator must not fold after this point.
func (a *Aggregator) Report() *AggregateReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.report.Status = determineStatus(a.report)
	return a.report
}
