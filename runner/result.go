package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/spectral-sh/specrun/types"
)

// WorkerResult is the outcome of one worker invocation, including
// timed-out and crashed workers. It is owned by the executor that produced
// it until handed to the aggregator; after that it is read-only.
type WorkerResult struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Pending int

	Errors    []types.TestError
	Elapsed   time.Duration
	RawOutput string
	Truncated bool
	Coverage  types.CoverageMap

	TimedOut    bool
	ExitSuccess bool
}

// Counted reports whether per-test markers were recognized in the output.
// An unparseable worker yields all-zero counters plus the raw output.
func (r *WorkerResult) Counted() bool {
	return r.Total > 0
}

// AggregateReport is the merged outcome of an entire run. It is mutated
// only through Aggregator.Fold while the run is in flight and is frozen
// once returned to the caller.
type AggregateReport struct {
	RunID string

	Total   int
	Passed  int
	Failed  int
	Skipped int
	Pending int

	// Errors from all workers, tagged with their originating file.
	Errors []types.FileError

	// Coverage is merged by per-key addition across workers.
	Coverage types.CoverageMap

	// FilesRun lists files in admission order. WorkerOutputs lists raw
	// captures in completion order; with WorkerLimit > 1 the two are not
	// positionally aligned.
	FilesRun      []string
	WorkerOutputs []string

	// FileOutcomes holds one per-file summary per completed worker, in
	// completion order.
	FileOutcomes []FileOutcome

	// FilesFailed and FilesTimedOut count whole-file outcomes, as opposed
	// to the per-test counters above.
	FilesFailed   int
	FilesTimedOut int

	// Duration is the sum of per-worker elapsed times. WallClockTime is
	// the true duration of the run as measured by the orchestrator.
	Duration      time.Duration
	WallClockTime time.Duration

	Status types.TestStatus
}

// Passed reports whether every admitted worker exited successfully.
func (r *AggregateReport) AllPassed() bool {
	return r.Status == types.TestStatusPass
}

// String returns a human-readable multi-line summary of the run.
func (r *AggregateReport) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Test Run Results (%s wall clock):\n", formatDuration(r.WallClockTime)))
	b.WriteString(fmt.Sprintf("Files: %d run, %d failed, %d timed out\n",
		len(r.FilesRun), r.FilesFailed, r.FilesTimedOut))
	b.WriteString(fmt.Sprintf("Tests: %d total, %d passed, %d failed, %d skipped, %d pending\n",
		r.Total, r.Passed, r.Failed, r.Skipped, r.Pending))
	for _, e := range r.Errors {
		b.WriteString(fmt.Sprintf("├── %s: %s\n", e.File, firstLine(e.Message)))
	}
	if len(r.Coverage) > 0 {
		b.WriteString(fmt.Sprintf("Coverage: %d files, %d line hits\n",
			len(r.Coverage), r.Coverage.TotalLineHits()))
	}
	return b.String()
}

// FileOutcome is one file's condensed result as stored on the report.
type FileOutcome struct {
	File      string
	Status    types.TestStatus
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	Pending   int
	Elapsed   time.Duration
	TimedOut  bool
	Truncated bool
}

// workerStatus classifies one worker outcome for the report, metrics and
// progress updates.
func workerStatus(result *WorkerResult) types.TestStatus {
	switch {
	case result.TimedOut:
		return types.TestStatusError
	case !result.ExitSuccess:
		return types.TestStatusFail
	case result.Total > 0 && result.Total == result.Skipped+result.Pending:
		return types.TestStatusSkip
	default:
		return types.TestStatusPass
	}
}

// formatDuration formats the duration to seconds with 1 decimal place.
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// determineStatus derives the overall run status: failures dominate,
// an all-skip run reports skip, anything else passes.
func determineStatus(r *AggregateReport) types.TestStatus {
	if r.FilesFailed > 0 || r.Failed > 0 {
		return types.TestStatusFail
	}
	if len(r.FilesRun) > 0 && r.Total == r.Skipped+r.Pending && r.Total > 0 {
		return types.TestStatusSkip
	}
	return types.TestStatusPass
}
