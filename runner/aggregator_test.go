package runner

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectral-sh/specrun/types"
)

func TestAggregator_FoldCounts(t *testing.T) {
	agg := NewAggregator("run-1")

	agg.Admit("spec/a_spec.lua")
	agg.Admit("spec/b_spec.lua")

	agg.Fold("spec/a_spec.lua", &WorkerResult{
		Total: 3, Passed: 3,
		Elapsed:     120 * time.Millisecond,
		ExitSuccess: true,
	})
	agg.Fold("spec/b_spec.lua", &WorkerResult{
		Total: 4, Passed: 2, Failed: 1, Skipped: 1,
		Errors:  []types.TestError{{Message: "boom", Trace: "b_spec.lua:7"}},
		Elapsed: 80 * time.Millisecond,
	})

	report := agg.Report()
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 7, report.Total)
	assert.Equal(t, 5, report.Passed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 200*time.Millisecond, report.Duration)
	assert.Equal(t, []string{"spec/a_spec.lua", "spec/b_spec.lua"}, report.FilesRun)
	assert.Equal(t, 1, report.FilesFailed)
	assert.Equal(t, 0, report.FilesTimedOut)
	assert.Equal(t, types.TestStatusFail, report.Status)
	assert.False(t, report.AllPassed())

	require.Len(t, report.Errors, 1)
	assert.Equal(t, "spec/b_spec.lua", report.Errors[0].File)
	assert.Equal(t, "boom", report.Errors[0].Message)
	assert.Equal(t, "b_spec.lua:7", report.Errors[0].Trace)
}

func TestAggregator_FileOutcomesAlignWithOutputs(t *testing.T) {
	agg := NewAggregator("run-2")

	agg.Fold("a.lua", &WorkerResult{Total: 1, Passed: 1, RawOutput: "out-a", ExitSuccess: true})
	agg.Fold("b.lua", &WorkerResult{Total: 1, Failed: 1, RawOutput: "out-b"})
	agg.Fold("c.lua", &WorkerResult{TimedOut: true, RawOutput: "out-c"})

	report := agg.Report()
	require.Len(t, report.FileOutcomes, 3)
	require.Len(t, report.WorkerOutputs, 3)
	for i, outcome := range report.FileOutcomes {
		assert.Equal(t, "out-"+outcome.File[:1], report.WorkerOutputs[i])
	}

	assert.Equal(t, types.TestStatusPass, report.FileOutcomes[0].Status)
	assert.Equal(t, types.TestStatusFail, report.FileOutcomes[1].Status)
	assert.Equal(t, types.TestStatusError, report.FileOutcomes[2].Status)
	assert.Equal(t, 2, report.FilesFailed)
	assert.Equal(t, 1, report.FilesTimedOut)
}

func TestAggregator_TimeoutCountedOnce(t *testing.T) {
	agg := NewAggregator("run-3")

	// A timed-out worker is both a failed file and a timed-out file.
	agg.Fold("slow.lua", &WorkerResult{TimedOut: true, Errors: []types.TestError{
		{Message: "timed out after 1s"},
	}})

	report := agg.Report()
	assert.Equal(t, 1, report.FilesFailed)
	assert.Equal(t, 1, report.FilesTimedOut)
	assert.Equal(t, types.TestStatusFail, report.Status)
}

func TestAggregator_CoverageMerge(t *testing.T) {
	agg := NewAggregator("run-4")

	agg.Fold("a.lua", &WorkerResult{
		ExitSuccess: true,
		Coverage: types.CoverageMap{
			"lib.lua": {Lines: map[int]int{10: 2, 12: 1}},
		},
	})
	agg.Fold("b.lua", &WorkerResult{
		ExitSuccess: true,
		Coverage: types.CoverageMap{
			"lib.lua": {Lines: map[int]int{10: 1, 15: 1}},
		},
	})

	report := agg.Report()
	require.Contains(t, report.Coverage, "lib.lua")
	assert.Equal(t, map[int]int{10: 3, 12: 1, 15: 1}, report.Coverage["lib.lua"].Lines)
}

// Folding is addition over independent keys, so any completion order must
// produce the same aggregate.
func TestAggregator_FoldOrderIndependent(t *testing.T) {
	results := map[string]*WorkerResult{
		"a.lua": {Total: 2, Passed: 2, Elapsed: time.Second, ExitSuccess: true},
		"b.lua": {Total: 3, Passed: 1, Failed: 2,
			Errors: []types.TestError{{Message: "x"}, {Message: "y"}}},
		"c.lua": {Total: 1, Skipped: 1, ExitSuccess: true},
		"d.lua": {TimedOut: true},
	}
	files := []string{"a.lua", "b.lua", "c.lua", "d.lua"}

	fold := func(order []string) *AggregateReport {
		agg := NewAggregator("run")
		for _, f := range order {
			agg.Fold(f, results[f])
		}
		return agg.Report()
	}

	baseline := fold(files)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		order := append([]string(nil), files...)
		rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })

		report := fold(order)
		assert.Equal(t, baseline.Total, report.Total)
		assert.Equal(t, baseline.Passed, report.Passed)
		assert.Equal(t, baseline.Failed, report.Failed)
		assert.Equal(t, baseline.Skipped, report.Skipped)
		assert.Equal(t, baseline.Pending, report.Pending)
		assert.Equal(t, baseline.Duration, report.Duration)
		assert.Equal(t, baseline.FilesFailed, report.FilesFailed)
		assert.Equal(t, baseline.FilesTimedOut, report.FilesTimedOut)
		assert.Equal(t, baseline.Status, report.Status)
		assert.ElementsMatch(t, baseline.Errors, report.Errors)
	}
}

func TestWorkerStatus(t *testing.T) {
	tests := []struct {
		name   string
		result WorkerResult
		want   types.TestStatus
	}{
		{"timeout", WorkerResult{TimedOut: true}, types.TestStatusError},
		{"exit failure", WorkerResult{ExitSuccess: false}, types.TestStatusFail},
		{"all skipped", WorkerResult{Total: 2, Skipped: 2, ExitSuccess: true}, types.TestStatusSkip},
		{"all pending", WorkerResult{Total: 1, Pending: 1, ExitSuccess: true}, types.TestStatusSkip},
		{"passing", WorkerResult{Total: 2, Passed: 2, ExitSuccess: true}, types.TestStatusPass},
		{"empty file", WorkerResult{ExitSuccess: true}, types.TestStatusPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, workerStatus(&tt.result))
		})
	}
}

func TestDetermineStatus_AllSkipped(t *testing.T) {
	agg := NewAggregator("run-5")
	agg.Admit("skip.lua")
	agg.Fold("skip.lua", &WorkerResult{Total: 3, Skipped: 2, Pending: 1, ExitSuccess: true})

	report := agg.Report()
	assert.Equal(t, types.TestStatusSkip, report.Status)
}
