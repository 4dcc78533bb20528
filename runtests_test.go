package specrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectral-sh/specrun/types"
)

// writeFakeRunner installs a shell script that speaks the worker protocol,
// passing or failing based on the test file name it is handed.
func writeFakeRunner(t *testing.T) string {
	t.Helper()
	script := `#!/bin/sh
for last; do :; done
case "$last" in
*fail*)
	printf '{"version":1,"action":"fail","test":"t","message":"boom"}\n'
	exit 1
	;;
*)
	printf '{"version":1,"action":"pass","test":"t"}\n'
	;;
esac
`
	path := filepath.Join(t.TempDir(), "fake-runner")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func defaultRunOptions(t *testing.T) types.RunOptions {
	return types.RunOptions{
		WorkerLimit:    2,
		PerFileTimeout: 10 * time.Second,
		RunnerBinary:   writeFakeRunner(t),
	}
}

func TestRunTests_NoFiles(t *testing.T) {
	_, err := RunTests(context.Background(), nil, defaultRunOptions(t))
	assert.ErrorContains(t, err, "no test files supplied")
}

func TestRunTests_InvalidOptions(t *testing.T) {
	opts := defaultRunOptions(t)
	opts.WorkerLimit = 0

	_, err := RunTests(context.Background(), types.TasksFromPaths([]string{"a.lua"}), opts)
	assert.Error(t, err)

	opts = defaultRunOptions(t)
	opts.PerFileTimeout = 0
	_, err = RunTests(context.Background(), types.TasksFromPaths([]string{"a.lua"}), opts)
	assert.Error(t, err)
}

func TestRunTests_AllPassing(t *testing.T) {
	files := types.TasksFromPaths([]string{"spec/a_spec.lua", "spec/b_spec.lua"})

	report, err := RunTests(context.Background(), files, defaultRunOptions(t))
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.True(t, report.AllPassed())
	assert.Equal(t, types.TestStatusPass, report.Status)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, []string{"spec/a_spec.lua", "spec/b_spec.lua"}, report.FilesRun)
	assert.Equal(t, 0, report.FilesFailed)
}

func TestRunTests_WithFailures(t *testing.T) {
	files := types.TasksFromPaths([]string{"spec/a_spec.lua", "spec/fail_spec.lua"})

	report, err := RunTests(context.Background(), files, defaultRunOptions(t))
	require.NoError(t, err, "failing tests are report data, not an error")

	assert.False(t, report.AllPassed())
	assert.Equal(t, types.TestStatusFail, report.Status)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.FilesFailed)

	require.Len(t, report.Errors, 1)
	assert.Equal(t, "spec/fail_spec.lua", report.Errors[0].File)
	assert.Equal(t, "boom", report.Errors[0].Message)
}

func TestRunTests_FailFast(t *testing.T) {
	opts := defaultRunOptions(t)
	opts.WorkerLimit = 1
	opts.FailFast = true

	files := types.TasksFromPaths([]string{"spec/fail_spec.lua", "spec/a_spec.lua", "spec/b_spec.lua"})
	report, err := RunTests(context.Background(), files, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"spec/fail_spec.lua"}, report.FilesRun)
	assert.Equal(t, types.TestStatusFail, report.Status)
}
