package specrun

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/spectral-sh/specrun/runner"
	"github.com/spectral-sh/specrun/types"
)

// RunTests is the orchestration entry point: it runs every file in its own
// worker process under the configured concurrency limit and returns the
// merged aggregate report.
//
// Only validation failures return an error, and they do so before any work
// starts. Once workers run, individual failures, timeouts and launch
// errors are data in the returned report, never an error.
func RunTests(ctx context.Context, files []types.TestFileTask, opts types.RunOptions) (*runner.AggregateReport, error) {
	return runTests(ctx, files, opts, log.Root(), nil)
}

func runTests(ctx context.Context, files []types.TestFileTask, opts types.RunOptions, logger log.Logger, progress runner.ProgressIndicator) (*runner.AggregateReport, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no test files supplied")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	executor, err := runner.NewWorkerExecutor(opts, logger)
	if err != nil {
		return nil, err
	}
	scheduler, err := runner.NewScheduler(executor, opts, logger, progress)
	if err != nil {
		return nil, err
	}

	return scheduler.Run(ctx, files), nil
}
