package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/spectral-sh/specrun/types"
)

var _ WorkerExecutor = (*workerExecutor)(nil)

// WorkerExecutor runs exactly one test file in an isolated worker process
// and produces a WorkerResult. Executions never return an error to the
// scheduler; launch failures, timeouts and crashes are all recorded as
// data on the result.
type WorkerExecutor interface {
	Execute(ctx context.Context, task types.TestFileTask) *WorkerResult
}

// CommandBuilder constructs the worker process command. Injected so tests
// can substitute a fake process.
type CommandBuilder func(ctx context.Context, name string, arg ...string) *exec.Cmd

// workerExecutor implements WorkerExecutor on top of os/exec.
type workerExecutor struct {
	opts       types.RunOptions
	log        log.Logger
	cmdBuilder CommandBuilder
	parser     OutputParser
	tracer     trace.Tracer
}

// NewWorkerExecutor creates an executor for the given run options.
func NewWorkerExecutor(opts types.RunOptions, logger log.Logger) (WorkerExecutor, error) {
	return newWorkerExecutor(opts, logger, nil, nil)
}

func newWorkerExecutor(opts types.RunOptions, logger log.Logger, cmdBuilder CommandBuilder, parser OutputParser) (*workerExecutor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()
	if logger == nil {
		logger = log.New()
	}
	if cmdBuilder == nil {
		cmdBuilder = exec.CommandContext
	}
	if parser == nil {
		parser = NewOutputParser()
	}

	return &workerExecutor{
		opts:       opts,
		log:        logger.New("component", "worker-executor"),
		cmdBuilder: cmdBuilder,
		parser:     parser,
		tracer:     otel.Tracer("specrun worker"),
	}, nil
}

// Execute runs the worker process for one test file with a hard wall-clock
// deadline. The combined stdout/stderr stream is captured into a bounded
// tail buffer and parsed regardless of how the process ended.
func (e *workerExecutor) Execute(ctx context.Context, task types.TestFileTask) *WorkerResult {
	ctx, span := e.tracer.Start(ctx, fmt.Sprintf("file %s", task.Path))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, e.opts.PerFileTimeout)
	defer cancel()

	args := e.buildWorkerArgs(task)
	cmd := e.cmdBuilder(ctx, e.opts.RunnerBinary, args...)
	if cmd.Dir == "" {
		cmd.Dir = e.opts.WorkDir
	}

	output := newTailBuffer(e.opts.OutputLimitBytes)
	cmd.Stdout = output
	cmd.Stderr = output

	e.log.Debug("Starting worker", "file", task.Path, "command", cmd.String(), "timeout", e.opts.PerFileTimeout)

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	raw := output.Bytes()
	result := e.parser.Parse(raw)
	result.Elapsed = elapsed
	result.RawOutput = string(raw)
	result.Truncated = output.Truncated()

	// Coverage is only carried when the caller asked for it; a runner that
	// emits a payload unprompted does not get to grow the report.
	if !e.opts.Coverage {
		result.Coverage = make(types.CoverageMap)
	}

	if ctx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitSuccess = false
		result.Errors = append(result.Errors, types.TestError{
			Message: fmt.Sprintf("timed out after %v", e.opts.PerFileTimeout),
		})
		e.log.Warn("Worker timed out", "file", task.Path, "timeout", e.opts.PerFileTimeout)
		return result
	}

	if runErr != nil {
		result.ExitSuccess = false
		exitErr := &exec.ExitError{}
		if errors.As(runErr, &exitErr) {
			// A non-zero exit with parsed failures needs no synthetic
			// error; the per-test records already explain it.
			if result.Failed == 0 {
				result.Errors = append(result.Errors, types.TestError{
					Message: fmt.Sprintf("worker exited with code %d", exitErr.ExitCode()),
				})
			}
		} else {
			result.Errors = append(result.Errors, types.TestError{
				Message: fmt.Sprintf("failed to start test runner %q: %v", e.opts.RunnerBinary, runErr),
			})
			e.log.Error("Worker failed to launch", "file", task.Path, "error", runErr)
		}
		return result
	}

	// Exit code 0 counts as success only when the parsed counters agree.
	result.ExitSuccess = result.Failed == 0
	return result
}

// buildWorkerArgs constructs the worker command line, passing caller
// filters through to the runner binary.
func (e *workerExecutor) buildWorkerArgs(task types.TestFileTask) []string {
	args := []string{MachineOutputFlag}

	if e.opts.Coverage {
		args = append(args, CoverageFlag)
	}
	for _, tag := range e.opts.Tags {
		args = append(args, TagFlag, tag)
	}
	if e.opts.NameFilter != "" {
		args = append(args, FilterFlag, e.opts.NameFilter)
	}

	return append(args, task.Path)
}
