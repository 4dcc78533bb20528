package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "SPECRUN"

// prefixEnvVars adds the application prefix to an env var name.
func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	RunList = &cli.StringFlag{
		Name:     "runlist",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("RUNLIST"),
		Usage:    "Path to the run-list file naming the test files to execute (eg. 'runlist.yaml')",
	}
	WorkDir = &cli.StringFlag{
		Name:    "workdir",
		Value:   "",
		EnvVars: prefixEnvVars("WORKDIR"),
		Usage:   "Working directory for worker processes",
	}
	RunnerBinary = &cli.StringFlag{
		Name:    "runner-binary",
		Value:   "",
		EnvVars: prefixEnvVars("RUNNER_BINARY"),
		Usage:   "Path to the test-runner binary invoked once per file",
	}
	Concurrency = &cli.IntFlag{
		Name:    "concurrency",
		Value:   0,
		EnvVars: prefixEnvVars("CONCURRENCY"),
		Usage:   "Number of concurrent worker processes (0 = auto-determine)",
	}
	Timeout = &cli.DurationFlag{
		Name:    "timeout",
		Value:   0,
		EnvVars: prefixEnvVars("TIMEOUT"),
		Usage:   "Per-file timeout for worker processes (eg. '2m')",
	}
	FailFast = &cli.BoolFlag{
		Name:    "fail-fast",
		Value:   false,
		EnvVars: prefixEnvVars("FAIL_FAST"),
		Usage:   "Stop admitting new files after the first failing worker",
	}
	Coverage = &cli.BoolFlag{
		Name:    "coverage",
		Value:   false,
		EnvVars: prefixEnvVars("COVERAGE"),
		Usage:   "Collect and aggregate coverage from worker processes",
	}
	Tags = &cli.StringSliceFlag{
		Name:    "tags",
		EnvVars: prefixEnvVars("TAGS"),
		Usage:   "Tag filters passed through to the runner binary (repeatable)",
	}
	Filter = &cli.StringFlag{
		Name:    "filter",
		Value:   "",
		EnvVars: prefixEnvVars("FILTER"),
		Usage:   "Test-name filter passed through to the runner binary",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between test runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "",
		EnvVars: prefixEnvVars("LOGDIR"),
		Usage:   "Directory to store per-run worker output logs",
	}
	OutputLimit = &cli.IntFlag{
		Name:    "output-limit",
		Value:   0,
		EnvVars: prefixEnvVars("OUTPUT_LIMIT"),
		Usage:   "Maximum bytes of raw output retained per worker (0 = default)",
	}
	ShowProgress = &cli.BoolFlag{
		Name:    "show-progress",
		Value:   false,
		EnvVars: prefixEnvVars("SHOW_PROGRESS"),
		Usage:   "Log periodic progress updates during test execution",
	}
	ProgressInterval = &cli.DurationFlag{
		Name:    "progress-interval",
		Value:   30 * time.Second,
		EnvVars: prefixEnvVars("PROGRESS_INTERVAL"),
		Usage:   "Interval between progress updates when --show-progress is set",
	}
)

var requiredFlags = []cli.Flag{
	RunList,
}

var optionalFlags = []cli.Flag{
	WorkDir,
	RunnerBinary,
	Concurrency,
	Timeout,
	FailFast,
	Coverage,
	Tags,
	Filter,
	RunInterval,
	LogDir,
	OutputLimit,
	ShowProgress,
	ProgressInterval,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
