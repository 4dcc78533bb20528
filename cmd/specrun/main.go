package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	specrun "github.com/spectral-sh/specrun"
	"github.com/spectral-sh/specrun/exitcodes"
	"github.com/spectral-sh/specrun/flags"
	"github.com/spectral-sh/specrun/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "specrun"
	app.Usage = "Parallel test-file execution orchestrator"
	app.Description = "specrun runs each test file in an isolated worker process and merges the results"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if specrun.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else {
				// Test failures and unspecified errors both exit 1.
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			}
		}
	}

	if err := app.Run(os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(cliCtx *cli.Context) error {
	handler := log.NewTerminalHandler(os.Stderr, true)
	logger := log.NewLogger(handler)
	log.SetDefault(logger)

	cfg, err := specrun.NewConfig(cliCtx, logger)
	if err != nil {
		return specrun.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}
	cfg.Log.Debug("Config", "config", cfg)

	ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Telemetry is best-effort; a missing collector must not block testing.
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(cliCtx.App.Name),
		otelconfig.WithServiceVersion(cliCtx.App.Version),
	)
	if err != nil {
		logger.Warn("Telemetry disabled", "error", err)
	} else {
		defer otelShutdown()
	}

	// Healthz and metrics servers
	svc := service.New()
	svc.Start(ctx)
	defer svc.Shutdown()

	done := make(chan error, 1)
	app, err := specrun.New(ctx, cfg, Version, func(err error) {
		done <- err
	})
	if err != nil {
		return specrun.NewRuntimeError(fmt.Errorf("failed to create service: %w", err))
	}

	if err := app.Start(ctx); err != nil {
		return err
	}

	if cfg.RunOnce {
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return nil
		}
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-done:
		if err != nil {
			return err
		}
	}
	return app.Stop(context.Background())
}
