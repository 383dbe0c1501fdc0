package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	lat "github.com/sliceworks/loc-acceptor"
	"github.com/sliceworks/loc-acceptor/exitcodes"
	"github.com/sliceworks/loc-acceptor/flags"
	"github.com/sliceworks/loc-acceptor/logging"
	"github.com/sliceworks/loc-acceptor/service"
)

var (
	Version   = "v1.2.0"
	GitCommit = ""
	GitDate   = ""
)

// stopTimeout bounds the graceful shutdown of the scheduler and its
// goroutines after an interrupt.
const stopTimeout = 30 * time.Second

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		// The exit handler maps typed errors before this point; anything
		// that still escapes is a driver fault.
		fmt.Fprintf(os.Stderr, "loc-acceptor: %v\n", err)
		os.Exit(exitcodes.FatalError)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "loc-acceptor"
	app.Usage = "Localization Acceptance Tester"
	app.Description = "loc-acceptor drives a localized target application through a tutorial once per requested locale and reports per-locale verdicts"
	app.ArgsUsage = "<target-executable>"
	app.Flags = flags.Flags
	app.Commands = []*cli.Command{
		TranslationsCommand(),
	}
	app.Action = run
	app.ExitErrHandler = handleExit
	return app
}

// handleExit maps batch outcomes to the documented process exit codes:
// 1 for a partial failure, 2 for a majority failure, 3 for driver faults.
func handleExit(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		cli.HandleExitCoder(exitErr)
		return
	}
	switch {
	case lat.IsPartialFailureError(err):
		cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.PartialFailure))
	case lat.IsMajorityFailureError(err):
		cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.MajorityFailure))
	default:
		cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.FatalError))
	}
}

func run(cliCtx *cli.Context) error {
	log, err := logging.NewLogger(os.Stdout,
		cliCtx.String(flags.LogLevel.Name),
		cliCtx.String(flags.LogFormat.Name))
	if err != nil {
		return lat.NewFatalError(err)
	}

	cfg, err := lat.NewConfig(cliCtx, log)
	if err != nil {
		return lat.NewFatalError(fmt.Errorf("failed to create config: %w", err))
	}
	cfg.Log.Debug("Config loaded",
		"target", cfg.TargetPath,
		"tutorial", cfg.Tutorial,
		"languages", cfg.Languages,
		"output", cfg.OutputDir)

	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		shutdownTelemetry, terr := otelconfig.ConfigureOpenTelemetry(
			otelconfig.WithServiceName(cliCtx.App.Name),
			otelconfig.WithServiceVersion(cliCtx.App.Version),
		)
		if terr != nil {
			return lat.NewFatalError(fmt.Errorf("failed to set up telemetry: %w", terr))
		}
		defer shutdownTelemetry()
	}

	ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsEnabled {
		svc := service.New()
		svc.Start(ctx, service.Config{
			MetricsAddr: net.JoinHostPort(cfg.MetricsAddr, strconv.Itoa(cfg.MetricsPort)),
		})
		defer svc.Shutdown()
	}

	shutdown := make(chan error, 1)
	tester, err := lat.New(cfg, Version, func(cause error) {
		select {
		case shutdown <- cause:
		default:
		}
	})
	if err != nil {
		return lat.NewFatalError(fmt.Errorf("failed to create service: %w", err))
	}

	err = tester.Start(ctx)
	if cfg.RunOnce {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if serr := tester.Stop(stopCtx); serr != nil {
			log.Error("Error stopping service", "error", serr)
		}
		return err
	}
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		log.Info("Interrupt received, shutting down")
	case err = <-shutdown:
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if serr := tester.Stop(stopCtx); serr != nil {
		log.Error("Error stopping service", "error", serr)
	}
	if werr := tester.WaitForShutdown(stopCtx); werr != nil {
		log.Error("Error waiting for shutdown", "error", werr)
	}
	if err != nil {
		return err
	}
	// Periodic mode reports the outcome of the last completed batch.
	return tester.BatchOutcome()
}
