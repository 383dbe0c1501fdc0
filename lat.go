package lat

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/sliceworks/loc-acceptor/exitcodes"
	"github.com/sliceworks/loc-acceptor/logging"
	"github.com/sliceworks/loc-acceptor/orchestrator"
	"github.com/sliceworks/loc-acceptor/registry"
	"github.com/sliceworks/loc-acceptor/reporting"
	"github.com/sliceworks/loc-acceptor/types"
)

// lat is a Localization Acceptance Tester that runs locale batches against
// a target application.
type lat struct {
	config  *Config
	version string

	registry  *registry.Registry
	executor  BatchExecutor
	formatter ResultFormatter
	reporter  MetricsReporter
	scheduler BatchScheduler

	jsonSink *reporting.JSONSink
	textSink *reporting.TextSink

	report *types.Report // last completed batch

	shutdownCallback func(error) // Callback to signal application shutdown
}

// New assembles the service from the configuration: plan registry,
// orchestrator, batch executor, scheduler and the report sinks.
func New(config *Config, version string, shutdownCallback func(error)) (*lat, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating service with config",
		"target", config.TargetPath,
		"plan", config.PlanPath,
		"outputDir", config.OutputDir,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	var reg *registry.Registry
	if config.PlanPath != "" {
		var err error
		reg, err = registry.NewRegistry(registry.Config{
			Log:      config.Log,
			PlanFile: config.PlanPath,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create registry: %w", err)
		}
	}

	tutorial, locales, overrides := reg.Resolve(registry.Defaults{
		Tutorial:     config.Tutorial,
		TutorialSet:  config.TutorialSet,
		Languages:    config.Languages,
		LanguagesSet: config.LanguagesSet,
		Timeout:      config.ExecuteTimeout,
		TimeoutSet:   config.TimeoutSet,
	})
	if len(locales) == 0 {
		return nil, errors.New("no locales to test after merging flags and plan")
	}

	var launcher orchestrator.Launcher
	if config.ContainerImage != "" {
		launcher = orchestrator.NewContainerLauncher(config.Log, config.ContainerImage)
	}

	orch, err := orchestrator.NewOrchestrator(orchestrator.Config{
		Log:              config.Log,
		TargetPath:       config.TargetPath,
		Tutorial:         tutorial,
		OutputDir:        config.OutputDir,
		ConfigureTimeout: config.ConfigureTimeout,
		ExecuteTimeout:   config.ExecuteTimeout,
		TimeoutOverrides: overrides,
		Launcher:         launcher,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	config.Log.Info("lat.New: created registry and orchestrator", "tutorial", tutorial, "locales", locales)

	n := &lat{
		config:           config,
		version:          version,
		registry:         reg,
		executor:         NewDefaultBatchExecutor(orch, tutorial, locales, config.Log),
		formatter:        NewConsoleResultFormatter(),
		reporter:         NewDefaultMetricsReporter(),
		scheduler:        NewDefaultBatchScheduler(config.RunInterval, config.RunOnce, config.Log),
		jsonSink:         reporting.NewJSONSink(config.OutputDir),
		textSink:         reporting.NewTextSink(config.OutputDir),
		shutdownCallback: shutdownCallback,
	}
	n.scheduler.RegisterCallback(n.runBatch)
	return n, nil
}

// Start runs the batch immediately and, in continuous mode, keeps re-running
// it at the configured interval.
func (n *lat) Start(ctx context.Context) error {
	// A panic escaping the batch driver is an unhandled fault and must not
	// masquerade as a test failure.
	defer func() {
		if r := recover(); r != nil {
			n.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.FatalError)
		}
	}()

	if n.config.RunOnce {
		n.config.Log.Info("Starting loc-acceptor in run-once mode", "version", n.version)
	} else {
		n.config.Log.Info("Starting loc-acceptor in continuous mode", "version", n.version, "interval", n.config.RunInterval)
	}

	if err := n.scheduler.Start(ctx); err != nil {
		n.config.Log.Error("Runtime error running batch", "error", err)
		return NewFatalError(err)
	}

	if n.config.RunOnce {
		n.config.Log.Info("Batch completed, exiting (run-once mode)")
		if outcome := n.BatchOutcome(); outcome != nil {
			return outcome
		}

		// Only needed in run-once mode when every locale passed.
		go func() {
			n.shutdownCallback(nil)
		}()
		return nil
	}

	n.config.Log.Debug("loc-acceptor started successfully")
	return nil
}

// runBatch runs one batch and processes the results.
func (n *lat) runBatch(ctx context.Context) error {
	runID := uuid.New().String()

	report, err := n.executor.RunBatch(ctx, runID)
	if report == nil {
		return err
	}
	n.report = report

	if perr := n.persistArtifacts(report); perr != nil {
		return perr
	}

	if ferr := n.formatter.FormatResults(report); ferr != nil {
		n.config.Log.Error("Error rendering results", "error", ferr)
	}
	n.reporter.ReportResults(runID, report)

	n.config.Log.Info("Batch run completed",
		"run_id", runID,
		"result", batchResultString(report),
		"success_rate", report.Summary.SuccessRate)
	return err
}

// persistArtifacts writes the per-locale logs, the consolidated JSON report
// and the text summary for one batch.
func (n *lat) persistArtifacts(report *types.Report) error {
	fileLogger, err := logging.NewFileLogger(n.config.OutputDir)
	if err != nil {
		return fmt.Errorf("creating file logger: %w", err)
	}
	for _, locale := range report.Results.Locales() {
		v, ok := report.Results.Get(locale)
		if !ok {
			continue
		}
		if err := fileLogger.LogVerdict(&v); err != nil {
			return fmt.Errorf("writing locale logs: %w", err)
		}
	}
	if err := fileLogger.Complete(); err != nil {
		return fmt.Errorf("flushing locale logs: %w", err)
	}

	if err := n.jsonSink.Write(report); err != nil {
		return err
	}
	if err := n.textSink.Write(report); err != nil {
		return err
	}
	n.config.Log.Info("Artifacts persisted", "report", n.jsonSink.Path(), "summary", n.textSink.Path())
	return nil
}

// BatchOutcome converts the last completed batch into the service outcome:
// nil when every locale passed, otherwise the error carrying the exit code
// band for the achieved success rate. When no batch produced a report, the
// scheduler's last run error is surfaced as the fatal cause.
func (n *lat) BatchOutcome() error {
	if n.report == nil {
		if err := n.scheduler.LastOutcome(); err != nil {
			return NewFatalError(err)
		}
		return NewFatalError(errors.New("no batch has completed"))
	}
	return BatchOutcomeError(n.report.Summary.TotalTests, n.report.Summary.SuccessRate)
}

// Report returns the report of the last completed batch.
func (n *lat) Report() *types.Report {
	return n.report
}

// Stop stops the loc-acceptor service.
func (n *lat) Stop(ctx context.Context) error {
	n.config.Log.Info("Stopping loc-acceptor")

	if n.scheduler.Stopped() {
		n.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}

	if err := n.scheduler.Stop(); err != nil {
		return err
	}

	n.config.Log.Info("loc-acceptor stopped successfully")
	return nil
}

// Stopped returns true if the loc-acceptor service is stopped.
func (n *lat) Stopped() bool {
	return n.scheduler.Stopped()
}

// WaitForShutdown blocks until all goroutines have terminated.
// This is useful in tests to ensure complete cleanup before moving to the next test.
func (n *lat) WaitForShutdown(ctx context.Context) error {
	return n.scheduler.WaitForShutdown(ctx)
}
