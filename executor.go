package lat

import (
	"context"
	"log/slog"
	"time"

	"github.com/sliceworks/loc-acceptor/orchestrator"
	"github.com/sliceworks/loc-acceptor/reporting"
	"github.com/sliceworks/loc-acceptor/types"
)

// BatchExecutor is responsible for running one locale batch.
type BatchExecutor interface {
	RunBatch(ctx context.Context, runID string) (*types.Report, error)
}

// DefaultBatchExecutor implements the BatchExecutor interface: it drives
// the orchestrator over the configured locales and aggregates the verdicts
// into a report.
type DefaultBatchExecutor struct {
	orchestrator *orchestrator.Orchestrator
	builder      *reporting.ReportBuilder
	tutorial     string
	locales      []string
	logger       *slog.Logger
}

// NewDefaultBatchExecutor creates a new DefaultBatchExecutor.
func NewDefaultBatchExecutor(orch *orchestrator.Orchestrator, tutorial string, locales []string, logger *slog.Logger) *DefaultBatchExecutor {
	return &DefaultBatchExecutor{
		orchestrator: orch,
		builder:      reporting.NewReportBuilder(),
		tutorial:     tutorial,
		locales:      locales,
		logger:       logger,
	}
}

// RunBatch runs all locales and returns the aggregated report. On
// cancellation the report covers the locales that completed; the error is
// returned alongside so the caller can still persist the partial report.
func (e *DefaultBatchExecutor) RunBatch(ctx context.Context, runID string) (*types.Report, error) {
	e.logger.Info("Running locale batch...", "run_id", runID, "locales", len(e.locales))

	start := time.Now()
	results, err := e.orchestrator.RunBatch(ctx, e.locales)
	if results == nil {
		return nil, err
	}

	report := e.builder.Build(runID, e.tutorial, time.Since(start), results)
	e.logger.Info("Batch completed",
		"run_id", runID,
		"total", report.Summary.TotalTests,
		"passed", report.Summary.SuccessfulTests,
		"failed", report.Summary.FailedTests,
		"success_rate", report.Summary.SuccessRate)
	return report, err
}
