package lat

import (
	"github.com/sliceworks/loc-acceptor/metrics"
	"github.com/sliceworks/loc-acceptor/types"
)

// MetricsReporter is responsible for reporting metrics from batch results.
type MetricsReporter interface {
	ReportResults(runID string, report *types.Report)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults reports the batch results to metrics systems.
func (r *DefaultMetricsReporter) ReportResults(runID string, report *types.Report) {
	for _, locale := range report.Results.Locales() {
		v, ok := report.Results.Get(locale)
		if !ok {
			continue
		}
		metrics.RecordVerdict(report.Tutorial, runID, locale, v.Status)
	}

	metrics.RecordBatch(
		report.Tutorial,
		runID,
		batchResultString(report),
		report.Summary,
		report.Duration,
	)
}
