package reporting

import (
	"time"

	"github.com/sliceworks/loc-acceptor/types"
)

// File names the sinks write into the batch output directory.
const (
	ReportFileName  = "test_report.json"
	SummaryFileName = "summary.log"
)

// ReportSink persists a completed batch report.
type ReportSink interface {
	Write(report *types.Report) error
}

// ReportBuilder aggregates locale verdicts into a batch report.
type ReportBuilder struct {
	clock func() time.Time
}

// NewReportBuilder creates a report builder using wall-clock timestamps.
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{clock: time.Now}
}

// Build computes the summary statistics over results and assembles the
// report. The success rate is the exact share of successful locales in
// percent; rounding is left to the display layers. An empty batch has
// rate zero.
func (b *ReportBuilder) Build(runID, tutorial string, duration time.Duration, results *types.OrderedVerdicts) *types.Report {
	total := results.Len()
	successful := 0
	for _, locale := range results.Locales() {
		if v, ok := results.Get(locale); ok && v.Status == types.StatusSuccess {
			successful++
		}
	}

	rate := 0.0
	if total > 0 {
		rate = float64(successful) / float64(total) * 100
	}

	return &types.Report{
		Tutorial:  tutorial,
		Timestamp: b.clock().UTC(),
		RunID:     runID,
		Duration:  duration,
		Seconds:   duration.Seconds(),
		Summary: types.Summary{
			TotalTests:      total,
			SuccessfulTests: successful,
			FailedTests:     total - successful,
			SuccessRate:     rate,
		},
		Results: results,
	}
}

// StatusGlyph returns the marker used for a verdict in summaries and
// tables.
func StatusGlyph(status types.Status) string {
	if status == types.StatusSuccess {
		return "✓"
	}
	return "✗"
}
