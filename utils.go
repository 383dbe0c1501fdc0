package lat

import (
	"fmt"
	"time"

	"github.com/sliceworks/loc-acceptor/reporting"
	"github.com/sliceworks/loc-acceptor/types"
)

// getResultString returns a short marker plus status word for table cells.
func getResultString(status types.Status) string {
	return fmt.Sprintf("%s %s", reporting.StatusGlyph(status), status)
}

// batchResultString summarizes an entire batch as pass or fail.
func batchResultString(report *types.Report) string {
	if report.AllPassed() {
		return "pass"
	}
	return "fail"
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// formatSeconds renders a measured runtime the same way the tables do.
func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.1fs", seconds)
}
