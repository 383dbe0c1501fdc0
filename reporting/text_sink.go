package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sliceworks/loc-acceptor/types"
)

// TextSink writes the plain-text batch summary next to the JSON report.
type TextSink struct {
	dir string
}

// NewTextSink creates a sink writing into dir.
func NewTextSink(dir string) *TextSink {
	return &TextSink{dir: dir}
}

// Path returns the file the sink writes.
func (s *TextSink) Path() string {
	return filepath.Join(s.dir, SummaryFileName)
}

// Write renders the report as summary.log.
func (s *TextSink) Write(report *types.Report) error {
	if err := os.WriteFile(s.Path(), []byte(FormatSummary(report)), 0644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// FormatSummary renders a report as the plain-text summary: one line per
// locale in batch order, then the totals.
func FormatSummary(report *types.Report) string {
	var b strings.Builder
	b.WriteString("Localization acceptance report\n")
	fmt.Fprintf(&b, "Tutorial: %s\n", report.Tutorial)
	if report.RunID != "" {
		fmt.Fprintf(&b, "Run: %s\n", report.RunID)
	}
	fmt.Fprintf(&b, "Date: %s\n", report.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Duration: %s\n", report.Duration.Round(10*time.Millisecond))

	b.WriteString("\nResults:\n")
	for _, locale := range report.Results.Locales() {
		v, _ := report.Results.Get(locale)
		fmt.Fprintf(&b, "  %s %-10s %-14s %8.2fs", StatusGlyph(v.Status), locale, v.Status, v.ExecutionTime)
		if v.Error != "" {
			b.WriteString("  " + v.Error)
		}
		b.WriteByte('\n')
	}

	sum := report.Summary
	fmt.Fprintf(&b, "\nTotal: %d  Passed: %d  Failed: %d\n", sum.TotalTests, sum.SuccessfulTests, sum.FailedTests)
	fmt.Fprintf(&b, "Success rate: %.1f%%\n", sum.SuccessRate)
	return b.String()
}

var _ ReportSink = (*JSONSink)(nil)
var _ ReportSink = (*TextSink)(nil)
