package lat

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sliceworks/loc-acceptor/types"
)

// ResultFormatter is responsible for formatting and displaying batch results.
type ResultFormatter interface {
	FormatResults(report *types.Report) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	out io.Writer
}

// NewConsoleResultFormatter creates a formatter rendering to stdout.
func NewConsoleResultFormatter() *ConsoleResultFormatter {
	return &ConsoleResultFormatter{out: os.Stdout}
}

// FormatResults renders the batch as a table, one row per locale in batch
// order, with the style keyed to the overall outcome.
func (f *ConsoleResultFormatter) FormatResults(report *types.Report) error {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle(fmt.Sprintf("Localization Acceptance Results (%s)", formatDuration(report.Duration)))

	t.AppendHeader(table.Row{
		"Locale", "Status", "Duration", "Applied", "Return Code", "Error",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Return Code", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, locale := range report.Results.Locales() {
		v, _ := report.Results.Get(locale)
		t.AppendRow(table.Row{
			locale,
			getResultString(v.Status),
			formatSeconds(v.ExecutionTime),
			v.AppliedLanguage,
			v.ReturnCode,
			v.Error,
		})
	}

	// Style keyed to the exit-code bands: green all pass, yellow partial,
	// red majority failure.
	switch {
	case report.AllPassed():
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case report.Summary.SuccessRate >= 50:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}
	// The colored styles uppercase footers; the totals line should read as
	// written.
	t.Style().Format.Footer = text.FormatDefault

	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d/%d passed", report.Summary.SuccessfulTests, report.Summary.TotalTests),
		formatDuration(report.Duration),
		"",
		"",
		fmt.Sprintf("success rate %.1f%%", report.Summary.SuccessRate),
	})

	t.Render()
	return nil
}
