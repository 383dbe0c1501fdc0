package lat

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sliceworks/loc-acceptor/reporting"
	"github.com/sliceworks/loc-acceptor/types"
)

func sampleReport(statuses map[string]types.Status, order ...string) *types.Report {
	results := types.NewOrderedVerdicts()
	for _, locale := range order {
		v := types.Verdict{
			Language:      locale,
			Tutorial:      "TestTutorial",
			Status:        statuses[locale],
			ExecutionTime: 12.3,
		}
		if v.Status == types.StatusSuccess {
			v.AppliedLanguage = locale
		} else {
			v.Error = "Failed to set language. Return code: 1"
		}
		results.Add(locale, v)
	}
	return reporting.NewReportBuilder().Build("run-1", "TestTutorial", 42*time.Second, results)
}

// TestConsoleResultFormatter_FormatResults renders a mixed batch and checks
// the rows land in batch order with the totals footer.
func TestConsoleResultFormatter_FormatResults(t *testing.T) {
	report := sampleReport(map[string]types.Status{
		"pt-BR":  types.StatusSuccess,
		"es-419": types.StatusConfigError,
		"fr-FR":  types.StatusSuccess,
	}, "pt-BR", "es-419", "fr-FR")

	var buf bytes.Buffer
	formatter := &ConsoleResultFormatter{out: &buf}
	require.NoError(t, formatter.FormatResults(report))

	out := buf.String()
	assert.Contains(t, out, "Localization Acceptance Results")
	assert.Contains(t, out, "pt-BR")
	assert.Contains(t, out, "es-419")
	assert.Contains(t, out, "config_error")
	assert.Contains(t, out, "2/3 passed")
	assert.Contains(t, out, "success rate 66.7%")
	// The style must not re-case the totals footer.
	assert.NotContains(t, out, "2/3 PASSED")

	// Rows follow the requested locale order.
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("pt-BR")), bytes.Index(buf.Bytes(), []byte("es-419")))
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("es-419")), bytes.Index(buf.Bytes(), []byte("fr-FR")))
}

// TestConsoleResultFormatter_EmptyReport rendering an empty batch must not
// error or divide by zero.
func TestConsoleResultFormatter_EmptyReport(t *testing.T) {
	report := sampleReport(nil)

	var buf bytes.Buffer
	formatter := &ConsoleResultFormatter{out: &buf}
	require.NoError(t, formatter.FormatResults(report))

	assert.Contains(t, buf.String(), "0/0 passed")
	assert.Contains(t, buf.String(), "success rate 0.0%")
}

func TestGetResultString(t *testing.T) {
	assert.Equal(t, "✓ success", getResultString(types.StatusSuccess))
	assert.Equal(t, "✗ timeout", getResultString(types.StatusTimeout))
}

func TestBatchResultString(t *testing.T) {
	pass := sampleReport(map[string]types.Status{"pt-BR": types.StatusSuccess}, "pt-BR")
	assert.Equal(t, "pass", batchResultString(pass))

	fail := sampleReport(map[string]types.Status{"pt-BR": types.StatusTimeout}, "pt-BR")
	assert.Equal(t, "fail", batchResultString(fail))

	empty := sampleReport(nil)
	assert.Equal(t, "fail", batchResultString(empty), "an empty batch passed nothing")
}
