package lat

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sliceworks/loc-acceptor/orchestrator"
	"github.com/sliceworks/loc-acceptor/types"
)

// writeScriptTarget writes a fake imaging application whose configure phase
// always persists the preference and whose execute phase runs body.
func writeScriptTarget(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake targets are POSIX shell scripts")
	}
	script := `#!/bin/sh
req=""
prev=""
for a in "$@"; do
  if [ "$prev" = "--run-request" ]; then req="$a"; fi
  prev="$a"
done
phase=$(sed -n 's/.*"phase": "\([a-z]*\)".*/\1/p' "$req")
locale=$(sed -n 's/.*"locale": "\([^"]*\)".*/\1/p' "$req")
res=$(sed -n 's/.*"result_path": "\([^"]*\)".*/\1/p' "$req")
if [ "$phase" = "configure" ]; then
  echo "Language preference saved for $locale"
  exit 0
fi
` + body + "\n"
	path := filepath.Join(t.TempDir(), "imaging-app")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func newScriptedExecutor(t *testing.T, body string, locales []string) *DefaultBatchExecutor {
	t.Helper()
	orch, err := orchestrator.NewOrchestrator(orchestrator.Config{
		Log:        testLogger(),
		TargetPath: writeScriptTarget(t, body),
		Tutorial:   "TestTutorial",
		OutputDir:  t.TempDir(),
	})
	require.NoError(t, err)
	return NewDefaultBatchExecutor(orch, "TestTutorial", locales, testLogger())
}

func TestDefaultBatchExecutor_RunBatch(t *testing.T) {
	executor := newScriptedExecutor(t, `case "$locale" in
  pt-BR) printf '{"language":"%s","status":"success","applied_language":"%s"}\n' "$locale" "$locale" > "$res"; exit 0 ;;
  *) exit 1 ;;
esac`, []string{"pt-BR", "es-419"})

	report, err := executor.RunBatch(context.Background(), "run-1")
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "TestTutorial", report.Tutorial)
	assert.Equal(t, 2, report.Summary.TotalTests)
	assert.Equal(t, 1, report.Summary.SuccessfulTests)
	assert.Equal(t, 1, report.Summary.FailedTests)
	assert.Equal(t, 50.0, report.Summary.SuccessRate)

	// One verdict per requested locale, in request order.
	assert.Equal(t, []string{"pt-BR", "es-419"}, report.Results.Locales())
	ptBR, ok := report.Results.Get("pt-BR")
	require.True(t, ok)
	assert.Equal(t, types.StatusSuccess, ptBR.Status)
	es419, ok := report.Results.Get("es-419")
	require.True(t, ok)
	assert.Equal(t, types.StatusExecError, es419.Status)
}

func TestDefaultBatchExecutor_EmptyLocaleList(t *testing.T) {
	executor := newScriptedExecutor(t, `exit 0`, nil)

	report, err := executor.RunBatch(context.Background(), "run-empty")
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 0, report.Summary.TotalTests)
	assert.Equal(t, 0.0, report.Summary.SuccessRate, "an empty batch must not divide by zero")
	assert.Empty(t, report.Results.Locales())
}

func TestDefaultBatchExecutor_CanceledContext(t *testing.T) {
	executor := newScriptedExecutor(t, `exit 0`, []string{"pt-BR", "fr-FR"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := executor.RunBatch(ctx, "run-canceled")
	require.Error(t, err)
	require.NotNil(t, report, "the partial report is still returned for persistence")
	assert.Empty(t, report.Results.Locales())
}
