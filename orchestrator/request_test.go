package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestFileName(t *testing.T) {
	assert.Equal(t, "request_configure_pt_BR.json", RequestFileName(PhaseConfigure, "pt-BR"))
	assert.Equal(t, "request_execute_es_419.json", RequestFileName(PhaseExecute, "es-419"))
}

func TestRequestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := LaunchRequest{
		Phase:      PhaseExecute,
		Locale:     "fr-FR",
		Tutorial:   "TestTutorial",
		ResultPath: filepath.Join(dir, "result_fr_FR.json"),
		OutputDir:  dir,
	}

	path, err := WriteRequestFile(dir, want)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "request_execute_fr_FR.json"), path)

	got, err := ReadRequestFile(path)
	require.NoError(t, err)
	want.SchemaVersion = RequestSchemaVersion
	assert.Equal(t, want, *got)
}

func TestReadRequestFileRejectsBadRequests(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		errLike string
	}{
		{
			name:    "unsupported schema version",
			content: `{"schema_version": 2, "phase": "configure", "locale": "pt-BR"}`,
			errLike: "schema version",
		},
		{
			name:    "unknown phase",
			content: `{"schema_version": 1, "phase": "deploy", "locale": "pt-BR"}`,
			errLike: "phase",
		},
		{
			name:    "missing locale",
			content: `{"schema_version": 1, "phase": "execute"}`,
			errLike: "locale",
		},
		{
			name:    "not json",
			content: `--locale pt-BR`,
			errLike: "parsing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "req.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := ReadRequestFile(path)
			require.ErrorContains(t, err, tt.errLike)
		})
	}
}

func TestRemoveRequestFileToleratesAbsence(t *testing.T) {
	RemoveRequestFile(testLogger(), filepath.Join(t.TempDir(), "request_gone.json"))
}
