package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sliceworks/loc-acceptor/types"
)

func TestReadResultArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result_pt_BR.json")
	content := `{
  "language": "pt-BR",
  "tutorial": "TestTutorial",
  "status": "success",
  "applied_language": "pt-BR",
  "execution_time": 42.5,
  "return_code": 0
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	v, err := ReadResultArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, "pt-BR", v.Language)
	assert.Equal(t, types.StatusSuccess, v.Status)
	assert.Equal(t, "pt-BR", v.AppliedLanguage)
	assert.Equal(t, 42.5, v.ExecutionTime)
}

func TestReadResultArtifactMissing(t *testing.T) {
	_, err := ReadResultArtifact(filepath.Join(t.TempDir(), "result_missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadResultArtifactCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result_bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0644))

	_, err := ReadResultArtifact(path)
	require.ErrorContains(t, err, "parsing result artifact")
}

func TestReadResultArtifactUnknownStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result_bad_status.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"language":"pt-BR","status":"greenish"}`), 0644))

	_, err := ReadResultArtifact(path)
	require.ErrorContains(t, err, `unknown status "greenish"`)
}
