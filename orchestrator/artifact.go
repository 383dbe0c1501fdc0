package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sliceworks/loc-acceptor/types"
)

// ReadResultArtifact loads and validates the JSON verdict the target writes
// on completion. A missing file surfaces as os.ErrNotExist through the
// wrapped error so callers can tell absence from corruption.
func ReadResultArtifact(path string) (*types.Verdict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result artifact: %w", err)
	}

	var verdict types.Verdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		return nil, fmt.Errorf("parsing result artifact %s: %w", path, err)
	}
	if !verdict.Status.Valid() {
		return nil, fmt.Errorf("result artifact %s has unknown status %q", path, verdict.Status)
	}
	return &verdict, nil
}
