package orchestrator

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sliceworks/loc-acceptor/types"
)

// Phase names the two target runs of a locale job.
type Phase string

const (
	PhaseConfigure Phase = "configure"
	PhaseExecute   Phase = "execute"
)

// RequestSchemaVersion pins the launch-request wire format.
const RequestSchemaVersion = 1

// LaunchRequest is the structured request handed to the target application
// through the run-request flag. It replaces generated script source; both
// sides can validate the contract instead of parsing templated code.
type LaunchRequest struct {
	SchemaVersion int    `json:"schema_version"`
	Phase         Phase  `json:"phase"`
	Locale        string `json:"locale"`
	Tutorial      string `json:"tutorial,omitempty"`
	ResultPath    string `json:"result_path,omitempty"`
	OutputDir     string `json:"output_dir"`
}

// RequestFileName returns the transient file name for a phase's request.
func RequestFileName(phase Phase, locale string) string {
	return fmt.Sprintf("request_%s_%s.json", phase, types.LocaleSlug(locale))
}

// WriteRequestFile persists req into dir and returns the file's path.
// The caller owns removal; request files are transient and must not outlive
// their phase.
func WriteRequestFile(dir string, req LaunchRequest) (string, error) {
	if req.SchemaVersion == 0 {
		req.SchemaVersion = RequestSchemaVersion
	}
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling launch request: %w", err)
	}
	path := filepath.Join(dir, RequestFileName(req.Phase, req.Locale))
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("writing launch request: %w", err)
	}
	return path, nil
}

// RemoveRequestFile deletes a transient request file, tolerating a file
// that is already gone.
func RemoveRequestFile(log *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("Failed to remove transient request file", "path", path, "err", err)
	}
}

// ReadRequestFile loads a launch request, rejecting unknown schema versions.
// The target side of the contract uses the same decoder.
func ReadRequestFile(path string) (*LaunchRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading launch request: %w", err)
	}
	var req LaunchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parsing launch request: %w", err)
	}
	if req.SchemaVersion != RequestSchemaVersion {
		return nil, fmt.Errorf("unsupported launch request schema version %d", req.SchemaVersion)
	}
	if req.Phase != PhaseConfigure && req.Phase != PhaseExecute {
		return nil, fmt.Errorf("unknown launch request phase %q", req.Phase)
	}
	if req.Locale == "" {
		return nil, fmt.Errorf("launch request has no locale")
	}
	return &req, nil
}
