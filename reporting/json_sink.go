package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sliceworks/loc-acceptor/types"
)

// JSONSink persists the consolidated report as test_report.json in the
// batch output directory.
type JSONSink struct {
	dir string
}

// NewJSONSink creates a sink writing into dir.
func NewJSONSink(dir string) *JSONSink {
	return &JSONSink{dir: dir}
}

// Path returns the file the sink writes.
func (s *JSONSink) Path() string {
	return filepath.Join(s.dir, ReportFileName)
}

// Write marshals the report pretty-printed and replaces any report from a
// previous batch.
func (s *JSONSink) Write(report *types.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(s.Path(), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
