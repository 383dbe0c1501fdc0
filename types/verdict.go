package types

import (
	"strings"
	"time"
)

// Verdict captures the outcome of a single locale test job. Successful
// verdicts start from the result artifact the target application wrote and
// are merged with the supervision data (elapsed time, exit code, captured
// output); failed verdicts are synthesized by the orchestrator.
type Verdict struct {
	Language        string    `json:"language"`
	Tutorial        string    `json:"tutorial,omitempty"`
	Status          Status    `json:"status"`
	Timestamp       time.Time `json:"timestamp,omitzero"`
	AppliedLanguage string    `json:"applied_language,omitempty"` // echoed by the target on success
	ExecutionTime   float64   `json:"execution_time"`             // seconds
	ReturnCode      int       `json:"return_code"`
	Output          []string  `json:"output,omitempty"` // captured stdout lines
	Error           string    `json:"error,omitempty"`
}

// LocaleSlug converts a locale tag to its filesystem-safe form,
// e.g. "pt-BR" becomes "pt_BR".
func LocaleSlug(locale string) string {
	return strings.ReplaceAll(locale, "-", "_")
}

// ResultFileName returns the per-locale result artifact name the execute
// phase expects the target application to write.
func ResultFileName(locale string) string {
	return "result_" + LocaleSlug(locale) + ".json"
}

// ExecutionLogName returns the per-locale execution log file name.
func ExecutionLogName(locale string) string {
	return "test_" + LocaleSlug(locale) + ".log"
}

// ErrorLogName returns the per-locale error log file name.
func ErrorLogName(locale string) string {
	return "error_" + LocaleSlug(locale) + ".log"
}
