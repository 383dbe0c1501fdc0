package types

import "time"

// LocaleJob describes one locale's test request: which locale to apply,
// which tutorial to play and where the run's artifacts go.
type LocaleJob struct {
	Locale           string
	Tutorial         string
	OutputDir        string
	ConfigureTimeout time.Duration
	ExecuteTimeout   time.Duration
}

// ProcessRun records a single supervised subprocess invocation.
// A job that reaches the execute phase produces exactly two of these.
type ProcessRun struct {
	Args      []string
	StartTime time.Time
	Duration  time.Duration
	Timeout   time.Duration
	Output    []string // captured stdout lines, ANSI-scrubbed
	ExitCode  int
	TimedOut  bool
	Killed    bool // forced kill after the grace period
}
