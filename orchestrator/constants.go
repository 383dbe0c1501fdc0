package orchestrator

import "time"

// Target invocation constants
const (
	// DefaultExecuteTimeout is the default budget for the execute phase
	DefaultExecuteTimeout = 300 * time.Second

	// DefaultConfigureTimeout is the fixed budget for the configure phase
	DefaultConfigureTimeout = 30 * time.Second

	// TerminateGracePeriod is how long a run gets between the terminate
	// signal and the forced kill
	TerminateGracePeriod = 2 * time.Second

	// KillWaitPeriod bounds the final wait after a forced kill; a process
	// that survives it is abandoned
	KillWaitPeriod = 5 * time.Second

	// Target application flags
	NoSplashFlag          = "--no-splash"
	RunRequestFlag        = "--run-request"
	NoMainWindowFlag      = "--no-main-window"
	DisableCLIModulesFlag = "--disable-cli-modules"

	// WindowsOS is the one platform where the headless flags are omitted;
	// its host cannot run the target without a main window
	WindowsOS = "windows"

	// MaxCapturedLines caps the per-run output buffer so a chatty target
	// cannot exhaust memory
	MaxCapturedLines = 10000
)
