package types

// Status represents the possible outcomes of a locale test job
type Status string

const (
	StatusSuccess     Status = "success"
	StatusConfigError Status = "config_error"
	StatusExecError   Status = "exec_error"
	StatusTimeout     Status = "timeout"
	StatusException   Status = "exception"
)

// Valid reports whether s is one of the five verdict statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusSuccess, StatusConfigError, StatusExecError, StatusTimeout, StatusException:
		return true
	}
	return false
}

// IsFailure reports whether s counts against the batch success rate.
// Any status other than success is a failure.
func (s Status) IsFailure() bool {
	return s != StatusSuccess
}

// JobState tracks a locale job through its lifecycle. Terminal outcomes are
// carried by the Verdict's Status, not by JobState.
type JobState string

const (
	JobStatePending      JobState = "pending"
	JobStateConfiguring  JobState = "configuring"
	JobStateConfigured   JobState = "configured"
	JobStateConfigFailed JobState = "config_failed"
	JobStateExecuting    JobState = "executing"
	JobStateCompleted    JobState = "completed"
)
