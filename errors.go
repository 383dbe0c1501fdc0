package lat

import (
	"errors"
	"fmt"
)

// FatalError represents an unhandled driver fault that should lead to exit
// code 3. Examples include a missing target executable or an I/O failure
// outside the per-locale loop.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *FatalError) Unwrap() error {
	return e.Err
}

// NewFatalError creates a new FatalError
func NewFatalError(err error) *FatalError {
	return &FatalError{Err: err}
}

// IsFatalError checks if the error is or wraps a FatalError
func IsFatalError(err error) bool {
	var fatalErr *FatalError
	return err != nil && errors.As(err, &fatalErr)
}

// PartialFailureError reports a batch whose success rate reached 50% but not
// 100% (exit code 1).
type PartialFailureError struct {
	SuccessRate float64
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("partial failure: success rate %.1f%%", e.SuccessRate)
}

// NewPartialFailureError creates a new PartialFailureError
func NewPartialFailureError(rate float64) *PartialFailureError {
	return &PartialFailureError{SuccessRate: rate}
}

// IsPartialFailureError checks if the error is or wraps a PartialFailureError
func IsPartialFailureError(err error) bool {
	var partialErr *PartialFailureError
	return err != nil && errors.As(err, &partialErr)
}

// MajorityFailureError reports a batch whose success rate fell below 50%
// (exit code 2).
type MajorityFailureError struct {
	SuccessRate float64
}

func (e *MajorityFailureError) Error() string {
	return fmt.Sprintf("majority failure: success rate %.1f%%", e.SuccessRate)
}

// NewMajorityFailureError creates a new MajorityFailureError
func NewMajorityFailureError(rate float64) *MajorityFailureError {
	return &MajorityFailureError{SuccessRate: rate}
}

// IsMajorityFailureError checks if the error is or wraps a MajorityFailureError
func IsMajorityFailureError(err error) bool {
	var majorityErr *MajorityFailureError
	return err != nil && errors.As(err, &majorityErr)
}

// BatchOutcomeError converts a finished report's success rate into the typed
// error the exit handler maps to a process exit code. A fully successful
// batch returns nil; an empty batch counts as a majority failure since
// nothing succeeded.
func BatchOutcomeError(total int, rate float64) error {
	switch {
	case total > 0 && rate >= 100:
		return nil
	case rate >= 50:
		return NewPartialFailureError(rate)
	default:
		return NewMajorityFailureError(rate)
	}
}
