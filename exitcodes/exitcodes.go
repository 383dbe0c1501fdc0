// Package exitcodes defines the standard exit codes used by loc-acceptor.
package exitcodes

// Exit code constants used by loc-acceptor
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when every requested locale passed
// * PartialFailure (1): Used when the success rate is at least 50% but below 100%
// * MajorityFailure (2): Used when the success rate is below 50%
// * FatalError (3): Used when an unhandled fault aborts the driver itself
const (
	Success         = 0 // All locales pass
	PartialFailure  = 1 // Success rate >= 50% and < 100%
	MajorityFailure = 2 // Success rate < 50%
	FatalError      = 3 // Unhandled driver fault
)
