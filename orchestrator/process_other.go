//go:build !unix

package orchestrator

import (
	"os/exec"
)

// setProcessGroup is a no-op on non-Unix platforms.
func setProcessGroup(cmd *exec.Cmd) {
	// No process group support on this platform
}

// terminateProcessGroup signals the process directly on non-Unix platforms.
func terminateProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// killProcessGroup kills the process directly on non-Unix platforms.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// exitCodeFromError returns false on non-Unix platforms as WaitStatus is not
// available.
func exitCodeFromError(exitErr *exec.ExitError) (int, bool) {
	return 0, false
}
