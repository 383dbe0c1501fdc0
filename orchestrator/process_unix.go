//go:build unix

package orchestrator

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup configures the command to run in its own process group so
// signals reach the target and any children it forked.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateProcessGroup sends SIGTERM to the entire process group.
func terminateProcessGroup(cmd *exec.Cmd) error {
	return signalProcessGroup(cmd, syscall.SIGTERM)
}

// killProcessGroup sends SIGKILL to the entire process group.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Kill()
	}
	return syscall.Kill(-pgid, syscall.SIGKILL)
}

func signalProcessGroup(cmd *exec.Cmd, sig os.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Signal(sig)
	}
	sigVal, ok := sig.(syscall.Signal)
	if !ok {
		return cmd.Process.Signal(sig)
	}
	return syscall.Kill(-pgid, sigVal)
}

// exitCodeFromError extracts the exit code from an exec.ExitError.
func exitCodeFromError(exitErr *exec.ExitError) (int, bool) {
	waitStatus, ok := exitErr.Sys().(syscall.WaitStatus)
	if ok {
		return waitStatus.ExitStatus(), true
	}
	return 0, false
}
