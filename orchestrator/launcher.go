package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// LaunchSpec describes one target invocation.
type LaunchSpec struct {
	Target    string       // executable path (host) or path inside the container image
	Args      []string     // flags passed to the target
	OutputDir string       // artifact directory; container launches mount it
	OnLine    func(string) // optional observer for each captured line
}

// Launcher starts target processes for the supervisor. Implementations
// differ in where the process runs, not in its verdict semantics.
type Launcher interface {
	Launch(ctx context.Context, spec LaunchSpec) (Process, error)
}

// Process is one started target run.
type Process interface {
	// Wait blocks until the process exits and returns its exit code.
	Wait() (int, error)
	// Terminate asks the process to stop gracefully.
	Terminate() error
	// Kill stops the process immediately.
	Kill() error
	// Output returns the lines captured so far.
	Output() []string
	// Close releases the run's resources.
	Close() error
}

// HostLauncher runs the target directly on this machine.
type HostLauncher struct {
	log *slog.Logger
}

// NewHostLauncher creates a launcher for host-executed targets.
func NewHostLauncher(log *slog.Logger) *HostLauncher {
	return &HostLauncher{log: log}
}

// Launch starts the target in its own process group with stdout and stderr
// interleaved into a single captured stream. Cancellation is handled by the
// supervisor's terminate/kill escalation, not by exec's context kill.
func (l *HostLauncher) Launch(ctx context.Context, spec LaunchSpec) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmd := exec.Command(spec.Target, spec.Args...)
	setProcessGroup(cmd)

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("starting target %s: %w", spec.Target, err)
	}
	// The child holds its own copy of the write end; closing ours lets the
	// reader see EOF once the process group is done writing.
	pw.Close()

	p := &hostProcess{
		cmd:        cmd,
		stdout:     pr,
		capture:    newOutputCapture(),
		readerDone: make(chan struct{}),
	}
	go func() {
		defer close(p.readerDone)
		if err := captureLines(pr, p.capture, spec.OnLine); err != nil {
			l.log.Debug("Output capture ended with error", "target", spec.Target, "err", err)
		}
	}()

	l.log.Debug("Target started", "target", spec.Target, "args", spec.Args, "pid", cmd.Process.Pid)
	return p, nil
}

type hostProcess struct {
	cmd        *exec.Cmd
	stdout     io.ReadCloser
	capture    *outputCapture
	readerDone chan struct{}
}

// Wait blocks for process exit, then for the output reader, so the captured
// lines are complete when it returns.
func (p *hostProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	<-p.readerDone
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code, ok := exitCodeFromError(exitErr); ok {
			return code, nil
		}
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func (p *hostProcess) Terminate() error {
	return terminateProcessGroup(p.cmd)
}

func (p *hostProcess) Kill() error {
	return killProcessGroup(p.cmd)
}

func (p *hostProcess) Output() []string {
	return p.capture.Lines()
}

func (p *hostProcess) Close() error {
	return p.stdout.Close()
}
