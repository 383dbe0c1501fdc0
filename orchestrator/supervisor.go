package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sliceworks/loc-acceptor/types"
)

// Supervisor drives one target run to completion under a wall-clock budget.
// On expiry it escalates: terminate signal, bounded grace wait, forced kill.
type Supervisor struct {
	log      *slog.Logger
	launcher Launcher
	grace    time.Duration
	killWait time.Duration
}

// NewSupervisor creates a supervisor over the given launcher.
func NewSupervisor(log *slog.Logger, launcher Launcher) *Supervisor {
	return &Supervisor{
		log:      log,
		launcher: launcher,
		grace:    TerminateGracePeriod,
		killWait: KillWaitPeriod,
	}
}

type waitOutcome struct {
	code int
	err  error
}

// Run launches the target described by spec and blocks until it exits, its
// budget expires, or ctx is canceled. The returned ProcessRun carries the
// captured output even for killed runs; err is non-nil only for launch
// faults, wait faults and cancellation, never for timeouts.
func (s *Supervisor) Run(ctx context.Context, spec LaunchSpec, timeout time.Duration) (*types.ProcessRun, error) {
	proc, err := s.launcher.Launch(ctx, spec)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := proc.Close(); cerr != nil {
			s.log.Debug("Closing target run failed", "err", cerr)
		}
	}()

	run := &types.ProcessRun{
		Args:      append([]string{spec.Target}, spec.Args...),
		StartTime: time.Now(),
		Timeout:   timeout,
	}

	waitCh := make(chan waitOutcome, 1)
	go func() {
		code, werr := proc.Wait()
		waitCh <- waitOutcome{code: code, err: werr}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-waitCh:
		run.Duration = time.Since(run.StartTime)
		run.ExitCode = res.code
		run.Output = proc.Output()
		if res.err != nil {
			return run, fmt.Errorf("waiting for target: %w", res.err)
		}
		return run, nil

	case <-timer.C:
		s.log.Warn("Target exceeded its budget, stopping it", "timeout", timeout)
		run.TimedOut = true
		s.stop(proc, waitCh, run)
		run.Duration = time.Since(run.StartTime)
		run.Output = proc.Output()
		return run, nil

	case <-ctx.Done():
		s.log.Warn("Run canceled, stopping target")
		s.stop(proc, waitCh, run)
		run.Duration = time.Since(run.StartTime)
		run.Output = proc.Output()
		return run, ctx.Err()
	}
}

// stop escalates terminate, grace wait, kill. The wait after a kill is
// bounded; a process that survives it is abandoned rather than blocked on.
func (s *Supervisor) stop(proc Process, waitCh <-chan waitOutcome, run *types.ProcessRun) {
	if err := proc.Terminate(); err != nil {
		s.log.Debug("Terminate signal failed", "err", err)
	}
	select {
	case res := <-waitCh:
		run.ExitCode = res.code
		return
	case <-time.After(s.grace):
	}

	s.log.Warn("Target survived the grace period, killing it")
	if err := proc.Kill(); err != nil {
		s.log.Debug("Kill failed", "err", err)
	}
	run.Killed = true

	select {
	case res := <-waitCh:
		run.ExitCode = res.code
	case <-time.After(s.killWait):
		s.log.Error("Target still running after kill, abandoning it")
		run.ExitCode = -1
	}
}
