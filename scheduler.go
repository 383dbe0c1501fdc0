package lat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// BatchScheduler schedules locale batch runs and retains the outcome of the
// most recent one.
type BatchScheduler interface {
	Start(ctx context.Context) error
	Stop() error
	RegisterCallback(func(ctx context.Context) error)
	LastOutcome() error
	WaitForShutdown(ctx context.Context) error
	Stopped() bool
}

// DefaultBatchScheduler implements the BatchScheduler interface. In run-once
// mode it runs a single batch synchronously; in continuous mode it runs one
// batch immediately and then re-runs on a ticker until stopped.
type DefaultBatchScheduler struct {
	interval time.Duration
	runOnce  bool
	logger   *slog.Logger
	callback func(ctx context.Context) error

	mu          sync.Mutex
	lastOutcome error

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewDefaultBatchScheduler creates a new DefaultBatchScheduler.
func NewDefaultBatchScheduler(interval time.Duration, runOnce bool, logger *slog.Logger) *DefaultBatchScheduler {
	return &DefaultBatchScheduler{
		interval: interval,
		runOnce:  runOnce,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// RegisterCallback registers the callback to be called when a batch should run.
func (s *DefaultBatchScheduler) RegisterCallback(callback func(ctx context.Context) error) {
	s.callback = callback
}

// Start starts the scheduler. In continuous mode a failed first batch aborts
// startup so misconfiguration surfaces before the service settles into its
// loop; later batch errors are logged and retained as the last outcome.
func (s *DefaultBatchScheduler) Start(ctx context.Context) error {
	if s.callback == nil {
		return errors.New("callback must be registered before starting scheduler")
	}

	s.done = make(chan struct{})
	s.running.Store(true)

	if s.runOnce {
		s.logger.Info("Starting scheduler in run-once mode")
		return s.runBatch(ctx)
	}

	s.logger.Info("Starting scheduler in continuous mode", "interval", s.interval)
	if err := s.runBatch(ctx); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Debug("Starting periodic batch runner goroutine", "interval", s.interval)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !s.running.Load() {
					s.logger.Debug("Service stopped, exiting periodic batch runner")
					return
				}
				s.logger.Info("Running periodic batch")
				if err := s.runBatch(ctx); err != nil {
					s.logger.Error("Error running periodic batch", "error", err)
				}

			case <-s.done:
				s.logger.Debug("Done signal received, stopping periodic batch runner")
				return

			case <-ctx.Done():
				s.logger.Debug("Context canceled, stopping periodic batch runner")
				s.running.Store(false)
				return
			}
		}
	}()

	return nil
}

// runBatch invokes the callback and records its outcome.
func (s *DefaultBatchScheduler) runBatch(ctx context.Context) error {
	err := s.callback(ctx)
	s.mu.Lock()
	s.lastOutcome = err
	s.mu.Unlock()
	return err
}

// LastOutcome returns the error of the most recent batch run; nil when it
// succeeded or no batch has run yet.
func (s *DefaultBatchScheduler) LastOutcome() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutcome
}

// Stop stops the scheduler. It is safe to call more than once.
func (s *DefaultBatchScheduler) Stop() error {
	if !s.running.Load() {
		s.logger.Debug("Scheduler already stopped, nothing to do")
		return nil
	}

	// Flip the running state first so a tick racing the close runs nothing.
	s.running.Store(false)

	s.logger.Debug("Sending done signal to goroutines")
	close(s.done)

	return nil
}

// Stopped returns true if the scheduler is stopped.
func (s *DefaultBatchScheduler) Stopped() bool {
	return !s.running.Load()
}

// WaitForShutdown blocks until all goroutines have terminated.
func (s *DefaultBatchScheduler) WaitForShutdown(ctx context.Context) error {
	s.logger.Debug("Waiting for all goroutines to terminate")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Debug("All goroutines terminated successfully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for goroutines to terminate", "error", ctx.Err())
		return ctx.Err()
	}
}
