package lat

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// TestDefaultBatchScheduler_RunOnce tests the scheduler in run-once mode
func TestDefaultBatchScheduler_RunOnce(t *testing.T) {
	callCount := 0

	scheduler := NewDefaultBatchScheduler(100*time.Millisecond, true, testLogger())
	scheduler.RegisterCallback(func(context.Context) error {
		callCount++
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := scheduler.Start(ctx)
	require.NoError(t, err)

	// In run-once mode, the callback should be called exactly once immediately
	assert.Equal(t, 1, callCount, "Expected callback to be called exactly once")
	assert.NoError(t, scheduler.LastOutcome())

	// Wait a bit to make sure no more calls happen
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, callCount, "Expected callback to be called exactly once")
}

// TestDefaultBatchScheduler_Periodic tests the scheduler in periodic mode
func TestDefaultBatchScheduler_Periodic(t *testing.T) {
	callChan := make(chan struct{}, 10) // Buffer to avoid blocking
	expectedCalls := 4

	scheduler := NewDefaultBatchScheduler(10*time.Millisecond, false, testLogger())
	scheduler.RegisterCallback(func(context.Context) error {
		callChan <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := scheduler.Start(ctx)
	require.NoError(t, err)

	// Wait for exactly the expected number of calls
	for i := 0; i < expectedCalls; i++ {
		select {
		case <-callChan:
		case <-time.After(1 * time.Second):
			t.Fatalf("Timed out waiting for callback execution %d/%d", i+1, expectedCalls)
		}
	}

	err = scheduler.Stop()
	require.NoError(t, err)

	// Verify no more calls happen after stopping
	extraCallCount := 0
	select {
	case <-callChan:
		extraCallCount++
	case <-time.After(50 * time.Millisecond):
		// No more calls, which is expected
	}
	assert.Equal(t, 0, extraCallCount, "Expected no more calls after stopping")

	err = scheduler.WaitForShutdown(ctx)
	assert.NoError(t, err)
}

// TestDefaultBatchScheduler_CallbackError tests error handling in the callback
func TestDefaultBatchScheduler_CallbackError(t *testing.T) {
	expectedError := errors.New("test callback error")

	scheduler := NewDefaultBatchScheduler(100*time.Millisecond, true, testLogger())
	scheduler.RegisterCallback(func(context.Context) error {
		return expectedError
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// The error from the callback should be returned and retained
	err := scheduler.Start(ctx)
	assert.Error(t, err)
	assert.Equal(t, expectedError, err)
	assert.Equal(t, expectedError, scheduler.LastOutcome())
}

// TestDefaultBatchScheduler_PassesContext verifies the run context reaches
// the callback unchanged.
func TestDefaultBatchScheduler_PassesContext(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "batch")

	var got any
	scheduler := NewDefaultBatchScheduler(time.Minute, true, testLogger())
	scheduler.RegisterCallback(func(ctx context.Context) error {
		got = ctx.Value(ctxKey{})
		return nil
	})

	require.NoError(t, scheduler.Start(ctx))
	assert.Equal(t, "batch", got)
}

// TestDefaultBatchScheduler_NoCallback tests that an error is returned when no callback is registered
func TestDefaultBatchScheduler_NoCallback(t *testing.T) {
	scheduler := NewDefaultBatchScheduler(100*time.Millisecond, true, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := scheduler.Start(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "callback must be registered")
}

// TestDefaultBatchScheduler_AlreadyStopped tests that Stop() is idempotent
func TestDefaultBatchScheduler_AlreadyStopped(t *testing.T) {
	scheduler := NewDefaultBatchScheduler(100*time.Millisecond, true, testLogger())
	scheduler.RegisterCallback(func(context.Context) error {
		return nil
	})

	err := scheduler.Stop()
	assert.NoError(t, err, "Stop should be idempotent")

	err = scheduler.Stop()
	assert.NoError(t, err, "Second stop should also succeed")
}

// TestDefaultBatchScheduler_WaitForShutdown tests waiting for goroutines to exit
func TestDefaultBatchScheduler_WaitForShutdown(t *testing.T) {
	scheduler := NewDefaultBatchScheduler(100*time.Millisecond, false, testLogger())
	scheduler.RegisterCallback(func(context.Context) error {
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := scheduler.Start(ctx)
	require.NoError(t, err)

	err = scheduler.Stop()
	require.NoError(t, err)

	err = scheduler.WaitForShutdown(ctx)
	assert.NoError(t, err, "WaitForShutdown should succeed after stopping")
}
