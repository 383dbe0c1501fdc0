package orchestrator

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// writeScript drops an executable shell script into a temp dir and returns
// its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake targets are POSIX shell scripts")
	}
	path := filepath.Join(t.TempDir(), "target.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func newTestSupervisor() *Supervisor {
	s := NewSupervisor(testLogger(), NewHostLauncher(testLogger()))
	s.grace = 150 * time.Millisecond
	s.killWait = 2 * time.Second
	return s
}

func TestSupervisorCompletes(t *testing.T) {
	target := writeScript(t, `echo "first line"
echo "second line" >&2
exit 7`)

	run, err := newTestSupervisor().Run(context.Background(), LaunchSpec{Target: target}, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 7, run.ExitCode)
	assert.False(t, run.TimedOut)
	assert.False(t, run.Killed)
	assert.Greater(t, run.Duration, time.Duration(0))
	assert.Contains(t, run.Output, "first line")
	assert.Contains(t, run.Output, "second line")
}

func TestSupervisorTimeoutTerminates(t *testing.T) {
	target := writeScript(t, `echo "about to hang"
sleep 30`)

	start := time.Now()
	run, err := newTestSupervisor().Run(context.Background(), LaunchSpec{Target: target}, 200*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, run.TimedOut)
	assert.False(t, run.Killed, "a terminate-friendly target should not need a kill")
	assert.Contains(t, run.Output, "about to hang")
	assert.GreaterOrEqual(t, run.Duration, 200*time.Millisecond)
	assert.Less(t, time.Since(start), 5*time.Second, "termination should not wait out the full sleep")
}

func TestSupervisorEscalatesToKill(t *testing.T) {
	// The script ignores the terminate signal and keeps respawning short
	// sleeps, so only the kill can stop it.
	target := writeScript(t, `trap '' TERM
while true; do sleep 0.1; done`)

	start := time.Now()
	run, err := newTestSupervisor().Run(context.Background(), LaunchSpec{Target: target}, 200*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, run.TimedOut)
	assert.True(t, run.Killed)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSupervisorCanceledContext(t *testing.T) {
	target := writeScript(t, `sleep 30`)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	run, err := newTestSupervisor().Run(ctx, LaunchSpec{Target: target}, time.Minute)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, run)
	assert.False(t, run.TimedOut, "cancellation is not a budget expiry")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSupervisorObservesLines(t *testing.T) {
	target := writeScript(t, `echo one
echo two`)

	var seen []string
	_, err := newTestSupervisor().Run(context.Background(), LaunchSpec{
		Target: target,
		OnLine: func(line string) { seen = append(seen, line) },
	}, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, seen)
}
