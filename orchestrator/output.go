package orchestrator

import (
	"bufio"
	"io"
	"sync"

	"github.com/acarl005/stripansi"
)

// outputCapture accumulates scrubbed output lines from a target run. The
// reader goroutine appends while the supervisor may snapshot after a kill,
// so access is guarded; a timed-out target can keep writing until the kill
// lands.
type outputCapture struct {
	mu        sync.Mutex
	lines     []string
	truncated bool
}

func newOutputCapture() *outputCapture {
	return &outputCapture{}
}

// Append records one line, dropping everything past MaxCapturedLines.
func (c *outputCapture) Append(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) >= MaxCapturedLines {
		c.truncated = true
		return
	}
	c.lines = append(c.lines, line)
}

// Lines returns a copy of the captured lines.
func (c *outputCapture) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// Truncated reports whether the capture hit its line cap.
func (c *outputCapture) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}

// captureLines drains r line by line into c until EOF, stripping ANSI
// escapes so markers and logs stay scannable. onLine, when set, sees every
// scrubbed line as it arrives.
func captureLines(r io.Reader, c *outputCapture, onLine func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := stripansi.Strip(scanner.Text())
		c.Append(line)
		if onLine != nil {
			onLine(line)
		}
	}
	return scanner.Err()
}
