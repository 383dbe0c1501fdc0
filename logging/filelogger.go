package logging

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sliceworks/loc-acceptor/types"
)

// asyncQueueDepth bounds how many pending writes an AsyncFile buffers
// before Write blocks.
const asyncQueueDepth = 128

// errorLogTailLines caps how much captured output an error log repeats.
const errorLogTailLines = 50

// VerdictSink is an interface for different ways of consuming verdicts.
type VerdictSink interface {
	// Consume processes a single locale verdict
	Consume(v *types.Verdict) error
	// Complete is called when all verdicts have been consumed
	Complete() error
}

// FileLogger writes the per-locale artifacts of one batch into the output
// directory: an execution log for every locale and an error log for the
// failed ones.
type FileLogger struct {
	dir     string
	mu      sync.Mutex
	writers map[string]*AsyncFile
	sinks   []VerdictSink
}

// NewFileLogger creates a logger rooted at dir, creating it if needed.
func NewFileLogger(dir string) (*FileLogger, error) {
	if dir == "" {
		return nil, errors.New("output directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	l := &FileLogger{
		dir:     dir,
		writers: make(map[string]*AsyncFile),
	}
	l.sinks = append(l.sinks, &ExecutionLogSink{logger: l}, &ErrorLogSink{logger: l})
	return l, nil
}

// Dir returns the directory this logger writes into.
func (l *FileLogger) Dir() string {
	return l.dir
}

// LogVerdict feeds one verdict through all registered sinks.
func (l *FileLogger) LogVerdict(v *types.Verdict) error {
	for _, sink := range l.sinks {
		if err := sink.Consume(v); err != nil {
			return fmt.Errorf("sink %T: %w", sink, err)
		}
	}
	return nil
}

// Complete finalizes all sinks and flushes every file writer. The logger
// must not be used afterwards.
func (l *FileLogger) Complete() error {
	for _, sink := range l.sinks {
		if err := sink.Complete(); err != nil {
			return fmt.Errorf("completing sink %T: %w", sink, err)
		}
	}
	l.closeAllWriters()
	return nil
}

// getWriter returns the async writer for path, creating it on first use.
func (l *FileLogger) getWriter(path string) (*AsyncFile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w, ok := l.writers[path]; ok {
		return w, nil
	}
	w, err := NewAsyncFile(path)
	if err != nil {
		return nil, err
	}
	l.writers[path] = w
	return w, nil
}

func (l *FileLogger) closeAllWriters() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, w := range l.writers {
		_ = w.Close()
	}
	l.writers = make(map[string]*AsyncFile)
}

// ExecutionLogSink writes each locale's captured output to test_<locale>.log.
type ExecutionLogSink struct {
	logger *FileLogger
}

func (s *ExecutionLogSink) Consume(v *types.Verdict) error {
	w, err := s.logger.getWriter(filepath.Join(s.logger.dir, types.ExecutionLogName(v.Language)))
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== %s / %s ===\n", v.Language, v.Tutorial)
	fmt.Fprintf(&b, "Status: %s\n", v.Status)
	fmt.Fprintf(&b, "Return code: %d\n", v.ReturnCode)
	fmt.Fprintf(&b, "Execution time: %.2fs\n", v.ExecutionTime)
	if !v.Timestamp.IsZero() {
		fmt.Fprintf(&b, "Timestamp: %s\n", v.Timestamp.UTC().Format(time.RFC3339))
	}
	b.WriteString("--- output ---\n")
	for _, line := range v.Output {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return w.Write([]byte(b.String()))
}

func (s *ExecutionLogSink) Complete() error { return nil }

// ErrorLogSink writes error_<locale>.log for failed verdicts only, with the
// failure detail and the tail of the captured output.
type ErrorLogSink struct {
	logger *FileLogger
}

func (s *ErrorLogSink) Consume(v *types.Verdict) error {
	if !v.Status.IsFailure() {
		return nil
	}
	w, err := s.logger.getWriter(filepath.Join(s.logger.dir, types.ErrorLogName(v.Language)))
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Locale: %s\n", v.Language)
	fmt.Fprintf(&b, "Status: %s\n", v.Status)
	if v.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", v.Error)
	}
	if len(v.Output) > 0 {
		tail := v.Output
		if len(tail) > errorLogTailLines {
			fmt.Fprintf(&b, "--- output tail (last %d of %d lines) ---\n", errorLogTailLines, len(tail))
			tail = tail[len(tail)-errorLogTailLines:]
		} else {
			b.WriteString("--- output ---\n")
		}
		for _, line := range tail {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return w.Write([]byte(b.String()))
}

func (s *ErrorLogSink) Complete() error { return nil }

// AsyncFile provides non-blocking file writing through a background
// goroutine draining a bounded queue.
type AsyncFile struct {
	file    *os.File
	buf     *bufio.Writer
	queue   chan []byte
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewAsyncFile creates the file (truncating an existing one) and starts the
// background writer.
func NewAsyncFile(path string) (*AsyncFile, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating log file %s: %w", path, err)
	}

	af := &AsyncFile{
		file:  file,
		buf:   bufio.NewWriter(file),
		queue: make(chan []byte, asyncQueueDepth),
	}
	af.wg.Add(1)
	go af.drain()
	return af, nil
}

// Write queues data for the background writer. The data is copied, so the
// caller may reuse the slice.
func (af *AsyncFile) Write(data []byte) error {
	af.mu.Lock()
	defer af.mu.Unlock()

	if af.stopped {
		return errors.New("async file is closed")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	af.queue <- buf
	return nil
}

func (af *AsyncFile) drain() {
	defer af.wg.Done()
	for data := range af.queue {
		if _, err := af.buf.Write(data); err != nil {
			fmt.Fprintf(os.Stderr, "error writing to %s: %v\n", af.file.Name(), err)
		}
	}
}

// Close stops the writer, waits for the queue to drain and flushes the file.
func (af *AsyncFile) Close() error {
	af.mu.Lock()
	if !af.stopped {
		af.stopped = true
		close(af.queue)
	}
	af.mu.Unlock()

	af.wg.Wait()
	ferr := af.buf.Flush()
	if cerr := af.file.Close(); ferr == nil {
		ferr = cerr
	}
	return ferr
}
