package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds the run logger from the log.level and log.format flag
// values. The returned logger is also installed as the slog default so
// package-level logging in the servers shares the same handler.
func NewLogger(out io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text", "":
		handler = slog.NewTextHandler(out, opts)
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
