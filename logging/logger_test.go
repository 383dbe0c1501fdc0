package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "warn", "text")
	require.NoError(t, err)

	log.Info("below threshold")
	log.Warn("at threshold")

	out := buf.String()
	assert.NotContains(t, out, "below threshold")
	assert.Contains(t, out, "at threshold")
}

func TestNewLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "info", "json")
	require.NoError(t, err)

	log.Info("batch started", "locales", 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "batch started", record["msg"])
	assert.Equal(t, float64(3), record["locales"])
}

func TestNewLoggerRejectsUnknownSettings(t *testing.T) {
	var buf bytes.Buffer

	_, err := NewLogger(&buf, "verbose", "text")
	require.ErrorContains(t, err, "unknown log level")

	_, err = NewLogger(&buf, "info", "xml")
	require.ErrorContains(t, err, "unknown log format")
}
