package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultConfig(t *testing.T) {
	t.Parallel()

	logger := New(nil)
	assert.NotNil(t, logger)
}

func TestNew_JSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&Config{
		Output: &buf,
		Level:  slog.LevelInfo,
	})

	logger.Info("test message", "key", "value")

	// Verify output is valid JSON
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	require.NoError(t, err)

	assert.Contains(t, logEntry, "ts")
	assert.Contains(t, logEntry, "level")
	assert.Contains(t, logEntry, "msg")
	assert.Equal(t, "test message", logEntry["msg"])
	assert.Equal(t, "value", logEntry["key"])
}

func TestNew_DebugLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&Config{
		Output: &buf,
		Debug:  true,
	})

	logger.Debug("debug message")

	assert.Contains(t, buf.String(), "debug message")
}

func TestNew_InfoLevel_HidesDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&Config{
		Output: &buf,
		Level:  slog.LevelInfo,
	})

	logger.Debug("debug message")

	assert.NotContains(t, buf.String(), "debug message")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("shouting"))
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "grepl.log")

	logger, closer, err := Open("info", path)
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	logger.Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestOpen_StderrWhenNoFile(t *testing.T) {
	logger, closer, err := Open("warn", "")
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.NotNil(t, logger)
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	logger := Discard()
	require.NotNil(t, logger)
	logger.Error("dropped")
}
