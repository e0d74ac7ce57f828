package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/premigrate/internal/logger"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestSlogLogger_ModuleAndFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelDebug, time.UTC)

	log.Module("migration").Module("cases").
		With(logger.String("entity", "cases")).
		Info("entity migrated", logger.Int("migrated", 3), logger.Error(errors.New("boom")))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "migration.cases", lines[0]["module"])
	assert.Equal(t, "cases", lines[0]["entity"])
	assert.EqualValues(t, 3, lines[0]["migrated"])
	assert.Equal(t, "boom", lines[0]["error"])
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelWarn, time.UTC)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Trace("hidden")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestSlogLogger_TraceLevelName(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelTrace, time.UTC)

	log.Trace("sql statement")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "TRACE", lines[0]["level"])
}

func TestSlogLogger_WithContextAddsRunID(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelInfo, time.UTC)

	ctx := context.WithValue(context.Background(), logger.RunIDKey, "run-1")
	log.WithContext(ctx).Info("started")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "run-1", lines[0]["run_id"])
}

func TestNewSlogLoggerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migration.log")
	console := &bytes.Buffer{}

	log, err := logger.NewSlogLoggerWithFile(path, console, logger.LogLevelInfo, time.UTC)
	require.NoError(t, err)

	log.Info("hello")
	require.NoError(t, log.Flush())
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, console.String(), `"msg":"hello"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.LogLevelDebug, logger.ParseLevel("debug"))
	assert.Equal(t, logger.LogLevelInfo, logger.ParseLevel("verbose"))
	assert.Equal(t, logger.LogLevelInfo, logger.ParseLevel(""))
}
