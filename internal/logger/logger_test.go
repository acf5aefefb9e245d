package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifier/internal/logger"
)

func TestNewFileLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, closer, err := logger.NewFileLogger(dir, logger.Options{Level: slog.LevelInfo})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("notification sent", "id", "n-1")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, logger.LogFileName))
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "notification sent", entry["msg"])
	assert.Equal(t, "n-1", entry["id"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.Options{Level: slog.LevelDebug, Format: "text"})

	log.Debug("sweep finished", "stale", 2)

	assert.Contains(t, buf.String(), "msg=\"sweep finished\"")
	assert.Contains(t, buf.String(), "stale=2")
}
