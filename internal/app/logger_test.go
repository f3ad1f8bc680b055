package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("entity", "clientes"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "clientes", line["entity"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestTextLoggerByDefault(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "pretty", slog.LevelInfo).Info("ready")
	assert.Contains(t, buf.String(), "msg=ready")
}

func TestNewLoggerWritesRotatingFile(t *testing.T) {
	path := t.TempDir() + "/cadastro.log"
	logger := NewLogger(&Config{LogFormat: "json", LogLevel: "info", LogFile: path})
	logger.Info("to file")
	assert.FileExists(t, path)
}
