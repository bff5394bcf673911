package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/thermalnetwork/internal/config"
	"github.com/ajitpratap0/thermalnetwork/internal/logging"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("whatever"))
}

func TestJSONFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := logging.New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	defer func() { _ = closer.Close() }()

	logger.Debug("hidden")
	logger.Info("sized", "ghe", "g1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "sized", rec["msg"])
	assert.Equal(t, "g1", rec["ghe"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := logging.New(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)
	logger.Debug("walk", "nodes", 3)
	assert.Contains(t, buf.String(), "msg=walk")
	assert.Contains(t, buf.String(), "nodes=3")
}

func TestRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	var buf bytes.Buffer
	logger, closer := logging.New(config.LoggingConfig{
		Level: "info", Format: "text", File: path, MaxSizeMB: 1, MaxBackups: 1,
	}, &buf)
	logger.Info("to both")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}
