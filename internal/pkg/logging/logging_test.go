package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roackb2/snowdream/config"
	"github.com/roackb2/snowdream/internal/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("loud"))
}

func TestTextConsoleFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := logging.New(config.LogConfig{Level: "warn"}, &buf)
	defer closer.Close()

	logger.Info("Team: kickoff")
	logger.Warn("Team: stopped at round cap", "rounds", 3)
	out := buf.String()
	assert.NotContains(t, out, "kickoff")
	assert.Contains(t, out, "rounds=3")
}

func TestFileSinkWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "snowdream.log")
	logger, closer := logging.New(config.LogConfig{Level: "info", Format: "text", File: path, MaxSizeMB: 1}, &buf)
	logger.With("run_id", "r1").Info("Role: executing", "role", "Lily")
	require.NoError(t, closer.Close())

	assert.Contains(t, buf.String(), "role=Lily")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &record))
	assert.Equal(t, "Role: executing", record["msg"])
	assert.Equal(t, "r1", record["run_id"])
	assert.Equal(t, "Lily", record["role"])
}
