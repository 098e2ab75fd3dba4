package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRotatingWriterRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matcher.log")
	w, err := NewRotatingWriter(path, 16)
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)
	_, err = w.Write([]byte("abcdefghij"))
	require.NoError(t, err)

	backup, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdefghij", string(backup))

	_, err = w.Write([]byte("next"))
	require.NoError(t, err)
	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "next", string(current))
}

func TestRotatingWriterTruncatesOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matcher.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0644))

	w, err := NewRotatingWriter(path, 32)
	require.NoError(t, err)
	defer w.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestSetupWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matcher.log")
	logger, w, err := Setup(path, "warn")
	require.NoError(t, err)
	defer w.Close()

	logger.Info("dropped")
	logger.Warn("kept", zap.Int64("run_id", 7))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, float64(7), entry["run_id"])
}

func TestSetupBadPath(t *testing.T) {
	_, _, err := Setup(filepath.Join(t.TempDir(), "missing", "matcher.log"), "info")
	assert.Error(t, err)
}
