package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"warning alias", "warning", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"mixed case", "DEBUG", slog.LevelDebug},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFromString(tt.input))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, 10, cfg.MaxSizeMB)
	assert.Equal(t, 5, cfg.MaxFiles)
	assert.True(t, cfg.WriteToStderr)
	assert.Contains(t, cfg.FilePath, "dirsentry.log")
}

func TestDebugConfig(t *testing.T) {
	cfg := DebugConfig()
	assert.Equal(t, "debug", cfg.Level)
}

func TestRotatingWriter_WritesToFile(t *testing.T) {
	// Given: a rotating writer in a temp dir
	dir := t.TempDir()
	path := filepath.Join(dir, "dirsentry.log")
	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	defer w.Close()

	// When: writing a line
	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())

	// Then: the line lands in the file
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestRotatingWriter_Rotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dirsentry.log")

	// Tiny cap forces rotation quickly: maxSizeMB of 0 means any second
	// write exceeds the cap.
	w, err := NewRotatingWriter(path, 0, 2)
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		_, err = w.Write([]byte(fmt.Sprintf("line %d\n", i)))
		require.NoError(t, err)
	}

	// Then: rotated files exist but never more than maxFiles
	matches, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
	assert.LessOrEqual(t, len(matches), 2)
}

func TestRotatingWriter_ReopensExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dirsentry.log")

	w1, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	_, err = w1.Write([]byte("first\n"))
	require.NoError(t, err)
	require.NoError(t, w1.Close())

	// Reopening appends rather than truncating
	w2, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	_, err = w2.Write([]byte("second\n"))
	require.NoError(t, err)
	require.NoError(t, w2.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "first\n"))
	assert.Contains(t, string(data), "second\n")
}

func TestSetup_CreatesLoggerAndWritesJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	logger, cleanup, err := Setup(Config{
		Level:         "debug",
		FilePath:      path,
		MaxSizeMB:     1,
		MaxFiles:      2,
		WriteToStderr: false,
	})
	require.NoError(t, err)

	logger.Info("watcher started", slog.String("root", "/tmp/x"))
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"watcher started"`)
	assert.Contains(t, string(data), `"root":"/tmp/x"`)
}
