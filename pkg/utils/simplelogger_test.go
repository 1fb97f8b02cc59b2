package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLog(t *testing.T) string {
	t.Helper()
	path := LogPath()
	require.NotEmpty(t, path)
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestLogger_WritesKeyValues(t *testing.T) {
	require.NoError(t, InitLogger(t.TempDir()))

	Info("prompt rendered", "placeholders", 2, "text", "two words", "dangling")

	out := readLog(t)
	assert.Contains(t, out, "INFO: Logger initialized")
	assert.Contains(t, out, `INFO: prompt rendered placeholders=2 text="two words"`)
	assert.NotContains(t, out, "dangling")
}

func TestLogger_LevelFilter(t *testing.T) {
	require.NoError(t, InitLogger(t.TempDir()))
	SetLevel(LevelWarn)

	Debug("hidden debug")
	Info("hidden info")
	Warn("shown warn")
	Error("shown error", "err", "boom")

	out := readLog(t)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN: shown warn")
	assert.Contains(t, out, "ERROR: shown error err=boom")
}

func TestLogger_NoopBeforeInit(t *testing.T) {
	Close()
	assert.Empty(t, LogPath())
	assert.NotPanics(t, func() { Debug("ignored", "k", "v") })
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "LEVEL(9)", Level(9).String())
}
