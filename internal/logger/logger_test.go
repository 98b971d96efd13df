package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, closeFn, err := NewLogger(Config{Dir: dir, Debug: true})
	require.NoError(t, err)

	log.Debug("generation finished", zap.String("className", "UsersApiTest"))
	require.NoError(t, closeFn())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "api-test-generator_"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"generation finished"`)
	assert.Contains(t, string(data), `"className":"UsersApiTest"`)
}

func TestNewLoggerInfoLevelDropsDebug(t *testing.T) {
	dir := t.TempDir()

	log, closeFn, err := NewLogger(Config{Dir: dir})
	require.NoError(t, err)
	log.Debug("hidden")
	log.Info("shown")
	require.NoError(t, closeFn())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
