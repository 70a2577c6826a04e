package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLog(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(b)
}

func TestLogFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	files, err := openLogFiles(logger, dir, 7)
	require.NoError(t, err)
	defer files.Close()

	logger.Info("Bot started")
	logger.WithFields(logrus.Fields{"command": "submit", "user": "alice"}).Info("Received command")
	logger.WithField("component", "close_ticket:1").Info("Received component interaction")
	logger.Error("Database unavailable")

	all := readLog(t, dir, "bot.log")
	assert.Contains(t, all, "Bot started")
	assert.Contains(t, all, "command=submit")
	assert.Contains(t, all, "Database unavailable")

	commands := readLog(t, dir, "commands.log")
	assert.Contains(t, commands, "command=submit")
	assert.Contains(t, commands, "component=")
	assert.NotContains(t, commands, "Bot started")
	assert.NotContains(t, commands, "Database unavailable")

	errs := readLog(t, dir, "errors.log")
	assert.Contains(t, errs, "Database unavailable")
	assert.NotContains(t, errs, "Bot started")
}

func TestLogFilesRotate(t *testing.T) {
	dir := t.TempDir()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	files, err := openLogFiles(logger, dir, 7)
	require.NoError(t, err)
	defer files.Close()

	logger.Error("before rotation")
	require.NoError(t, files.rotateAll())
	logger.Info("after rotation")

	backups, err := filepath.Glob(filepath.Join(dir, "bot-*.log"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
	b, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), "before rotation")

	current := readLog(t, dir, "bot.log")
	assert.Contains(t, current, "after rotation")
	assert.NotContains(t, current, "before rotation")
}

func TestLogFilesDisabled(t *testing.T) {
	logger := logrus.New()
	files, err := openLogFiles(logger, "", 7)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, logger.Hooks)
	assert.NoError(t, files.rotate(t.Context(), 0))
	assert.NoError(t, files.Close())
}
