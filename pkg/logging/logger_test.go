package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSQLLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sql.log")
	sl, err := NewSQLLogger(true, path, zaptest.NewLogger(t))
	require.NoError(t, err)

	sl.Log("main", "SELECT 1")
	sl.Log("main", "SELECT 2")
	require.NoError(t, sl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[main] SELECT 1\n")
	assert.Contains(t, string(data), "[main] SELECT 2\n")
}

func TestSQLLoggerDisabledDropsEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sql.log")
	sl, err := NewSQLLogger(false, path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer sl.Close()

	sl.Log("main", "SELECT 1")

	// Disabled loggers never open the file.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSQLLoggerNilReceiverIsSafe(t *testing.T) {
	var sl *SQLLogger
	sl.Log("main", "SELECT 1")
}

func TestNewLoggerModes(t *testing.T) {
	for _, debug := range []bool{true, false} {
		logger, err := NewLogger(debug)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}
