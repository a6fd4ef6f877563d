package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		want      logrus.Level
	}{
		{0, logrus.WarnLevel},
		{1, logrus.InfoLevel},
		{2, logrus.DebugLevel},
		{3, logrus.TraceLevel},
		{7, logrus.TraceLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFromVerbosity(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestNewLogrusLogger_FileOnlyStructured(t *testing.T) {
	path := filepath.Join(t.TempDir(), "envlink.log")

	l, err := NewLogrusLogger(LogrusConfig{
		EnableFile:   true,
		Structured:   true,
		Level:        logrus.InfoLevel,
		FileLocation: path,
	})
	require.NoError(t, err)

	l.Infof("linked %s", "venv")
	l.WithFields(map[string]interface{}{"target": "/envs/bar"}).Warnf("mismatch")
	l.Debugf("hidden at info level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"msg":"linked venv"`)
	assert.Contains(t, content, `"target":"/envs/bar"`)
	assert.False(t, strings.Contains(content, "hidden at info level"))
}

func TestNewLogrusLogger_BadFileLocation(t *testing.T) {
	_, err := NewLogrusLogger(LogrusConfig{
		EnableFile:   true,
		FileLocation: filepath.Join(t.TempDir(), "missing", "dir", "envlink.log"),
	})
	assert.Error(t, err)
}

func TestNewLogrusLogger_Discard(t *testing.T) {
	l, err := NewLogrusLogger(LogrusConfig{Level: logrus.InfoLevel})
	require.NoError(t, err)
	// nothing enabled: output is discarded, calls must not panic
	l.Info("dropped")
	l.Error("dropped")
}
