package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, "ParseLevel(%q)", in)
		assert.Equal(t, want, got, "ParseLevel(%q)", in)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNew_RejectsBadLevel(t *testing.T) {
	_, err := New("loud", false)
	assert.Error(t, err)
}

func TestNewWithOptions_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pnlcast.log")
	log, err := NewWithOptions(Options{Level: "info", File: path})
	require.NoError(t, err)

	log.Info("forecast computed")
	log.Debug("hidden")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"forecast computed"`), string(data))
	assert.NotContains(t, string(data), "hidden")
}

func TestNewWithOptions_NoStderrWithoutFileIsNop(t *testing.T) {
	log, err := NewWithOptions(Options{Level: "debug", NoStderr: true})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.ErrorLevel))
}
