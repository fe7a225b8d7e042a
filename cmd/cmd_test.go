package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/pnlcast/internal/config"
	"github.com/theirongolddev/pnlcast/internal/forecast"
)

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	v := setupValues{
		strategy: forecast.StrategyLinear,
		degree:   " 3 ",
		period:   "4",
		dataset:  " data.csv ",
		theme:    "tokyo-night",
		addr:     "",
	}
	require.NoError(t, v.apply(&cfg))

	assert.Equal(t, forecast.StrategyLinear, cfg.Forecast.Strategy)
	assert.Equal(t, 3, cfg.Forecast.Degree)
	assert.Equal(t, 4, cfg.Forecast.Period)
	assert.Equal(t, "data.csv", cfg.Forecast.Dataset)
	assert.Equal(t, "tokyo-night", cfg.Appearance.Theme)
	assert.Equal(t, config.DefaultConfig().Server.Addr, cfg.Server.Addr, "empty address keeps the current one")
	assert.NoError(t, cfg.Validate())
}

func TestSetupValuesApply_Rejects(t *testing.T) {
	cfg := config.DefaultConfig()

	err := setupValues{degree: "-1", period: "1"}.apply(&cfg)
	assert.True(t, errors.Is(err, forecast.ErrInvalidDegree), "got %v", err)

	err = setupValues{degree: "2", period: "0"}.apply(&cfg)
	assert.True(t, errors.Is(err, forecast.ErrInvalidPeriod), "got %v", err)

	assert.Error(t, validateDegree("two"))
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", ":9000", "--detach=true"})
	assert.Equal(t, []string{"serve", "--addr", ":9000"}, got)
}

func TestPIDFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pnlcastd.pid")
	require.NoError(t, writePID(path, 4242))

	pid, err := readPID(path)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)

	require.NoError(t, ensureServerNotRunningAt(path, func(int) bool { return false }))
	_, err = readPID(path)
	assert.Error(t, err, "a stale pid file is removed")
}

func TestRuntimeStateRoundTrip(t *testing.T) {
	path := statePath(filepath.Join(t.TempDir(), "pnlcastd.pid"))
	want := serverRuntimeState{PID: 7, Addr: "127.0.0.1:9999", Dataset: "q1.toml"}
	require.NoError(t, writeState(path, want))

	got, err := readState(path)
	require.NoError(t, err)
	assert.Equal(t, want.Addr, got.Addr)
	assert.Equal(t, want.Dataset, got.Dataset)
}
