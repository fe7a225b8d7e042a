package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/pnlcast/internal/forecast"
)

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("LoadFile() = %+v, want defaults", cfg)
	}
}

func TestLoadFile_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[forecast]\nstrategy = \"linear\"\nperiod = 6\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Forecast.Strategy != forecast.StrategyLinear {
		t.Fatalf("strategy = %q, want linear", cfg.Forecast.Strategy)
	}
	if cfg.Forecast.Period != 6 {
		t.Fatalf("period = %d, want 6", cfg.Forecast.Period)
	}
	if cfg.Forecast.Degree != forecast.DefaultDegree {
		t.Fatalf("degree = %d, want default %d", cfg.Forecast.Degree, forecast.DefaultDegree)
	}
	if cfg.Appearance.Theme != "flexoki-dark" {
		t.Fatalf("theme = %q, want flexoki-dark", cfg.Appearance.Theme)
	}
}

func TestLoadFile_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[forecast\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("LoadFile() error = nil, want parse error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvStrategy, "")

	cfg := DefaultConfig()
	cfg.Forecast.Period = 4
	cfg.Server.Addr = ":9999"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	info, err := os.Stat(ConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("config mode = %o, want 600", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != cfg {
		t.Fatalf("Load() = %+v, want %+v", got, cfg)
	}
}

func TestLoad_EnvOverridesStrategy(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvStrategy, "linear")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Forecast.Strategy != "linear" {
		t.Fatalf("strategy = %q, want linear", cfg.Forecast.Strategy)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown strategy", func(c *Config) { c.Forecast.Strategy = "spline" }},
		{"negative degree", func(c *Config) { c.Forecast.Degree = -1 }},
		{"huge degree", func(c *Config) { c.Forecast.Degree = forecast.MaxDegree + 1 }},
		{"zero period", func(c *Config) { c.Forecast.Period = 0 }},
		{"negative buffer", func(c *Config) { c.Server.EventsBuffer = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Forecast.Degree = 3
	s, err := cfg.Strategy()
	if err != nil {
		t.Fatalf("Strategy() error: %v", err)
	}
	if s != (forecast.Polynomial{Degree: 3}) {
		t.Fatalf("Strategy() = %#v, want cubic polynomial", s)
	}
}
