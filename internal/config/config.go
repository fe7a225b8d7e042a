package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/pnlcast/internal/forecast"
)

// EnvStrategy overrides [forecast].strategy when set.
const EnvStrategy = "PNLCAST_STRATEGY"

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all pnlcast configuration.
type Config struct {
	Forecast   ForecastConfig   `toml:"forecast"`
	Appearance AppearanceConfig `toml:"appearance"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// ForecastConfig holds the defaults for a forecast run.
type ForecastConfig struct {
	Strategy string `toml:"strategy"`
	Degree   int    `toml:"degree"`
	Period   int    `toml:"period"`
	Dataset  string `toml:"dataset,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds the HTTP service settings.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
	File        string `toml:"file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Forecast: ForecastConfig{
			Strategy: forecast.StrategyPolynomial,
			Degree:   forecast.DefaultDegree,
			Period:   1,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8787",
			EventsBuffer: 200,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pnlcast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pnlcast")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// The environment override is applied last.
func Load() (Config, error) {
	cfg, err := LoadFile(ConfigPath())
	if err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadFile reads a config from path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if s := strings.TrimSpace(os.Getenv(EnvStrategy)); s != "" {
		cfg.Forecast.Strategy = s
	}
}

// Validate checks the forecast and server sections.
func (c Config) Validate() error {
	if _, err := forecast.New(c.Forecast.Strategy, c.Forecast.Degree); err != nil {
		return fmt.Errorf("%w: forecast: %w", ErrInvalid, err)
	}
	if c.Forecast.Period < 1 {
		return fmt.Errorf("%w: forecast.period must be at least 1, got %d", ErrInvalid, c.Forecast.Period)
	}
	if c.Server.EventsBuffer < 0 {
		return fmt.Errorf("%w: server.events_buffer must not be negative", ErrInvalid)
	}
	return nil
}

// Strategy builds the configured forecast strategy.
func (c Config) Strategy() (forecast.Strategy, error) {
	return forecast.New(c.Forecast.Strategy, c.Forecast.Degree)
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(ConfigPath(), cfg)
}

// SaveFile writes the config to path with owner-only permissions.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // caller-chosen path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
