// Package logging builds the zap loggers used by long-running commands.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Level       string
	Development bool

	// File, when set, receives JSON logs with size-based rotation in
	// addition to stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int

	// NoStderr drops the stderr core, for when a TUI owns the terminal.
	NoStderr bool
}

// New returns a logger writing to stderr at the given level.
func New(level string, development bool) (*zap.Logger, error) {
	return NewWithOptions(Options{Level: level, Development: development})
}

// NewWithOptions returns a logger for opts.
func NewWithOptions(opts Options) (*zap.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	if opts.Development {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder

	var stderrEnc zapcore.Encoder
	if opts.Development {
		stderrEnc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		stderrEnc = zapcore.NewJSONEncoder(encCfg)
	}

	var cores []zapcore.Core
	if !opts.NoStderr {
		cores = append(cores, zapcore.NewCore(stderrEnc, zapcore.Lock(os.Stderr), lvl))
	}
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), lvl))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	zopts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if opts.Development {
		zopts = append(zopts, zap.Development())
	}
	return zap.New(zapcore.NewTee(cores...), zopts...), nil
}

// ParseLevel accepts zap level names. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return lvl, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
