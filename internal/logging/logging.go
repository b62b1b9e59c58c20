// Package logging builds the file-backed zap logger.
//
// A full-screen TUI owns the terminal, so log output never goes to stderr.
// Logging stays off unless it is enabled in the config or --verbose is
// passed.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fureal/fureal/internal/config"
)

// Options selects where and how much to log
type Options struct {
	Enabled bool
	Verbose bool   // Forces logging on at debug level
	Level   string // debug, info, warn, error
	File    string
}

// FromConfig builds Options from the logging section of cfg
func FromConfig(cfg config.Config, verbose bool) (Options, error) {
	path, err := config.GetLogPath(cfg)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Enabled: cfg.Logging.Enabled,
		Verbose: verbose,
		Level:   cfg.Logging.Level,
		File:    path,
	}, nil
}

// New returns a logger writing JSON lines to opts.File, or a no-op logger
// when logging is disabled.
func New(opts Options) (*zap.Logger, error) {
	if !opts.Enabled && !opts.Verbose {
		return zap.NewNop(), nil
	}
	if opts.File == "" {
		return nil, fmt.Errorf("log file path is required")
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{opts.File}
	cfg.ErrorOutputPaths = []string{opts.File}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("fureal"), nil
}

// ParseLevel converts a level name to a zap level. Empty means info.
func ParseLevel(name string) (zapcore.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}
