// Package logging builds the zap loggers used across the task planner.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Options controls logger construction.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // json or console
	Output io.Writer // defaults to os.Stderr
}

// ParseLevel parses a level name. An empty name is info.
func ParseLevel(name string) (zapcore.Level, error) {
	if strings.TrimSpace(name) == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// New creates a logger from opts. TP_DEBUG overrides the level.
func New(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if DebugEnabled() {
		level = zapcore.DebugLevel
	}

	format := strings.ToLower(opts.Format)
	if format != "" && format != "json" && format != "console" {
		return nil, fmt.Errorf("invalid log format %q: must be json or console", opts.Format)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	core := zapcore.NewCore(newEncoder(format), zapcore.AddSync(out), level)
	return zap.New(core), nil
}

// newEncoder creates JSON or console encoder.
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// NewObserved creates a logger that records every entry at or above level.
func NewObserved(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, observed := observer.New(level)
	return zap.New(core), observed
}
