// Package logging supplies the zap-backed logger used by the aquacore
// daemon and CLI. It adapts zap's sugared key-value API to the Logger
// interface the service core expects, so library packages stay free of a
// direct zap dependency.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"aquacore/internal/core"
)

// Options control how the underlying zap logger is built.
type Options struct {
	// Level selects the minimum emitted level: debug, info, warn, or
	// error. Empty defaults to info.
	Level string
	// Development switches from the production JSON encoder to zap's
	// human-readable console encoder.
	Development bool
}

// Logger forwards key-value log calls to a zap.SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = (*Logger)(nil)

// New builds a Logger writing to stderr according to opts.
func New(opts Options) (*Logger, error) {
	config := zap.NewProductionConfig()
	if opts.Development {
		config = zap.NewDevelopmentConfig()
	}
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(level)
	base, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return FromZap(base), nil
}

// FromZap wraps an already configured zap logger. The caller keeps
// responsibility for caller-skip and sync behavior.
func FromZap(base *zap.Logger) *Logger {
	return &Logger{sugar: base.Sugar()}
}

// ParseLevel maps a config string onto a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

func (l *Logger) Debug(msg string, keysAndValues ...any) { l.sugar.Debugw(msg, keysAndValues...) }

func (l *Logger) Info(msg string, keysAndValues ...any) { l.sugar.Infow(msg, keysAndValues...) }

func (l *Logger) Warn(msg string, keysAndValues ...any) { l.sugar.Warnw(msg, keysAndValues...) }

func (l *Logger) Error(msg string, keysAndValues ...any) { l.sugar.Errorw(msg, keysAndValues...) }

// With returns a child logger that attaches the given key-value pairs to
// every entry.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

// Named appends a name segment to the logger, separating subsystems in
// the output.
func (l *Logger) Named(name string) *Logger {
	return &Logger{sugar: l.sugar.Named(name)}
}

// Sync flushes buffered entries. Call it before process exit.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
