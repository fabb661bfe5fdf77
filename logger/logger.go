// Package logger exposes the two loggers used across the module:
// ProgressLogger reports the main steps of a rendering, WarningLogger
// reports every recovered anomaly (bad attribute, missing table ancestor,
// image loading failure, ...).
//
// Both are backed by a shared zap logger, which may be configured with Init.
package logger

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ProgressLogger logs the main steps of the HTML rendering.
var ProgressLogger = Logger{name: "progress", level: zapcore.InfoLevel}

// WarningLogger emits a warning for each non fatal error, like invalid
// attributes, unsupported CSS values or image loading errors.
var WarningLogger = Logger{name: "warning", level: zapcore.WarnLevel}

var base atomic.Pointer[zap.Logger]

func init() {
	l, err := build(Options{Level: "warn"}, zapcore.Lock(os.Stderr))
	if err != nil {
		l = zap.NewNop()
	}
	base.Store(l)
}

// Options configures the global loggers.
type Options struct {
	Level      string // debug, info, warn, error
	Format     string // "console", "json", or empty to detect a terminal
	File       string // optional rotated log file, always JSON
	MaxSizeMB  int
	MaxBackups int
}

// Init replaces the global loggers according to `opts`.
func Init(opts Options) error {
	l, err := build(opts, zapcore.Lock(os.Stderr))
	if err != nil {
		return err
	}
	base.Store(l)
	return nil
}

func build(opts Options, console zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	format := opts.Format
	if format == "" {
		format = "json"
		if term.IsTerminal(int(os.Stderr.Fd())) {
			format = "console"
		}
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder(format), console, level)}
	if opts.File != "" {
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		})
		cores = append(cores, zapcore.NewCore(encoder("json"), w, level))
	}
	return zap.New(zapcore.NewTee(cores...)).Named("cssbox"), nil
}

func encoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	if format == "console" {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// Base returns the zap logger currently backing the global loggers.
func Base() *zap.Logger { return base.Load() }

// ReplaceBase swaps the zap logger backing the global loggers,
// and returns a function restoring the previous one.
func ReplaceBase(l *zap.Logger) (restore func()) {
	previous := base.Swap(l)
	return func() { base.Store(previous) }
}

// Sync flushes any buffered log entries.
func Sync() error { return base.Load().Sync() }

// Logger is a named logger with a fixed level, exposing
// the familiar Printf/Println API.
type Logger struct {
	name  string
	level zapcore.Level
}

func (l Logger) sugar() *zap.SugaredLogger {
	return base.Load().Named(l.name).Sugar()
}

func (l Logger) Printf(format string, args ...interface{}) {
	s := l.sugar()
	switch l.level {
	case zapcore.WarnLevel:
		s.Warnf(format, args...)
	case zapcore.DebugLevel:
		s.Debugf(format, args...)
	default:
		s.Infof(format, args...)
	}
}

func (l Logger) Println(args ...interface{}) {
	s := l.sugar()
	switch l.level {
	case zapcore.WarnLevel:
		s.Warnln(args...)
	case zapcore.DebugLevel:
		s.Debugln(args...)
	default:
		s.Infoln(args...)
	}
}
