// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package log provides the structured logger every long-lived component
// (engine, instance, interface, LSDB sweeper) holds a scoped handle to.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used throughout the daemon. Components
// never call the bare "log" stdlib package or fmt.Println; they hold a
// Logger scoped with With() fields for their component and instance name.
type Logger interface {
	With(fields ...zap.Field) Logger
	Trace(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
}

type zapLogger struct {
	z *zap.Logger
}

// New builds a production-shaped zap logger at the given level.
func New(level zapcore.Level) (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{z: z}, nil
}

func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{z: l.z.With(fields...)}
}

// Trace has no zap equivalent above Debug; it is mapped to Debug with a
// trace marker field so trace-level call sites don't need their own tier.
func (l *zapLogger) Trace(msg string, fields ...zap.Field) {
	l.z.Debug(msg, append(fields, zap.Bool("trace", true))...)
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

// noop is the logger used in tests and in components built without a
// configured sink.
type noop struct{}

// NewNoOp returns a Logger that discards everything.
func NewNoOp() Logger { return noop{} }

func (noop) With(fields ...zap.Field) Logger         { return noop{} }
func (noop) Trace(msg string, fields ...zap.Field)   {}
func (noop) Debug(msg string, fields ...zap.Field)   {}
func (noop) Info(msg string, fields ...zap.Field)    {}
func (noop) Warn(msg string, fields ...zap.Field)    {}
func (noop) Error(msg string, fields ...zap.Field)   {}
