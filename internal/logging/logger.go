// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ LoggerInterface = (*Logger)(nil)

// Logger is the application logger, a sugared zap logger plus a structured
// logger dedicated to security events.
type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// Sync flushes both the application and the security logger.
func (l *Logger) Sync() error {
	err := l.SugaredLogger.Sync()
	if serr := l.security.l.Sync(); err == nil {
		err = serr
	}
	return err
}

func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// NewLogger creates a JSON logger at the requested level, unknown levels
// fall back to info.
func NewLogger(l string) *Logger {
	c := zap.NewProductionConfig()
	c.Level.SetLevel(parseLevel(l))
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.EncoderConfig.TimeKey = "@timestamp"

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}

	return &Logger{
		SugaredLogger: logger.Sugar(),
		security:      newSecurityLogger(logger),
	}
}
