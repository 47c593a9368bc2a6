/*
NAME
  logging.go

DESCRIPTION
  logging.go provides the Logger interface used throughout boxcodec, and a
  zap-backed implementation with rotating file output.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package logging provides a small structured logging interface and a
// zap-backed implementation with log rotation, used by all boxcodec
// components that need to report progress or failures.
package logging

import (
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log levels, matching the severities a caller may configure.
const (
	Debug int8 = iota
	Info
	Warning
	Error
	Fatal
)

// Logger is the interface boxcodec components log through. All, some, or
// none of a message's args may be consumed by a particular implementation.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warning(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// ZapLogger implements Logger using go.uber.org/zap with a lumberjack
// rotating writer as the sink.
type ZapLogger struct {
	l     *zap.SugaredLogger
	level int8
}

// Config describes where and how a ZapLogger writes.
type Config struct {
	FilePath   string // Destination log file; empty means stderr only.
	MaxSizeMB  int    // Maximum size of the log file before rotation.
	MaxBackups int    // Maximum number of rotated files to retain.
	MaxAgeDays int    // Maximum age of a rotated file in days.
	Level      int8   // Minimum level that will be logged.
}

// New returns a ZapLogger configured per c. If c.FilePath is empty, logs go
// to stderr only.
func New(c Config) *ZapLogger {
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	var ws zapcore.WriteSyncer
	if c.FilePath != "" {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   c.FilePath,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
		})
	} else {
		ws = zapcore.Lock(os.Stderr)
	}

	core := zapcore.NewCore(enc, ws, toZapLevel(c.Level))
	return &ZapLogger{l: zap.New(core).Sugar(), level: c.Level}
}

// NewDiscard returns a Logger that drops every message; used by tests and
// callers that have not configured logging.
func NewDiscard() Logger { return discard{} }

func (z *ZapLogger) Debug(msg string, args ...interface{})   { z.l.Debugw(msg, args...) }
func (z *ZapLogger) Info(msg string, args ...interface{})    { z.l.Infow(msg, args...) }
func (z *ZapLogger) Warning(msg string, args ...interface{}) { z.l.Warnw(msg, args...) }
func (z *ZapLogger) Error(msg string, args ...interface{})   { z.l.Errorw(msg, args...) }
func (z *ZapLogger) Fatal(msg string, args ...interface{})   { z.l.Fatalw(msg, args...) }

func toZapLevel(l int8) zapcore.Level {
	switch l {
	case Debug:
		return zapcore.DebugLevel
	case Info:
		return zapcore.InfoLevel
	case Warning:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

type discard struct{}

func (discard) Debug(string, ...interface{})   {}
func (discard) Info(string, ...interface{})    {}
func (discard) Warning(string, ...interface{}) {}
func (discard) Error(string, ...interface{})   {}
func (discard) Fatal(string, ...interface{})   {}
