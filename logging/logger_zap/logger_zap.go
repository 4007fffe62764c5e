//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package logger_zap

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/docflow/pipeline/logging"
)

const _LEVEL_KEY = "_level"

type zapLogger struct {
	sync.RWMutex
	logger *zap.Logger
	level  logging.Level
}

// NewLogger returns a logging.Logger writing to out. Entries are filtered on
// the pipeline level; zap only formats and writes them.
func NewLogger(out io.Writer, lvl logging.Level, jsonLogging bool) *zapLogger {
	if out == nil {
		return &zapLogger{level: lvl}
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if jsonLogging {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(out), zapcore.DebugLevel)
	return &zapLogger{
		logger: zap.New(core),
		level:  lvl,
	}
}

func zapLevel(level logging.Level) zapcore.Level {
	switch level {
	case logging.TRACE, logging.DEBUG:
		return zapcore.DebugLevel
	case logging.INFO:
		return zapcore.InfoLevel
	case logging.WARN:
		return zapcore.WarnLevel
	default:
		// FATAL and SEVERE are reported, never acted upon: zap's own fatal
		// level would exit the process.
		return zapcore.ErrorLevel
	}
}

func (this *zapLogger) enabled(level logging.Level) bool {
	this.RLock()
	defer this.RUnlock()
	return this.logger != nil && level != logging.NONE && level <= this.level
}

func (this *zapLogger) write(level logging.Level, msg string, fields ...zap.Field) {
	fields = append(fields, zap.String(_LEVEL_KEY, level.String()))
	this.logger.Check(zapLevel(level), msg).Write(fields...)
}

func (this *zapLogger) Loga(level logging.Level, f func() string) {
	if this.enabled(level) {
		this.write(level, f())
	}
}

func (this *zapLogger) Logf(level logging.Level, format string, args ...interface{}) {
	if this.enabled(level) {
		this.write(level, fmt.Sprintf(format, args...))
	}
}

func (this *zapLogger) Logp(level logging.Level, msg string, kv ...logging.Pair) {
	if !this.enabled(level) {
		return
	}
	fields := make([]zap.Field, 0, len(kv)+1)
	for _, p := range kv {
		fields = append(fields, zap.Any(p.Name, p.Value))
	}
	this.write(level, msg, fields...)
}

func (this *zapLogger) SetLevel(level logging.Level) {
	this.Lock()
	this.level = level
	this.Unlock()
}

func (this *zapLogger) Level() logging.Level {
	this.RLock()
	defer this.RUnlock()
	return this.level
}

// Sync flushes any buffered entries.
func (this *zapLogger) Sync() error {
	if this.logger == nil {
		return nil
	}
	return this.logger.Sync()
}
