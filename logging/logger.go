//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package logging

import (
	fmtpkg "fmt"
	"path"
	"regexp"
	"runtime"
	"strings"
	"sync"
)

type Level int

const (
	NONE   = Level(iota) // Disable all logging
	FATAL                // System is in severe error state and has to terminate
	SEVERE               // System is in severe error state and cannot recover reliably
	ERROR                // System is in error state but can recover and continue reliably
	WARN                 // System approaching error state, or is in a correct but undesirable state
	INFO                 // System-level events and status, in correct states
	DEBUG                // Debug
	TRACE                // Trace detailed pipeline execution, e.g. executor state transitions
)

func (level Level) String() string {
	if level < NONE || level > TRACE {
		return "UNKNOWN"
	}
	return _LEVEL_NAMES[level]
}

var _LEVEL_NAMES = []string{
	DEBUG:  "DEBUG",
	TRACE:  "TRACE",
	INFO:   "INFO",
	WARN:   "WARN",
	ERROR:  "ERROR",
	SEVERE: "SEVERE",
	FATAL:  "FATAL",
	NONE:   "NONE",
}

var _LEVEL_MAP = map[string]Level{
	"debug":  DEBUG,
	"trace":  TRACE,
	"info":   INFO,
	"warn":   WARN,
	"error":  ERROR,
	"severe": SEVERE,
	"fatal":  FATAL,
	"none":   NONE,
}

// Pair is a structured key/value attached to a log entry.
type Pair struct {
	Name  string
	Value interface{}
}

// cache logging enablement to improve runtime performance (reduces from multiple tests to a single test on each call)
var (
	cachedDebug  bool
	cachedTrace  bool
	cachedInfo   bool
	cachedWarn   bool
	cachedError  bool
	cachedSevere bool
	cachedFatal  bool
)

// maintain the cached logging state
func cacheLoggingChange() {
	cachedDebug = !skipLogging(DEBUG)
	cachedTrace = !skipLogging(TRACE)
	cachedInfo = !skipLogging(INFO)
	cachedWarn = !skipLogging(WARN)
	cachedError = !skipLogging(ERROR)
	cachedSevere = !skipLogging(SEVERE)
	cachedFatal = !skipLogging(FATAL)
}

// ParseLevel accepts a level name, optionally followed for DEBUG and TRACE
// by a ':' and a ';' separated list of source path filters.
func ParseLevel(name string) (level Level, ok bool, filter string) {
	level, ok = _LEVEL_MAP[strings.ToLower(name)]
	if ok {
		return
	}
	for _, l := range []Level{DEBUG, TRACE} {
		if strings.HasPrefix(strings.ToUpper(name), _LEVEL_NAMES[l]+":") {
			n := len(_LEVEL_NAMES[l])
			filter = name[n+1:]
			level, ok = _LEVEL_MAP[strings.ToLower(name[:n])]
			return
		}
	}
	return
}

// Logger provides a common interface for logging libraries
type Logger interface {
	// Higher performance
	Loga(level Level, f func() string)

	// Printf style
	Logf(level Level, fmt string, args ...interface{})

	// Structured
	Logp(level Level, msg string, kv ...Pair)

	/*
		These APIs control the logging level
	*/
	SetLevel(Level) // Set the logging level
	Level() Level   // Get the current logging level
}

var logger Logger = nil
var curLevel Level = DEBUG // initially set to never skip
var debugFilter []*regexp.Regexp

var loggerMutex sync.RWMutex

// We try to predict here if we should lock the mutex at all by caching
// the current log level: while dynamically changing logger, there might
// be the odd entry skipped as the new level is cached.
func skipLogging(level Level) bool {
	if logger == nil {
		return true
	}
	return level > curLevel
}

func SetLogger(newLogger Logger) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger = newLogger
	if logger == nil {
		curLevel = NONE
	} else {
		curLevel = newLogger.Level()
	}
	cacheLoggingChange()
}

func callerSuffix(skip int) string {
	pc, fname, lineno, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	fnc := runtime.FuncForPC(pc)
	if fnc == nil {
		return fmtpkg.Sprintf(" (%s:%d)", path.Base(fname), lineno)
	}
	n := fnc.Name()
	i := strings.LastIndexByte(n, '(')
	if i == -1 {
		i = strings.LastIndexByte(n, '.')
		if i != -1 {
			i++
		}
	}
	if i < 0 {
		i = 0
	}
	return fmtpkg.Sprintf(" (%s|%s:%d)", n[i:], path.Base(fname), lineno)
}

// anonymous function variants

func Loga(level Level, f func() string) {
	if skipLogging(level) {
		return
	} else if (level == DEBUG || level == TRACE) && !filterDebug() {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Loga(level, f)
}

func Debuga(f func() string) {
	if !cachedDebug || !filterDebug() {
		return
	}
	fl := callerSuffix(1)
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Loga(DEBUG, func() string { return f() + fl })
}

func Tracea(f func() string) {
	if !cachedTrace || !filterDebug() {
		return
	}
	fl := callerSuffix(1)
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Loga(TRACE, func() string { return f() + fl })
}

func Infoa(f func() string) {
	if !cachedInfo {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Loga(INFO, f)
}

func Warna(f func() string) {
	if !cachedWarn {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Loga(WARN, f)
}

func Errora(f func() string) {
	if !cachedError {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Loga(ERROR, f)
}

// printf-style variants

func Logf(level Level, fmt string, args ...interface{}) {
	if skipLogging(level) {
		return
	} else if (level == DEBUG || level == TRACE) && !filterDebug() {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logf(level, fmt, args...)
}

func Debugf(fmt string, args ...interface{}) {
	if !cachedDebug || !filterDebug() {
		return
	}
	fl := callerSuffix(1)
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logf(DEBUG, fmt+"%s", append(args, fl)...)
}

func Tracef(fmt string, args ...interface{}) {
	if !cachedTrace || !filterDebug() {
		return
	}
	fl := callerSuffix(1)
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logf(TRACE, fmt+"%s", append(args, fl)...)
}

func Infof(fmt string, args ...interface{}) {
	if !cachedInfo {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logf(INFO, fmt, args...)
}

func Warnf(fmt string, args ...interface{}) {
	if !cachedWarn {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logf(WARN, fmt, args...)
}

func Errorf(fmt string, args ...interface{}) {
	if !cachedError {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logf(ERROR, fmt, args...)
}

func Severef(fmt string, args ...interface{}) {
	if !cachedSevere {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logf(SEVERE, fmt, args...)
}

func Fatalf(fmt string, args ...interface{}) {
	if !cachedFatal {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logf(FATAL, fmt, args...)
}

// structured variants

func Logp(level Level, msg string, kv ...Pair) {
	if skipLogging(level) {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logp(level, msg, kv...)
}

func Debugp(msg string, kv ...Pair) {
	if !cachedDebug || !filterDebug() {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logp(DEBUG, msg, kv...)
}

func Warnp(msg string, kv ...Pair) {
	if !cachedWarn {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logp(WARN, msg, kv...)
}

func Errorp(msg string, kv ...Pair) {
	if !cachedError {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logp(ERROR, msg, kv...)
}

func Severep(msg string, kv ...Pair) {
	if !cachedSevere {
		return
	}
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logp(SEVERE, msg, kv...)
}

// Stackf logs the formatted message followed by the calling goroutine's stack.
func Stackf(level Level, fmt string, args ...interface{}) {
	if skipLogging(level) {
		return
	}
	buf := make([]byte, 1<<16)
	n := runtime.Stack(buf, false)
	s := string(buf[0:n])
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	logger.Logf(level, fmt, args...)
	logger.Logf(level, "%s", s)
}

func SetLevel(level Level) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if logger != nil {
		logger.SetLevel(level)
		curLevel = level
	}
	cacheLoggingChange()
}

func LogLevel() Level {
	loggerMutex.RLock()
	defer loggerMutex.RUnlock()
	if logger == nil {
		return NONE
	}
	return logger.Level()
}

// SetDebugFilter restricts DEBUG and TRACE output to source files matching
// one of the ';' separated regular expressions. An empty string clears it.
func SetDebugFilter(s string) {
	if s == "" {
		loggerMutex.Lock()
		debugFilter = nil
		loggerMutex.Unlock()
		return
	}
	pats := strings.Split(s, ";")
	df := make([]*regexp.Regexp, 0, len(pats))
	for _, p := range pats {
		f, err := regexp.Compile(p)
		if err == nil {
			df = append(df, f)
			Infof("Added debug logging filter: '%s'", p)
		}
	}
	loggerMutex.Lock()
	debugFilter = df
	loggerMutex.Unlock()
}

func filterDebug() bool {
	loggerMutex.RLock()
	df := debugFilter
	loggerMutex.RUnlock()
	if len(df) == 0 {
		return true
	}

	_, pathname, _, ok := runtime.Caller(2)
	if !ok {
		return false
	}
	for _, p := range df {
		if p.MatchString(pathname) {
			return true
		}
	}
	return false
}
