// --- File: default.go ---
package logmanager

import (
	"time"
)

// Package-level functions that emit through DefaultRegistry. Records emitted
// before a manager is installed are counted as unrouted and discarded.

// Init builds a manager from cfg and installs it into DefaultRegistry
func Init(cfg *Config, opts ...Option) (*Manager, error) {
	return New(cfg, append([]Option{WithRegistry(DefaultRegistry())}, opts...)...)
}

// Emit dispatches a prepared record
func Emit(r Record) {
	defaultRegistry.Emit(r)
}

// Log emits a record at level
func Log(level Level, source, msg string, fields ...any) {
	defaultRegistry.Log(level, source, msg, fields...)
}

// Trace logs a message at trace level
func Trace(source, msg string, fields ...any) {
	defaultRegistry.Log(LevelTrace, source, msg, fields...)
}

// Debug logs a message at debug level
func Debug(source, msg string, fields ...any) {
	defaultRegistry.Log(LevelDebug, source, msg, fields...)
}

// Info logs a message at info level
func Info(source, msg string, fields ...any) {
	defaultRegistry.Log(LevelInfo, source, msg, fields...)
}

// Warn logs a message at warning level
func Warn(source, msg string, fields ...any) {
	defaultRegistry.Log(LevelWarn, source, msg, fields...)
}

// Error logs a message at error level
func Error(source, msg string, fields ...any) {
	defaultRegistry.Log(LevelError, source, msg, fields...)
}

// DebugTrace logs a debug message with a function call trace
func DebugTrace(depth int, source, msg string, fields ...any) {
	defaultRegistry.logTrace(depth, LevelDebug, source, msg, fields...)
}

// ErrorTrace logs an error message with a function call trace
func ErrorTrace(depth int, source, msg string, fields ...any) {
	defaultRegistry.logTrace(depth, LevelError, source, msg, fields...)
}

// Flush flushes the installed pipeline
func Flush(timeout time.Duration) error {
	return defaultRegistry.Flush(timeout)
}
