// FILE: lixenwraith/logmanager/compat/fasthttp.go
package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/logmanager"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter implements the fasthttp Logger interface on top of a Target
type FastHTTPAdapter struct {
	target        Target
	source        string
	defaultLevel  logmanager.Level
	levelDetector func(string) (logmanager.Level, bool) // Detects the level from message content
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(target Target, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		target:        target,
		source:        "fasthttp",
		defaultLevel:  logmanager.LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when detection finds nothing
func WithDefaultLevel(level logmanager.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content
func WithLevelDetector(detector func(string) (logmanager.Level, bool)) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// WithFastHTTPSource sets the record source, "fasthttp" by default
func WithFastHTTPSource(source string) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.source = source
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected, ok := a.levelDetector(msg); ok {
			level = detected
		}
	}

	a.target.Log(level, a.source, msg)
}

// DetectLogLevel attempts to detect log level from message content
func DetectLogLevel(msg string) (logmanager.Level, bool) {
	msgLower := strings.ToLower(msg)

	// Check for error indicators
	if strings.Contains(msgLower, "error") ||
		strings.Contains(msgLower, "failed") ||
		strings.Contains(msgLower, "fatal") ||
		strings.Contains(msgLower, "panic") {
		return logmanager.LevelError, true
	}

	// Check for warning indicators
	if strings.Contains(msgLower, "warn") ||
		strings.Contains(msgLower, "deprecated") {
		return logmanager.LevelWarn, true
	}

	// Check for debug indicators
	if strings.Contains(msgLower, "debug") {
		return logmanager.LevelDebug, true
	}

	if strings.Contains(msgLower, "trace") {
		return logmanager.LevelTrace, true
	}

	return 0, false
}
