package compat

import (
	"fmt"
	"os"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/logmanager"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter implements the gnet logging.Logger interface on top of a Target
type GnetAdapter struct {
	target        Target
	source        string
	extractFields bool
	fatalHandler  func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(target Target, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		target: target,
		source: "gnet",
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// WithGnetSource sets the record source, "gnet" by default
func WithGnetSource(source string) GnetOption {
	return func(a *GnetAdapter) {
		a.source = source
	}
}

// WithFieldExtraction turns "key=%v" verbs of the format into record fields
func WithFieldExtraction() GnetOption {
	return func(a *GnetAdapter) {
		a.extractFields = true
	}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.logf(logmanager.LevelDebug, format, args)
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.logf(logmanager.LevelInfo, format, args)
}

// Warnf logs at warn level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.logf(logmanager.LevelWarn, format, args)
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logf(logmanager.LevelError, format, args)
}

// Fatalf logs at error level, flushes, and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.target.Log(logmanager.LevelError, a.source, msg, "fatal", true)

	// Ensure log is flushed before exit
	_ = a.target.Flush(fatalFlushTimeout)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}

func (a *GnetAdapter) logf(level logmanager.Level, format string, args []any) {
	if !a.target.Enabled(level) {
		return
	}
	if a.extractFields {
		msg, fields := parseFormat(format, args)
		a.target.Log(level, a.source, msg, fields...)
		return
	}
	a.target.Log(level, a.source, fmt.Sprintf(format, args...))
}
