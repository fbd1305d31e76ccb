package compat

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/logmanager"
)

var _ zapcore.Core = (*ZapCore)(nil)

// ZapCore implements zapcore.Core so a *zap.Logger writes through a Target.
// Zap fields become record fields in their original order.
type ZapCore struct {
	target Target
	source string
	fields []any
}

// NewZapCore creates a core whose records default to source "zap"; a named
// zap logger uses its name instead
func NewZapCore(target Target) *ZapCore {
	return &ZapCore{target: target, source: "zap"}
}

// NewZapLogger wraps NewZapCore in a *zap.Logger
func NewZapLogger(target Target, opts ...zap.Option) *zap.Logger {
	return zap.New(NewZapCore(target), opts...)
}

// Enabled implements zapcore.LevelEnabler
func (c *ZapCore) Enabled(level zapcore.Level) bool {
	return c.target.Enabled(levelFromZap(level))
}

// With returns a core carrying fields on every record
func (c *ZapCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &ZapCore{
		target: c.target,
		source: c.source,
		fields: make([]any, 0, len(c.fields)+2*len(fields)),
	}
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = appendZapFields(clone.fields, fields)
	return clone
}

// Check adds the core when the entry level is enabled
func (c *ZapCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write emits the entry. Entries above error level are flushed at once
// because zap terminates the process after writing them.
func (c *ZapCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	source := c.source
	if ent.LoggerName != "" {
		source = ent.LoggerName
	}

	all := make([]any, 0, len(c.fields)+2*len(fields))
	all = append(all, c.fields...)
	all = appendZapFields(all, fields)
	if ent.Level > zapcore.ErrorLevel {
		all = append(all, "zap_level", ent.Level.String())
	}

	c.target.Log(levelFromZap(ent.Level), source, ent.Message, all...)

	if ent.Level > zapcore.ErrorLevel {
		return c.target.Flush(fatalFlushTimeout)
	}
	return nil
}

// Sync flushes the target
func (c *ZapCore) Sync() error {
	return c.target.Flush(time.Second)
}

// appendZapFields resolves fields through a map encoder, keeping their order
func appendZapFields(dst []any, fields []zapcore.Field) []any {
	if len(fields) == 0 {
		return dst
	}
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		if v, ok := enc.Fields[f.Key]; ok {
			dst = append(dst, f.Key, v)
		}
	}
	return dst
}

// levelFromZap maps zap levels onto the five-level scale
func levelFromZap(level zapcore.Level) logmanager.Level {
	switch {
	case level < zapcore.DebugLevel:
		return logmanager.LevelTrace
	case level == zapcore.DebugLevel:
		return logmanager.LevelDebug
	case level == zapcore.InfoLevel:
		return logmanager.LevelInfo
	case level == zapcore.WarnLevel:
		return logmanager.LevelWarn
	default:
		return logmanager.LevelError
	}
}
