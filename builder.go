// FILE: lixenwraith/logmanager/builder.go
package logmanager

import (
	"io"
)

// Builder provides a fluent API for building a Manager.
// It wraps a Config instance and provides chainable methods for setting values.
// The first parse error is kept and returned by Build.
type Builder struct {
	cfg  *Config
	opts []Option
	err  error
}

// NewBuilder creates a new builder with default values
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build validates the configuration and creates the manager. Nothing is
// created on disk when an earlier setter failed.
func (b *Builder) Build() (*Manager, error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.cfg, b.opts...)
}

// Config returns a copy of the configuration built so far
func (b *Builder) Config() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.cfg.Clone(), nil
}

// Level sets the minimum level of both sinks
func (b *Builder) Level(level Level) *Builder {
	b.cfg.Level = level
	return b
}

// LevelString sets the level from its name
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	levelVal, err := ParseLevel(level)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = levelVal
	return b
}

// Rotation sets the rotation policy
func (b *Builder) Rotation(rotation Rotation) *Builder {
	b.cfg.Rotation = rotation
	return b
}

// RotationString sets the rotation policy from its name
func (b *Builder) RotationString(rotation string) *Builder {
	if b.err != nil {
		return b
	}
	rotationVal, err := ParseRotation(rotation)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Rotation = rotationVal
	return b
}

// MaxLogFiles sets how many files retention keeps, 0 keeps all
func (b *Builder) MaxLogFiles(n int64) *Builder {
	b.cfg.MaxLogFiles = n
	return b
}

// Directory sets the log directory
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// Prefix sets the file name prefix
func (b *Builder) Prefix(prefix string) *Builder {
	b.cfg.Prefix = prefix
	return b
}

// Suffix sets the file name suffix
func (b *Builder) Suffix(suffix string) *Builder {
	b.cfg.Suffix = suffix
	return b
}

// BufferSize sets the per-sink queue capacity
func (b *Builder) BufferSize(size int64) *Builder {
	b.cfg.BufferSize = size
	return b
}

// EnqueueTimeoutMs sets how long producers may wait on a full queue
func (b *Builder) EnqueueTimeoutMs(ms int64) *Builder {
	b.cfg.EnqueueTimeoutMs = ms
	return b
}

// ShutdownTimeoutMs sets the shutdown drain bound
func (b *Builder) ShutdownTimeoutMs(ms int64) *Builder {
	b.cfg.ShutdownTimeoutMs = ms
	return b
}

// FileFormat sets the file output format
func (b *Builder) FileFormat(format string) *Builder {
	b.cfg.FileFormat = format
	return b
}

// EnableConsole enables or disables the console sink
func (b *Builder) EnableConsole(enable bool) *Builder {
	b.cfg.EnableConsole = enable
	return b
}

// ConsoleColor enables ANSI level colors on the console
func (b *Builder) ConsoleColor(enable bool) *Builder {
	b.cfg.ConsoleColor = enable
	return b
}

// ConsoleWriter replaces stdout as the console target
func (b *Builder) ConsoleWriter(w io.Writer) *Builder {
	b.opts = append(b.opts, WithConsoleWriter(w))
	return b
}

// DiagnosticsWriter sends the manager's own diagnostics to w
func (b *Builder) DiagnosticsWriter(w io.Writer) *Builder {
	b.opts = append(b.opts, WithDiagnosticsWriter(w))
	return b
}

// HeartbeatIntervalS sets the heartbeat interval, 0 disables it
func (b *Builder) HeartbeatIntervalS(interval int64) *Builder {
	b.cfg.HeartbeatIntervalS = interval
	return b
}

// Registry sets the registry the manager installs into
func (b *Builder) Registry(r *Registry) *Builder {
	b.opts = append(b.opts, WithRegistry(r))
	return b
}

// Override applies "key=value" strings, keeping the first error
func (b *Builder) Override(overrides ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err == nil {
			err = applyConfigField(b.cfg, key, value)
		}
		if err != nil {
			b.err = err
			return b
		}
	}
	return b
}

// Example usage:
// m, err := logmanager.NewBuilder().
//
//	Directory("/var/log/app").
//	LevelString("debug").
//	RotationString("hourly").
//	MaxLogFiles(24).
//	Build()
//
// if err == nil {
//
//	 defer m.Shutdown()
//	 m.Info("app", "manager initialized")
//
// }
