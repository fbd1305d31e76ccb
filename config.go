// FILE: config.go
package logmanager

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/lixenwraith/config"

	"github.com/lixenwraith/logmanager/formatter"
)

// Config holds all log manager configuration values
type Config struct {
	// Pipeline inputs
	Level       Level    `toml:"level"`
	Rotation    Rotation `toml:"rotation"`
	Directory   string   `toml:"directory"` // Empty resolves to the data-local dir of the binary
	Prefix      string   `toml:"prefix"`    // Empty uses the binary name
	Suffix      string   `toml:"suffix"`
	MaxLogFiles int64    `toml:"max_log_files"` // 0 keeps every file

	// Channel settings
	BufferSize        int64 `toml:"buffer_size"`         // Per-sink queue capacity
	EnqueueTimeoutMs  int64 `toml:"enqueue_timeout_ms"`  // Wait on a full queue before dropping (max 100)
	FlushIntervalMs   int64 `toml:"flush_interval_ms"`   // Periodic sink sync
	ShutdownTimeoutMs int64 `toml:"shutdown_timeout_ms"` // Drain bound on shutdown

	// Console sink
	EnableConsole bool   `toml:"enable_console"`
	ConsoleTarget string `toml:"console_target"` // "stdout" or "stderr"
	ConsoleColor  bool   `toml:"console_color"`

	// Formatting
	FileFormat      string `toml:"file_format"`    // "txt" or "json"
	ConsoleFormat   string `toml:"console_format"` // "txt" or "json"
	TimestampFormat string `toml:"timestamp_format"`
	ShowSource      bool   `toml:"show_source"`

	// Heartbeat
	HeartbeatIntervalS int64 `toml:"heartbeat_interval_s"` // 0 disables

	// Internal diagnostics
	InternalErrorsToStderr bool   `toml:"internal_errors_to_stderr"`
	DiagnosticsFile        string `toml:"diagnostics_file"` // Size-rotated diagnostics file, overrides stderr
	DiagnosticsMaxSizeMB   int64  `toml:"diagnostics_max_size_mb"`
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Level:       LevelInfo,
	Rotation:    RotationDaily,
	Directory:   "",
	Prefix:      "",
	Suffix:      "log",
	MaxLogFiles: 7,

	BufferSize:        1024,
	EnqueueTimeoutMs:  0,
	FlushIntervalMs:   100,
	ShutdownTimeoutMs: 5000,

	EnableConsole: true,
	ConsoleTarget: "stdout",
	ConsoleColor:  true,

	FileFormat:      formatter.FormatTxt,
	ConsoleFormat:   formatter.FormatTxt,
	TimestampFormat: time.RFC3339Nano,
	ShowSource:      true,

	HeartbeatIntervalS: 0,

	InternalErrorsToStderr: false,
	DiagnosticsFile:        "",
	DiagnosticsMaxSizeMB:   10,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from the [log] table of a TOML file
// and returns a validated Config. A missing file yields the defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	if err := loader.RegisterStruct("log.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "log.", cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue // Keep default
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides keyed by toml tag
func applyOverrides(cfg *Config, overrides map[string]any) error {
	fieldMap := configFields(cfg)

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// configFields maps toml tags to settable field values
func configFields(cfg *Config) map[string]reflect.Value {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}
	return fieldMap
}

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

// setFieldValue sets a reflect.Value with proper type conversion. Text values
// for fields implementing encoding.TextUnmarshaler (Level, Rotation) are
// parsed by the type itself.
func setFieldValue(field reflect.Value, value any) error {
	if s, ok := value.(string); ok && field.Addr().Type().Implements(textUnmarshalerType) {
		return field.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
	}

	if value != nil {
		rv := reflect.ValueOf(value)
		if rv.Type() == field.Type() {
			field.Set(rv)
			return nil
		}
	}

	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int, reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if !validLevel(c.Level) {
		return fmtErrorf("%w: %d", ErrInvalidLogLevelFormat, int64(c.Level))
	}

	if !c.Rotation.valid() {
		return fmtErrorf("%w: %d", ErrInvalidRotationFileFormat, int(c.Rotation))
	}

	if strings.HasPrefix(c.Suffix, ".") {
		return fmtErrorf("suffix should not start with dot: %s", c.Suffix)
	}

	if strings.ContainsAny(c.Prefix+c.Suffix, `/\`) {
		return fmtErrorf("prefix and suffix cannot contain path separators")
	}

	if c.FileFormat != formatter.FormatTxt && c.FileFormat != formatter.FormatJSON {
		return fmtErrorf("invalid file_format: '%s' (use txt or json)", c.FileFormat)
	}

	if c.ConsoleFormat != formatter.FormatTxt && c.ConsoleFormat != formatter.FormatJSON {
		return fmtErrorf("invalid console_format: '%s' (use txt or json)", c.ConsoleFormat)
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmtErrorf("timestamp_format cannot be empty")
	}

	if c.ConsoleTarget != "stdout" && c.ConsoleTarget != "stderr" {
		return fmtErrorf("invalid console_target: '%s' (use stdout or stderr)", c.ConsoleTarget)
	}

	if c.MaxLogFiles < 0 {
		return fmtErrorf("max_log_files cannot be negative: %d", c.MaxLogFiles)
	}

	if c.BufferSize <= 0 {
		return fmtErrorf("buffer_size must be positive: %d", c.BufferSize)
	}

	if c.EnqueueTimeoutMs < 0 || c.EnqueueTimeoutMs > maxEnqueueTimeout.Milliseconds() {
		return fmtErrorf("enqueue_timeout_ms must be between 0 and %d: %d",
			maxEnqueueTimeout.Milliseconds(), c.EnqueueTimeoutMs)
	}

	if c.FlushIntervalMs <= 0 || c.ShutdownTimeoutMs <= 0 {
		return fmtErrorf("interval settings must be positive")
	}

	if c.HeartbeatIntervalS < 0 {
		return fmtErrorf("heartbeat_interval_s cannot be negative: %d", c.HeartbeatIntervalS)
	}

	if c.DiagnosticsMaxSizeMB <= 0 {
		return fmtErrorf("diagnostics_max_size_mb must be positive: %d", c.DiagnosticsMaxSizeMB)
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

func (c *Config) enqueueTimeout() time.Duration {
	return time.Duration(c.EnqueueTimeoutMs) * time.Millisecond
}

func (c *Config) flushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMs) * time.Millisecond
}

func (c *Config) shutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMs) * time.Millisecond
}
