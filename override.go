// FILE: override.go
package logmanager

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyOverride applies "key=value" overrides to the configuration in place
// and validates the result. Keys are the toml tags of Config.
//
// Example:
//
//	cfg := logmanager.DefaultConfig()
//	err := cfg.ApplyOverride(
//	    "level=debug",
//	    "rotation=hourly",
//	    "max_log_files=24",
//	)
func (c *Config) ApplyOverride(overrides ...string) error {
	var errs []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := applyConfigField(c, key, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return combineConfigErrors(errs)
	}

	return c.Validate()
}

// configErrors reports several configuration errors while keeping each one
// reachable through errors.Is
type configErrors []error

func (e configErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("logmanager: multiple configuration errors:")
	for i, err := range e {
		errMsg := strings.TrimPrefix(err.Error(), "logmanager: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return sb.String()
}

func (e configErrors) Unwrap() []error {
	return e
}

// combineConfigErrors combines multiple configuration errors into a single error
func combineConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return configErrors(errs)
}

// applyConfigField applies a single key-value override to a Config
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	// Pipeline inputs
	case "level":
		// Named levels go through ParseLevel, raw scale values are accepted as is
		if numVal, err := strconv.ParseInt(value, 10, 64); err == nil && !(numVal >= 1 && numVal <= 5) {
			cfg.Level = Level(numVal)
			return nil
		}
		levelVal, err := ParseLevel(value)
		if err != nil {
			return err
		}
		cfg.Level = levelVal
	case "rotation":
		rotationVal, err := ParseRotation(value)
		if err != nil {
			return err
		}
		cfg.Rotation = rotationVal
	case "directory":
		cfg.Directory = value
	case "prefix":
		cfg.Prefix = value
	case "suffix":
		cfg.Suffix = value
	case "max_log_files":
		return setInt(&cfg.MaxLogFiles, key, value)

	// Channel settings
	case "buffer_size":
		return setInt(&cfg.BufferSize, key, value)
	case "enqueue_timeout_ms":
		return setInt(&cfg.EnqueueTimeoutMs, key, value)
	case "flush_interval_ms":
		return setInt(&cfg.FlushIntervalMs, key, value)
	case "shutdown_timeout_ms":
		return setInt(&cfg.ShutdownTimeoutMs, key, value)

	// Console sink
	case "enable_console":
		return setBool(&cfg.EnableConsole, key, value)
	case "console_target":
		cfg.ConsoleTarget = value
	case "console_color":
		return setBool(&cfg.ConsoleColor, key, value)

	// Formatting
	case "file_format":
		cfg.FileFormat = value
	case "console_format":
		cfg.ConsoleFormat = value
	case "timestamp_format":
		cfg.TimestampFormat = value
	case "show_source":
		return setBool(&cfg.ShowSource, key, value)

	// Heartbeat
	case "heartbeat_interval_s":
		return setInt(&cfg.HeartbeatIntervalS, key, value)

	// Internal diagnostics
	case "internal_errors_to_stderr":
		return setBool(&cfg.InternalErrorsToStderr, key, value)
	case "diagnostics_file":
		cfg.DiagnosticsFile = value
	case "diagnostics_max_size_mb":
		return setInt(&cfg.DiagnosticsMaxSizeMB, key, value)

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}

func setInt(dst *int64, key, value string) error {
	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
	}
	*dst = intVal
	return nil
}

func setBool(dst *bool, key, value string) error {
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
	}
	*dst = boolVal
	return nil
}
