package logmanager

import (
	"strconv"
	"strings"
)

// Level is the severity of a record. Higher is more severe.
type Level int64

// String returns the upper-case level name
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "LEVEL(" + strconv.FormatInt(int64(l), 10) + ")"
	}
}

// MarshalText implements encoding.TextMarshaler
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseLevel
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel converts a level name to its Level.
// Names are case-insensitive. The digits 1 to 5 are accepted as ERROR through TRACE.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "5":
		return LevelTrace, nil
	case "debug", "4":
		return LevelDebug, nil
	case "info", "3":
		return LevelInfo, nil
	case "warn", "warning", "2":
		return LevelWarn, nil
	case "error", "1":
		return LevelError, nil
	default:
		return 0, fmtErrorf("%w: '%s' (use trace, debug, info, warn, error)", ErrInvalidLogLevelFormat, s)
	}
}

// validLevel reports whether l is one of the five defined levels
func validLevel(l Level) bool {
	switch l {
	case LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	}
	return false
}
