package logmanager

import (
	"strings"
	"time"
)

// Rotation is the granularity at which a new log file is started.
type Rotation int

// BucketID names one rotation window. IDs of the same rotation compare
// chronologically under plain string comparison.
type BucketID string

// String returns the upper-case rotation name
func (r Rotation) String() string {
	switch r {
	case RotationMinutely:
		return "MINUTELY"
	case RotationHourly:
		return "HOURLY"
	case RotationDaily:
		return "DAILY"
	case RotationNever:
		return "NEVER"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler
func (r Rotation) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseRotation
func (r *Rotation) UnmarshalText(text []byte) error {
	parsed, err := ParseRotation(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRotation converts MINUTELY, HOURLY, DAILY or NEVER (any case) to a Rotation
func ParseRotation(s string) (Rotation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MINUTELY":
		return RotationMinutely, nil
	case "HOURLY":
		return RotationHourly, nil
	case "DAILY":
		return RotationDaily, nil
	case "NEVER":
		return RotationNever, nil
	default:
		return 0, fmtErrorf("%w: '%s' (use MINUTELY, HOURLY, DAILY, NEVER)", ErrInvalidRotationFileFormat, s)
	}
}

func (r Rotation) valid() bool {
	return r >= RotationMinutely && r <= RotationNever
}

// layout returns the time layout of the rotation's bucket, empty for NEVER
func (r Rotation) layout() string {
	switch r {
	case RotationMinutely:
		return layoutMinutely
	case RotationHourly:
		return layoutHourly
	case RotationDaily:
		return layoutDaily
	default:
		return ""
	}
}

// Truncate returns the start of the window containing t, in UTC.
// NEVER has a single window and returns the zero time.
func (r Rotation) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch r {
	case RotationMinutely:
		return t.Truncate(time.Minute)
	case RotationHourly:
		return t.Truncate(time.Hour)
	case RotationDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}
	}
}

// Next returns the start of the window following the one containing t.
// NEVER has no next window and returns the zero time.
func (r Rotation) Next(t time.Time) time.Time {
	start := r.Truncate(t)
	switch r {
	case RotationMinutely:
		return start.Add(time.Minute)
	case RotationHourly:
		return start.Add(time.Hour)
	case RotationDaily:
		return start.AddDate(0, 0, 1)
	default:
		return time.Time{}
	}
}

// BucketFor returns the bucket an event at t belongs to.
// Two timestamps share a bucket iff they fall in the same UTC window.
func BucketFor(t time.Time, r Rotation) BucketID {
	layout := r.layout()
	if layout == "" {
		return ""
	}
	return BucketID(r.Truncate(t).Format(layout))
}

// Crossed reports whether t falls in a later window than the bucket current
func Crossed(current BucketID, t time.Time, r Rotation) bool {
	return BucketFor(t, r) > current
}

// parseBucket validates id against the rotation's layout
func (r Rotation) parseBucket(id string) (time.Time, bool) {
	layout := r.layout()
	if layout == "" {
		return time.Time{}, id == ""
	}
	if len(id) != len(layout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(layout, id, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FileName builds the on-disk name of a bucket, joining the non-empty parts with '.'
func FileName(prefix string, bucket BucketID, suffix string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, string(bucket), suffix} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// parseFileName extracts the bucket embedded in name. ok is false when name
// does not follow the naming scheme for prefix, suffix and rotation.
func parseFileName(name, prefix, suffix string, r Rotation) (BucketID, bool) {
	if r == RotationNever {
		return "", name == FileName(prefix, "", suffix)
	}
	rest := name
	if prefix != "" {
		if !strings.HasPrefix(rest, prefix+".") {
			return "", false
		}
		rest = rest[len(prefix)+1:]
	}
	if suffix != "" {
		if !strings.HasSuffix(rest, "."+suffix) {
			return "", false
		}
		rest = rest[:len(rest)-len(suffix)-1]
	}
	if _, ok := r.parseBucket(rest); !ok {
		return "", false
	}
	return BucketID(rest), true
}
