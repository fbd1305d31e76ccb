package logmanager

import (
	"time"

	"github.com/lixenwraith/logmanager/formatter"
)

// Record is one log event as produced by the application. It is treated as
// immutable once handed to a Dispatcher; each binding formats its own copy.
type Record struct {
	Time    time.Time
	Level   Level
	Source  string
	Message string
	Fields  []any  // alternating key, value
	Trace   string // optional call trace
}

// NewRecord stamps a record with the current time
func NewRecord(level Level, source, message string, fields ...any) Record {
	return Record{
		Time:    time.Now(),
		Level:   level,
		Source:  source,
		Message: message,
		Fields:  fields,
	}
}

// entry converts the record to the formatter's view
func (r Record) entry() formatter.Entry {
	return formatter.Entry{
		Time:    r.Time,
		Level:   int64(r.Level),
		Source:  r.Source,
		Message: r.Message,
		Trace:   r.Trace,
		Fields:  r.Fields,
	}
}
