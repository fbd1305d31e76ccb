package compat

import (
	"time"

	"github.com/lixenwraith/logmanager"
)

// Target is what the adapters emit into. *logmanager.Registry,
// *logmanager.Dispatcher and *logmanager.Manager all satisfy it.
type Target interface {
	Log(level logmanager.Level, source, msg string, fields ...any)
	Enabled(level logmanager.Level) bool
	Flush(timeout time.Duration) error
}

var (
	_ Target = (*logmanager.Registry)(nil)
	_ Target = (*logmanager.Dispatcher)(nil)
	_ Target = (*logmanager.Manager)(nil)
)

// fatalFlushTimeout bounds the flush before a fatal handler runs
const fatalFlushTimeout = 100 * time.Millisecond
