package logmanager

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// diagnostics receives the manager's own non-fatal anomalies: write and sync
// failures, retention deletion failures and shutdown timeouts. Reports are
// counted even when the output is discarded.
type diagnostics struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	count  atomic.Uint64
}

// newDiagnostics picks the output from the configuration: a size-rotated
// file, stderr, or nothing. An explicit writer overrides all of them.
func newDiagnostics(cfg *Config, override io.Writer) *diagnostics {
	d := &diagnostics{w: io.Discard}
	switch {
	case override != nil:
		d.w = override
	case cfg.DiagnosticsFile != "":
		lj := &lumberjack.Logger{
			Filename:   cfg.DiagnosticsFile,
			MaxSize:    int(cfg.DiagnosticsMaxSizeMB),
			MaxBackups: 3,
		}
		d.w = lj
		d.closer = lj
	case cfg.InternalErrorsToStderr:
		d.w = os.Stderr
	}
	return d
}

// report writes one diagnostic line
func (d *diagnostics) report(format string, args ...any) {
	d.count.Add(1)

	if !strings.HasPrefix(format, "logmanager: ") {
		format = "logmanager: " + format
	}
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, time.Now().UTC().Format(time.RFC3339)+" "+format, args...)
}

// Count returns the number of reports so far
func (d *diagnostics) Count() uint64 {
	return d.count.Load()
}

func (d *diagnostics) close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.w = io.Discard
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}
