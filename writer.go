package logmanager

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

// RollingWriter appends records to the file of the current rotation bucket.
// It is owned by exactly one goroutine, the file channel's worker. Only the
// counters may be read concurrently.
type RollingWriter struct {
	dir       string
	prefix    string
	suffix    string
	rotation  Rotation
	retention *Retention

	current BucketID
	opened  bool
	file    *os.File
	path    string

	anomaly func(format string, args ...any)

	rotations atomic.Uint64
	bytes     atomic.Int64
}

// NewRollingWriter creates a writer for dir. No file is opened until the first
// Open or Write.
func NewRollingWriter(dir, prefix, suffix string, rotation Rotation, maxFiles int) *RollingWriter {
	return &RollingWriter{
		dir:       dir,
		prefix:    prefix,
		suffix:    suffix,
		rotation:  rotation,
		retention: NewRetention(dir, prefix, suffix, rotation, maxFiles),
		anomaly:   func(string, ...any) {},
	}
}

// setAnomalyHandler routes non-fatal failures of the writer and its retention
func (w *RollingWriter) setAnomalyHandler(fn func(format string, args ...any)) {
	if fn == nil {
		return
	}
	w.anomaly = fn
	w.retention.anomaly = fn
}

// Open ensures the bucket file for ts is open, rotating if needed
func (w *RollingWriter) Open(ts time.Time) error {
	candidate := BucketFor(ts, w.rotation)
	// Late records stay in the open bucket, an older bucket is never reopened
	if w.opened && candidate < w.current {
		candidate = w.current
	}
	if w.file != nil && candidate == w.current {
		return nil
	}
	return w.rotate(candidate)
}

// Write appends p to the file of ts's bucket, rotating and enforcing
// retention when the bucket changes. A failed write is reported once and not
// retried; the next call recomputes the bucket and tries again.
func (w *RollingWriter) Write(p []byte, ts time.Time) error {
	if err := w.Open(ts); err != nil {
		return err
	}
	n, err := w.file.Write(p)
	w.bytes.Add(int64(n))
	if err != nil {
		return newWriteError("write", w.path, err)
	}
	return nil
}

// rotate closes the open file, opens candidate's file and runs retention
func (w *RollingWriter) rotate(candidate BucketID) error {
	if w.file != nil {
		w.closeFile()
	}

	fullPath := filepath.Join(w.dir, FileName(w.prefix, candidate, w.suffix))
	file, err := os.OpenFile(fullPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return newWriteError("open", fullPath, err)
	}

	if w.opened && candidate != w.current {
		w.rotations.Add(1)
	}
	w.file = file
	w.path = fullPath
	w.current = candidate
	w.opened = true

	// Retention failures are reported as anomalies by the enforcer
	_, _ = w.retention.Enforce(candidate)
	return nil
}

// closeFile syncs and closes the open file, reporting failures as anomalies
func (w *RollingWriter) closeFile() {
	if err := w.file.Sync(); err != nil {
		w.anomaly("failed to sync log file '%s' before close: %v", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		w.anomaly("failed to close log file '%s': %v", w.path, err)
	}
	w.file = nil
}

// Sync flushes the open file to stable storage
func (w *RollingWriter) Sync() error {
	if w.file == nil {
		return nil
	}
	if err := w.file.Sync(); err != nil {
		return newWriteError("sync", w.path, err)
	}
	return nil
}

// Close syncs and closes the open file. The writer reopens on the next Write.
func (w *RollingWriter) Close() error {
	if w.file == nil {
		return nil
	}
	var finalErr error
	if err := w.file.Sync(); err != nil {
		finalErr = newWriteError("sync", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		finalErr = combineErrors(finalErr, newWriteError("close", w.path, err))
	}
	w.file = nil
	return finalErr
}

// Current returns the bucket of the most recently opened file
func (w *RollingWriter) Current() BucketID {
	return w.current
}

// Path returns the path of the most recently opened file
func (w *RollingWriter) Path() string {
	return w.path
}

// Rotations returns the number of bucket changes so far
func (w *RollingWriter) Rotations() uint64 {
	return w.rotations.Load()
}

// Retention returns the writer's retention enforcer
func (w *RollingWriter) Retention() *Retention {
	return w.retention
}
