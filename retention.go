package logmanager

import (
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"
)

// Retention bounds the number of bucket files kept in a directory.
// It is invoked only from the write path of the owning RollingWriter.
type Retention struct {
	dir      string
	prefix   string
	suffix   string
	rotation Rotation
	maxFiles int

	anomaly func(format string, args ...any)

	deletions atomic.Uint64
	anomalies atomic.Uint64
}

// NewRetention creates an enforcer for files named prefix.<bucket>.suffix in dir.
// maxFiles 0 disables deletion.
func NewRetention(dir, prefix, suffix string, rotation Rotation, maxFiles int) *Retention {
	return &Retention{
		dir:      dir,
		prefix:   prefix,
		suffix:   suffix,
		rotation: rotation,
		maxFiles: maxFiles,
		anomaly:  func(string, ...any) {},
	}
}

// logFileMeta is one retention candidate
type logFileMeta struct {
	name    string
	bucket  BucketID
	modTime time.Time
}

// Enforce deletes the oldest bucket files until at most maxFiles-1 remain
// besides the open one. The open bucket is never deleted. Deletion failures
// are reported as anomalies and do not fail the pass.
func (r *Retention) Enforce(current BucketID) (int, error) {
	if r.maxFiles <= 0 {
		return 0, nil
	}

	logs, err := r.candidates(current)
	if err != nil {
		r.report("failed to list log directory '%s' for retention: %v", r.dir, err)
		return 0, fmtErrorf("failed to read log directory '%s' for retention: %w", r.dir, err)
	}

	keep := r.maxFiles - 1
	deleted := 0
	for i := 0; len(logs)-i > keep; i++ {
		filePath := filepath.Join(r.dir, logs[i].name)
		if err := os.Remove(filePath); err != nil {
			if !os.IsNotExist(err) {
				r.report("failed to remove old log file '%s': %v", filePath, err)
			} else {
				r.report("old log file '%s' already removed", filePath)
			}
			continue
		}
		deleted++
		r.deletions.Add(1)
	}
	return deleted, nil
}

// candidates lists closed bucket files ordered oldest first.
// Files sharing a bucket are ordered by modification time, then name.
func (r *Retention) candidates(current BucketID) ([]logFileMeta, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}

	var logs []logFileMeta
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		bucket, ok := parseFileName(entry.Name(), r.prefix, r.suffix, r.rotation)
		if !ok || bucket == current {
			continue
		}
		meta := logFileMeta{name: entry.Name(), bucket: bucket}
		if info, errInfo := entry.Info(); errInfo == nil {
			meta.modTime = info.ModTime()
		}
		logs = append(logs, meta)
	}

	sort.Slice(logs, func(i, j int) bool {
		if logs[i].bucket != logs[j].bucket {
			return logs[i].bucket < logs[j].bucket
		}
		if !logs[i].modTime.Equal(logs[j].modTime) {
			return logs[i].modTime.Before(logs[j].modTime)
		}
		return logs[i].name < logs[j].name
	})
	return logs, nil
}

func (r *Retention) report(format string, args ...any) {
	r.anomalies.Add(1)
	r.anomaly(format, args...)
}

// Deletions returns the number of files removed so far
func (r *Retention) Deletions() uint64 {
	return r.deletions.Load()
}

// Anomalies returns the number of non-fatal retention failures so far
func (r *Retention) Anomalies() uint64 {
	return r.anomalies.Load()
}
