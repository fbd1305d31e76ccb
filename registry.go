package logmanager

import (
	"sync/atomic"
	"time"
)

// Registry is the slot a process installs its Dispatcher into. The slot is
// set at most once; it is passed explicitly to code that emits records, with
// DefaultRegistry for package-level helpers.
type Registry struct {
	dispatcher atomic.Pointer[Dispatcher]
	unrouted   atomic.Uint64 // records emitted before installation
}

var defaultRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns the process-wide registry
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Install sets d as the registry's dispatcher. A second install fails with
// ErrSinkInstallationFailed and leaves the first dispatcher in place.
func (r *Registry) Install(d *Dispatcher) error {
	if d == nil {
		return fmtErrorf("%w: dispatcher cannot be nil", ErrSinkInstallationFailed)
	}
	if !r.dispatcher.CompareAndSwap(nil, d) {
		return fmtErrorf("%w: a dispatcher is already installed", ErrSinkInstallationFailed)
	}
	return nil
}

// uninstall clears d if it is still the installed dispatcher. It only rolls
// back a construction that failed right after Install.
func (r *Registry) uninstall(d *Dispatcher) {
	r.dispatcher.CompareAndSwap(d, nil)
}

// Installed reports whether a dispatcher has been installed
func (r *Registry) Installed() bool {
	return r.dispatcher.Load() != nil
}

// Dispatcher returns the installed dispatcher or nil
func (r *Registry) Dispatcher() *Dispatcher {
	return r.dispatcher.Load()
}

// Emit dispatches a prepared record, counting it as unrouted when nothing is installed
func (r *Registry) Emit(rec Record) {
	d := r.dispatcher.Load()
	if d == nil {
		r.unrouted.Add(1)
		return
	}
	d.Dispatch(rec)
}

// Log emits a record stamped now
func (r *Registry) Log(level Level, source, msg string, fields ...any) {
	r.Emit(NewRecord(level, source, msg, fields...))
}

// LogTrace emits a record carrying a call trace of the given depth (0-10)
func (r *Registry) LogTrace(depth int, level Level, source, msg string, fields ...any) {
	r.logTrace(depth, level, source, msg, fields...)
}

// logTrace must be called directly by the exported entry point so the
// trace starts at that entry point's caller
func (r *Registry) logTrace(depth int, level Level, source, msg string, fields ...any) {
	if !r.Enabled(level) {
		r.Emit(NewRecord(level, source, msg, fields...))
		return
	}
	rec := NewRecord(level, source, msg, fields...)
	rec.Trace = getTrace(int64(depth), 3)
	r.Emit(rec)
}

// Enabled reports whether a record at level would reach any sink
func (r *Registry) Enabled(level Level) bool {
	d := r.dispatcher.Load()
	return d != nil && d.Enabled(level)
}

// Flush flushes the installed dispatcher, a no-op before installation
func (r *Registry) Flush(timeout time.Duration) error {
	d := r.dispatcher.Load()
	if d == nil {
		return nil
	}
	return d.Flush(timeout)
}

// Unrouted returns the number of records emitted before installation
func (r *Registry) Unrouted() uint64 {
	return r.unrouted.Load()
}
