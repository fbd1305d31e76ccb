package logmanager

import (
	"sync"
	"time"

	"github.com/lixenwraith/logmanager/formatter"
)

// SeverityFilter drops records below Minimum
type SeverityFilter struct {
	Minimum Level
}

// Allows reports whether a record at level passes the filter
func (f SeverityFilter) Allows(level Level) bool {
	return level >= f.Minimum
}

// Binding routes filtered, formatted records into one channel
type Binding struct {
	Filter    SeverityFilter
	Formatter *formatter.Formatter
	Channel   *Channel
}

// Dispatcher fans records out to a fixed set of bindings. The binding set is
// copied at construction and never changes, so Dispatch needs no locking.
type Dispatcher struct {
	bindings []Binding
}

// NewDispatcher creates a dispatcher over a copy of bindings
func NewDispatcher(bindings ...Binding) *Dispatcher {
	copied := make([]Binding, len(bindings))
	copy(copied, bindings)
	for i := range copied {
		if copied[i].Formatter == nil {
			copied[i].Formatter = formatter.New()
		}
	}
	return &Dispatcher{bindings: copied}
}

// Dispatch formats the record once per accepting binding and enqueues it.
// It returns the number of bindings that accepted the record. Every enqueue
// is non-blocking, so a full channel never stalls the others.
func (d *Dispatcher) Dispatch(r Record) int {
	if r.Time.IsZero() {
		r.Time = time.Now()
	}

	accepted := 0
	var e formatter.Entry
	converted := false
	for _, b := range d.bindings {
		if !b.Filter.Allows(r.Level) {
			continue
		}
		if !converted {
			e = r.entry()
			converted = true
		}
		if b.Channel.Enqueue(b.Formatter.Format(e), r.Time) == Accepted {
			accepted++
		}
	}
	return accepted
}

// Log builds a record stamped now and dispatches it
func (d *Dispatcher) Log(level Level, source, msg string, fields ...any) {
	d.Dispatch(NewRecord(level, source, msg, fields...))
}

// Enabled reports whether any binding accepts level
func (d *Dispatcher) Enabled(level Level) bool {
	for _, b := range d.bindings {
		if b.Filter.Allows(level) {
			return true
		}
	}
	return false
}

// Bindings returns a copy of the binding set
func (d *Dispatcher) Bindings() []Binding {
	copied := make([]Binding, len(d.bindings))
	copy(copied, d.bindings)
	return copied
}

// Flush flushes every channel, each within timeout
func (d *Dispatcher) Flush(timeout time.Duration) error {
	var err error
	for _, b := range d.bindings {
		if flushErr := b.Channel.Flush(timeout); flushErr != nil {
			err = combineErrors(err, flushErr)
		}
	}
	return err
}

// Shutdown shuts every channel down concurrently and waits for all of them
func (d *Dispatcher) Shutdown(timeout ...time.Duration) error {
	errs := make([]error, len(d.bindings))
	var wg sync.WaitGroup
	for i, b := range d.bindings {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = b.Channel.Shutdown(timeout...)
		}()
	}
	wg.Wait()

	var err error
	for _, e := range errs {
		if e != nil {
			err = combineErrors(err, e)
		}
	}
	return err
}
