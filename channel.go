package logmanager

import (
	"sync"
	"sync/atomic"
	"time"
)

// EnqueueOutcome is the result of offering a record to a Channel
type EnqueueOutcome int

const (
	Accepted EnqueueOutcome = iota
	DroppedOverflow
)

func (o EnqueueOutcome) String() string {
	if o == Accepted {
		return "accepted"
	}
	return "dropped_overflow"
}

// ChannelConfig holds the construction parameters of a Channel
type ChannelConfig struct {
	// Queue capacity, at least 1
	Capacity int
	// Longest time Enqueue waits on a full queue before dropping, 0 never waits
	EnqueueTimeout time.Duration
	// Interval between periodic sink syncs
	FlushInterval time.Duration
	// Receives non-fatal failures, may be nil
	OnAnomaly func(format string, args ...any)
}

// entry is one queued record
type entry struct {
	data []byte
	ts   time.Time
}

// Channel is a bounded FIFO of formatted records drained by one worker
// goroutine into a Sink. Producers never perform I/O.
type Channel struct {
	name           string
	sink           Sink
	queue          chan entry
	enqueueTimeout time.Duration
	flushInterval  time.Duration
	anomaly        func(format string, args ...any)

	mu     sync.RWMutex // guards closed and close(queue) against concurrent sends
	closed bool

	flushRequestChan chan chan struct{}
	taskChan         chan func()
	flushMutex       sync.Mutex
	shutdownCalled   atomic.Bool
	abandon          atomic.Bool
	done             chan struct{}
	closeErr         error // set by the worker before done is closed

	accepted atomic.Uint64
	dropped  atomic.Uint64
	written  atomic.Uint64
	failures atomic.Uint64
}

// ChannelStats is a snapshot of a channel's counters
type ChannelStats struct {
	Name          string
	Accepted      uint64
	Dropped       uint64
	Written       uint64
	WriteFailures uint64
	Queued        int
}

// NewChannel creates the channel and starts its worker
func NewChannel(name string, sink Sink, cfg ChannelConfig) *Channel {
	if cfg.Capacity <= 0 {
		cfg.Capacity = int(DefaultConfig().BufferSize)
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Duration(DefaultConfig().FlushIntervalMs) * time.Millisecond
	}
	if cfg.EnqueueTimeout < 0 {
		cfg.EnqueueTimeout = 0
	}
	if cfg.EnqueueTimeout > maxEnqueueTimeout {
		cfg.EnqueueTimeout = maxEnqueueTimeout
	}
	if cfg.OnAnomaly == nil {
		cfg.OnAnomaly = func(string, ...any) {}
	}

	c := &Channel{
		name:             name,
		sink:             sink,
		queue:            make(chan entry, cfg.Capacity),
		enqueueTimeout:   cfg.EnqueueTimeout,
		flushInterval:    cfg.FlushInterval,
		anomaly:          cfg.OnAnomaly,
		flushRequestChan: make(chan chan struct{}, 1),
		taskChan:         make(chan func()),
		done:             make(chan struct{}),
	}
	go c.processRecords()
	return c
}

// Name returns the channel name
func (c *Channel) Name() string {
	return c.name
}

// Enqueue offers a record without blocking on I/O. When the queue is full the
// incoming record is dropped and counted; queued records keep their order.
// After Shutdown every record is dropped.
func (c *Channel) Enqueue(p []byte, ts time.Time) EnqueueOutcome {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		c.dropped.Add(1)
		return DroppedOverflow
	}

	e := entry{data: p, ts: ts}
	select {
	case c.queue <- e:
		c.accepted.Add(1)
		return Accepted
	default:
	}

	if c.enqueueTimeout > 0 {
		timer := time.NewTimer(c.enqueueTimeout)
		defer timer.Stop()
		select {
		case c.queue <- e:
			c.accepted.Add(1)
			return Accepted
		case <-timer.C:
		}
	}

	c.dropped.Add(1)
	return DroppedOverflow
}

// processRecords is the worker loop, the only code that touches the sink
func (c *Channel) processRecords() {
	defer close(c.done)

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-c.queue:
			if !ok {
				c.finish()
				return
			}
			c.processEntry(e)

		case <-ticker.C:
			c.syncSink()

		case confirmChan := <-c.flushRequestChan:
			c.handleFlushRequest(confirmChan)

		case task := <-c.taskChan:
			task()
		}
	}
}

// processEntry writes one record, counting the outcome
func (c *Channel) processEntry(e entry) {
	if c.abandon.Load() {
		c.dropped.Add(1)
		return
	}
	if err := c.sink.Write(e.data, e.ts); err != nil {
		c.failures.Add(1)
		c.anomaly("%s sink write failed: %v", c.name, err)
		return
	}
	c.written.Add(1)
}

// handleFlushRequest drains what is queued, syncs, then confirms
func (c *Channel) handleFlushRequest(confirmChan chan struct{}) {
	for n := len(c.queue); n > 0; n-- {
		e, ok := <-c.queue
		if !ok {
			break
		}
		c.processEntry(e)
	}
	c.syncSink()
	close(confirmChan)
}

func (c *Channel) syncSink() {
	if err := c.sink.Sync(); err != nil {
		c.anomaly("%s sink sync failed: %v", c.name, err)
	}
}

// finish closes the sink once the queue is drained
func (c *Channel) finish() {
	if err := c.sink.Close(); err != nil {
		c.anomaly("%s sink close failed: %v", c.name, err)
		c.closeErr = err
	}
}

// Flush waits until every record queued before the call is written and the
// sink is synced, or the timeout elapses
func (c *Channel) Flush(timeout time.Duration) error {
	c.flushMutex.Lock()
	defer c.flushMutex.Unlock()

	if c.shutdownCalled.Load() {
		return fmtErrorf("%s channel: %w", c.name, ErrChannelClosed)
	}

	confirmChan := make(chan struct{})

	select {
	case c.flushRequestChan <- confirmChan:
	case <-c.done:
		return fmtErrorf("%s channel: %w", c.name, ErrChannelClosed)
	case <-time.After(minWaitTime): // Short timeout to prevent blocking if the worker is stuck
		return fmtErrorf("failed to send flush request to %s worker (possible deadlock or high load)", c.name)
	}

	select {
	case <-confirmChan:
		return nil
	case <-c.done:
		return nil
	case <-time.After(timeout):
		return fmtErrorf("timeout waiting for %s flush confirmation (%v)", c.name, timeout)
	}
}

// runOnWorker runs fn on the worker goroutine, between two records, and
// returns its error. It fails if the worker has exited or is busy past timeout.
func (c *Channel) runOnWorker(fn func() error, timeout time.Duration) error {
	result := make(chan error, 1)
	task := func() { result <- fn() }

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case c.taskChan <- task:
	case <-c.done:
		return fmtErrorf("%s channel: %w", c.name, ErrChannelClosed)
	case <-timer.C:
		return fmtErrorf("timeout waiting for %s worker (%v)", c.name, timeout)
	}
	return <-result
}

// Shutdown stops accepting records, lets the worker drain the queue and close
// the sink, and waits up to timeout (default 5s). On timeout whatever is
// still queued is discarded and counted as dropped at once, even while the
// worker is blocked in the sink. Only the first call acts.
func (c *Channel) Shutdown(timeout ...time.Duration) error {
	if !c.shutdownCalled.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	c.closed = true
	close(c.queue)
	c.mu.Unlock()

	effectiveTimeout := defaultShutdownTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		effectiveTimeout = timeout[0]
	}

	timer := time.NewTimer(effectiveTimeout)
	defer timer.Stop()

	select {
	case <-c.done:
		if c.closeErr != nil {
			return fmtErrorf("failed to close %s sink: %w", c.name, c.closeErr)
		}
		return nil
	case <-timer.C:
		c.abandon.Store(true)
		// The queue is closed, so this receives only what the worker has not taken
		discarded := 0
		for range c.queue {
			c.dropped.Add(1)
			discarded++
		}
		c.anomaly("%s worker did not drain within %v, discarded %d queued records", c.name, effectiveTimeout, discarded)
		return fmtErrorf("%s worker did not exit within timeout (%v)", c.name, effectiveTimeout)
	}
}

// Done is closed when the worker has exited
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Stats returns a snapshot of the channel counters
func (c *Channel) Stats() ChannelStats {
	return ChannelStats{
		Name:          c.name,
		Accepted:      c.accepted.Load(),
		Dropped:       c.dropped.Load(),
		Written:       c.written.Load(),
		WriteFailures: c.failures.Load(),
		Queued:        len(c.queue),
	}
}
