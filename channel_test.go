package logmanager

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink stores every write. When gate is set, each write waits on it
// after signaling started once.
type recordingSink struct {
	mu      sync.Mutex
	writes  []string
	syncs   int
	closes  int
	failOn  string
	gate    chan struct{}
	started chan struct{}
	once    sync.Once
}

func newGatedSink() *recordingSink {
	return &recordingSink{gate: make(chan struct{}), started: make(chan struct{})}
}

func (s *recordingSink) Write(p []byte, _ time.Time) error {
	if s.gate != nil {
		s.once.Do(func() { close(s.started) })
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && string(p) == s.failOn {
		return errors.New("injected failure")
	}
	s.writes = append(s.writes, string(p))
	return nil
}

func (s *recordingSink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncs++
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *recordingSink) snapshot() ([]string, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...), s.syncs, s.closes
}

func TestChannelOverflowDropsNewest(t *testing.T) {
	sink := newGatedSink()
	c := NewChannel("test", sink, ChannelConfig{Capacity: 4, FlushInterval: time.Hour})

	// The first record occupies the worker, the next four fill the queue
	require.Equal(t, Accepted, c.Enqueue([]byte("r0"), time.Now()))
	<-sink.started
	for i := 1; i <= 4; i++ {
		require.Equal(t, Accepted, c.Enqueue([]byte("r"+strconv.Itoa(i)), time.Now()))
	}

	start := time.Now()
	for i := 5; i < 8; i++ {
		assert.Equal(t, DroppedOverflow, c.Enqueue([]byte("r"+strconv.Itoa(i)), time.Now()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond, "overflow must not block producers")

	stats := c.Stats()
	assert.Equal(t, uint64(5), stats.Accepted)
	assert.Equal(t, uint64(3), stats.Dropped)
	assert.Equal(t, 4, stats.Queued)

	close(sink.gate)
	require.NoError(t, c.Shutdown(time.Second))

	writes, _, closes := sink.snapshot()
	assert.Equal(t, []string{"r0", "r1", "r2", "r3", "r4"}, writes)
	assert.Equal(t, 1, closes)
	assert.Equal(t, uint64(5), c.Stats().Written)
}

func TestChannelEnqueueTimeoutIsBounded(t *testing.T) {
	sink := newGatedSink()
	c := NewChannel("test", sink, ChannelConfig{Capacity: 1, EnqueueTimeout: 20 * time.Millisecond})

	c.Enqueue([]byte("busy"), time.Now())
	<-sink.started
	c.Enqueue([]byte("queued"), time.Now())

	start := time.Now()
	assert.Equal(t, DroppedOverflow, c.Enqueue([]byte("late"), time.Now()))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
	assert.Less(t, elapsed, maxEnqueueTimeout+50*time.Millisecond)

	close(sink.gate)
	require.NoError(t, c.Shutdown(time.Second))
}

func TestChannelEnqueueTimeoutIsCapped(t *testing.T) {
	c := NewChannel("test", &recordingSink{}, ChannelConfig{Capacity: 1, EnqueueTimeout: time.Hour})
	defer c.Shutdown()
	assert.Equal(t, maxEnqueueTimeout, c.enqueueTimeout)
}

func TestChannelFIFOPerProducer(t *testing.T) {
	sink := &recordingSink{}
	c := NewChannel("test", sink, ChannelConfig{Capacity: 10000})

	const producers, perProducer = 8, 200
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				c.Enqueue([]byte(fmt.Sprintf("%d:%d", p, i)), time.Now())
			}
		}()
	}
	wg.Wait()
	require.NoError(t, c.Shutdown(5*time.Second))

	writes, _, _ := sink.snapshot()
	require.Len(t, writes, producers*perProducer)

	next := make(map[string]int)
	for _, w := range writes {
		producer, seq, ok := strings.Cut(w, ":")
		require.True(t, ok)
		n, err := strconv.Atoi(seq)
		require.NoError(t, err)
		assert.Equal(t, next[producer], n, "producer %s out of order", producer)
		next[producer] = n + 1
	}
}

func TestChannelShutdownDrainsExactlyOnce(t *testing.T) {
	sink := &recordingSink{}
	c := NewChannel("test", sink, ChannelConfig{Capacity: 100, FlushInterval: time.Hour})

	for i := 0; i < 50; i++ {
		require.Equal(t, Accepted, c.Enqueue([]byte(strconv.Itoa(i)), time.Now()))
	}

	require.NoError(t, c.Shutdown(time.Second))
	require.NoError(t, c.Shutdown(time.Second), "second shutdown is a no-op")

	select {
	case <-c.Done():
	default:
		t.Fatal("worker did not exit")
	}

	writes, _, closes := sink.snapshot()
	assert.Len(t, writes, 50)
	assert.Equal(t, 1, closes)

	assert.Equal(t, DroppedOverflow, c.Enqueue([]byte("after"), time.Now()))
	stats := c.Stats()
	assert.Equal(t, uint64(50), stats.Written)
	assert.Equal(t, uint64(1), stats.Dropped)
}

func TestChannelShutdownTimeoutDiscards(t *testing.T) {
	sink := newGatedSink()
	var anomalies atomic.Int32
	c := NewChannel("test", sink, ChannelConfig{
		Capacity:  10,
		OnAnomaly: func(string, ...any) { anomalies.Add(1) },
	})

	c.Enqueue([]byte("stuck"), time.Now())
	<-sink.started
	for i := 0; i < 3; i++ {
		c.Enqueue([]byte("queued"), time.Now())
	}

	err := c.Shutdown(20 * time.Millisecond)
	require.Error(t, err)
	assert.Positive(t, anomalies.Load())

	close(sink.gate)
	<-c.Done()

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Written)
	assert.Equal(t, uint64(3), stats.Dropped)
}

func TestChannelShutdownTimeoutCountsWhileSinkBlocked(t *testing.T) {
	sink := newGatedSink()
	c := NewChannel("test", sink, ChannelConfig{Capacity: 10})
	defer func() {
		close(sink.gate)
		<-c.Done()
	}()

	c.Enqueue([]byte("stuck"), time.Now())
	<-sink.started
	for i := 0; i < 4; i++ {
		c.Enqueue([]byte("queued"), time.Now())
	}

	require.Error(t, c.Shutdown(50*time.Millisecond))

	// The worker is still inside Write
	stats := c.Stats()
	assert.Equal(t, uint64(4), stats.Dropped)
	assert.Zero(t, stats.Queued)
	assert.Zero(t, stats.Written)
}

func TestChannelWriteFailureIsContained(t *testing.T) {
	sink := &recordingSink{failOn: "bad"}
	var reported atomic.Int32
	c := NewChannel("test", sink, ChannelConfig{
		Capacity:  10,
		OnAnomaly: func(string, ...any) { reported.Add(1) },
	})

	c.Enqueue([]byte("good1"), time.Now())
	c.Enqueue([]byte("bad"), time.Now())
	c.Enqueue([]byte("good2"), time.Now())
	require.NoError(t, c.Shutdown(time.Second))

	writes, _, _ := sink.snapshot()
	assert.Equal(t, []string{"good1", "good2"}, writes)
	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.WriteFailures)
	assert.Equal(t, uint64(2), stats.Written)
	assert.Equal(t, int32(1), reported.Load())
}

func TestChannelFlush(t *testing.T) {
	sink := &recordingSink{}
	c := NewChannel("test", sink, ChannelConfig{Capacity: 100, FlushInterval: time.Hour})

	for i := 0; i < 10; i++ {
		c.Enqueue([]byte(strconv.Itoa(i)), time.Now())
	}
	require.NoError(t, c.Flush(time.Second))

	writes, syncs, _ := sink.snapshot()
	assert.Len(t, writes, 10)
	assert.GreaterOrEqual(t, syncs, 1)

	require.NoError(t, c.Shutdown())
	assert.ErrorIs(t, c.Flush(time.Second), ErrChannelClosed)
}

func TestChannelPeriodicSync(t *testing.T) {
	sink := &recordingSink{}
	c := NewChannel("test", sink, ChannelConfig{Capacity: 10, FlushInterval: 5 * time.Millisecond})
	defer c.Shutdown()

	assert.Eventually(t, func() bool {
		_, syncs, _ := sink.snapshot()
		return syncs >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestEnqueueOutcomeString(t *testing.T) {
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "dropped_overflow", DroppedOverflow.String())
}
