package logmanager

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/logmanager/formatter"
)

func TestSeverityFilter(t *testing.T) {
	errorFilter := SeverityFilter{Minimum: LevelError}
	infoFilter := SeverityFilter{Minimum: LevelInfo}

	assert.False(t, errorFilter.Allows(LevelWarn))
	assert.True(t, errorFilter.Allows(LevelError))
	assert.True(t, infoFilter.Allows(LevelWarn))
	assert.False(t, infoFilter.Allows(LevelDebug))
	assert.True(t, SeverityFilter{Minimum: LevelTrace}.Allows(LevelTrace))
}

// newTestDispatcher binds one recording sink per filter level
func newTestDispatcher(t *testing.T, levels ...Level) (*Dispatcher, []*recordingSink) {
	t.Helper()
	var bindings []Binding
	var sinks []*recordingSink
	for _, level := range levels {
		sink := &recordingSink{}
		sinks = append(sinks, sink)
		bindings = append(bindings, Binding{
			Filter:  SeverityFilter{Minimum: level},
			Channel: NewChannel(level.String(), sink, ChannelConfig{Capacity: 100}),
		})
	}
	d := NewDispatcher(bindings...)
	t.Cleanup(func() { _ = d.Shutdown(time.Second) })
	return d, sinks
}

func TestDispatcherPerSinkFiltering(t *testing.T) {
	d, sinks := newTestDispatcher(t, LevelError, LevelInfo)

	accepted := d.Dispatch(Record{Time: time.Now(), Level: LevelWarn, Source: "test", Message: "warned"})
	assert.Equal(t, 1, accepted)
	require.NoError(t, d.Shutdown(time.Second))

	errorWrites, _, _ := sinks[0].snapshot()
	infoWrites, _, _ := sinks[1].snapshot()
	assert.Empty(t, errorWrites)
	require.Len(t, infoWrites, 1)
	assert.Contains(t, infoWrites[0], " WARN test: warned")
}

func TestDispatcherFormatsPerBinding(t *testing.T) {
	plainSink := &recordingSink{}
	colorSink := &recordingSink{}
	d := NewDispatcher(
		Binding{
			Filter:    SeverityFilter{Minimum: LevelTrace},
			Formatter: formatter.New(),
			Channel:   NewChannel("file", plainSink, ChannelConfig{Capacity: 10}),
		},
		Binding{
			Filter:    SeverityFilter{Minimum: LevelTrace},
			Formatter: formatter.New().Color(true),
			Channel:   NewChannel("console", colorSink, ChannelConfig{Capacity: 10}),
		},
	)

	d.Log(LevelError, "db", "down")
	require.NoError(t, d.Shutdown(time.Second))

	plain, _, _ := plainSink.snapshot()
	color, _, _ := colorSink.snapshot()
	require.Len(t, plain, 1)
	require.Len(t, color, 1)
	assert.NotContains(t, plain[0], "\x1b[")
	assert.Contains(t, color[0], "\x1b[31mERROR\x1b[0m")
}

func TestDispatcherFullSinkDoesNotStallOthers(t *testing.T) {
	stuck := newGatedSink()
	fast := &recordingSink{}
	d := NewDispatcher(
		Binding{Filter: SeverityFilter{Minimum: LevelTrace}, Channel: NewChannel("stuck", stuck, ChannelConfig{Capacity: 1})},
		Binding{Filter: SeverityFilter{Minimum: LevelTrace}, Channel: NewChannel("fast", fast, ChannelConfig{Capacity: 1000})},
	)

	d.Log(LevelInfo, "test", "first")
	<-stuck.started

	start := time.Now()
	for i := 0; i < 100; i++ {
		d.Log(LevelInfo, "test", "more")
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	close(stuck.gate)
	require.NoError(t, d.Shutdown(time.Second))

	fastWrites, _, _ := fast.snapshot()
	assert.Len(t, fastWrites, 101)

	stuckStats := d.Bindings()[0].Channel.Stats()
	assert.Equal(t, uint64(2), stuckStats.Written)
	assert.Equal(t, uint64(99), stuckStats.Dropped)
}

func TestDispatcherConcurrentProducers(t *testing.T) {
	d, sinks := newTestDispatcher(t, LevelTrace)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				d.Log(LevelInfo, "worker", "tick", "j", j)
			}
		}()
	}
	wg.Wait()
	require.NoError(t, d.Flush(time.Second))

	writes, _, _ := sinks[0].snapshot()
	assert.Len(t, writes, 80)
	for _, w := range writes {
		assert.True(t, strings.HasSuffix(w, "\n"))
	}
}

func TestDispatcherEnabled(t *testing.T) {
	d, _ := newTestDispatcher(t, LevelWarn, LevelError)
	assert.False(t, d.Enabled(LevelInfo))
	assert.True(t, d.Enabled(LevelWarn))

	empty := NewDispatcher()
	assert.False(t, empty.Enabled(LevelError))
	assert.Zero(t, empty.Dispatch(Record{Level: LevelError}))
	assert.NoError(t, empty.Shutdown())
}

func TestDispatcherBindingsAreImmutable(t *testing.T) {
	sink := &recordingSink{}
	bindings := []Binding{{Filter: SeverityFilter{Minimum: LevelError}, Channel: NewChannel("a", sink, ChannelConfig{Capacity: 10})}}
	d := NewDispatcher(bindings...)
	defer d.Shutdown()

	bindings[0].Filter.Minimum = LevelTrace
	assert.False(t, d.Enabled(LevelInfo))

	copied := d.Bindings()
	copied[0].Filter.Minimum = LevelTrace
	assert.False(t, d.Enabled(LevelInfo))
}
