package logmanager

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryInstallOnce(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Installed())
	assert.Nil(t, r.Dispatcher())
	assert.NoError(t, r.Flush(time.Second), "flush before install is a no-op")

	first := NewDispatcher()
	second := NewDispatcher()
	require.NoError(t, r.Install(first))
	assert.ErrorIs(t, r.Install(second), ErrSinkInstallationFailed)
	assert.ErrorIs(t, r.Install(nil), ErrSinkInstallationFailed)
	assert.Same(t, first, r.Dispatcher())
}

func TestRegistryUninstallOnlyClearsOwnDispatcher(t *testing.T) {
	r := NewRegistry()
	installed := NewDispatcher()
	other := NewDispatcher()
	require.NoError(t, r.Install(installed))

	r.uninstall(other)
	assert.Same(t, installed, r.Dispatcher())

	r.uninstall(installed)
	assert.False(t, r.Installed())
}

func TestRegistryConcurrentInstall(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Install(NewDispatcher()) == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestRegistryRouting(t *testing.T) {
	r := NewRegistry()
	r.Log(LevelError, "test", "before install")
	assert.Equal(t, uint64(1), r.Unrouted())
	assert.False(t, r.Enabled(LevelError))

	sink := &recordingSink{}
	d := NewDispatcher(Binding{
		Filter:  SeverityFilter{Minimum: LevelInfo},
		Channel: NewChannel("test", sink, ChannelConfig{Capacity: 10}),
	})
	require.NoError(t, r.Install(d))

	r.Log(LevelInfo, "test", "routed")
	r.Emit(Record{Time: time.Now(), Level: LevelDebug, Source: "test", Message: "filtered"})
	r.LogTrace(1, LevelWarn, "test", "traced")
	require.NoError(t, r.Flush(time.Second))
	require.NoError(t, d.Shutdown())

	writes, _, _ := sink.snapshot()
	require.Len(t, writes, 2)
	assert.Contains(t, writes[0], "test: routed")
	assert.Contains(t, writes[1], "TestRegistryRouting traced")
	assert.Equal(t, uint64(1), r.Unrouted())
}
