// FILE: lixenwraith/logmanager/heartbeat.go
package logmanager

import (
	"fmt"
	"runtime"
	"time"
)

// startHeartbeat emits a stats record every interval until stop is closed
func (m *Manager) startHeartbeat(interval time.Duration) {
	m.heartbeatStop = make(chan struct{})
	m.heartbeatDone = make(chan struct{})

	go func() {
		defer close(m.heartbeatDone)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.heartbeatStop:
				return
			case <-ticker.C:
				m.logHeartbeat()
			}
		}
	}()
}

// stopHeartbeat stops the heartbeat goroutine and waits for it
func (m *Manager) stopHeartbeat() {
	if m.heartbeatStop == nil {
		return
	}
	close(m.heartbeatStop)
	<-m.heartbeatDone
}

// logHeartbeat dispatches the pipeline counters like any other record
func (m *Manager) logHeartbeat() {
	sequence := m.heartbeatSequence.Add(1)
	s := m.Stats()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	// Interval drops are reported once; the total stays in the channel counters
	dropped := s.Dropped()
	droppedInInterval := dropped - m.lastDropped
	m.lastDropped = dropped

	args := []any{
		"sequence", sequence,
		"uptime_hours", fmt.Sprintf("%.2f", s.Uptime.Hours()),
		"written_logs", s.File.Written,
		"total_dropped_logs", dropped,
		"write_failures", s.File.WriteFailures + s.Console.WriteFailures,
		"rotated_files", s.Rotations,
		"deleted_files", s.Deletions,
		"alloc_mb", fmt.Sprintf("%.2f", float64(memStats.Alloc)/(1000*1000)),
		"num_goroutine", runtime.NumGoroutine(),
	}
	if droppedInInterval > 0 {
		args = append(args, "dropped_since_last", droppedInInterval)
	}

	m.dispatcher.Log(LevelInfo, sourceHeartbeat, "heartbeat", args...)
}
