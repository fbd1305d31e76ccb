// FILE: state.go
package logmanager

import (
	"time"
)

// managerState is the installation state of a Manager. There is no way back
// from installed; shutdown only stops the workers.
type managerState int32

const (
	stateUninitialized managerState = iota
	stateInstalled
)

func (s managerState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateInstalled:
		return "installed"
	default:
		return "unknown"
	}
}

// Stats is a snapshot of a manager's counters
type Stats struct {
	Path     string
	State    string
	Uptime   time.Duration
	ShutDown bool

	File           ChannelStats
	Console        ChannelStats
	ConsoleEnabled bool

	Rotations          uint64 // bucket changes of the rolling writer
	Deletions          uint64 // files removed by retention
	RetentionAnomalies uint64 // failed listings or deletions
	Diagnostics        uint64 // anomaly reports of any kind
	Unrouted           uint64 // records emitted to the registry before installation
}

// Dropped returns the total dropped records across sinks
func (s Stats) Dropped() uint64 {
	return s.File.Dropped + s.Console.Dropped
}

// Stats returns the current counters
func (m *Manager) Stats() Stats {
	s := Stats{
		Path:               m.path,
		State:              managerState(m.state.Load()).String(),
		Uptime:             time.Since(m.startTime),
		ShutDown:           m.shutdownCalled.Load(),
		File:               m.fileChannel.Stats(),
		Rotations:          m.writer.Rotations(),
		Deletions:          m.writer.Retention().Deletions(),
		RetentionAnomalies: m.writer.Retention().Anomalies(),
		Diagnostics:        m.diag.Count(),
		Unrouted:           m.registry.Unrouted(),
	}
	if m.consoleChannel != nil {
		s.ConsoleEnabled = true
		s.Console = m.consoleChannel.Stats()
	}
	return s
}
