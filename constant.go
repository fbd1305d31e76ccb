// FILE: lixenwraith/logmanager/constant.go
package logmanager

import (
	"time"
)

// Log level constants, ordered TRACE < DEBUG < INFO < WARN < ERROR
const (
	LevelTrace Level = -8
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// Rotation policies
const (
	RotationMinutely Rotation = iota
	RotationHourly
	RotationDaily
	RotationNever
)

// Bucket layouts, fixed width so lexical order equals chronological order
const (
	layoutMinutely = "2006-01-02-15-04"
	layoutHourly   = "2006-01-02-15"
	layoutDaily    = "2006-01-02"
)

// Channel and worker defaults
const (
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
	// Upper bound a producer may spend waiting on a full queue
	maxEnqueueTimeout = 100 * time.Millisecond
	// Shutdown wait when no timeout is given
	defaultShutdownTimeout = 5 * time.Second
)

// Sources used for records the pipeline emits about itself
const (
	sourceManager   = "logmanager"
	sourceHeartbeat = "logmanager.heartbeat"
)

const fileMode = 0644
