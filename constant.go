// FILE: lixenwraith/logsink/constant.go
package logsink

import (
	"time"
)

// Severity levels, numerically aligned with the common syslog-style ladder
const (
	SeverityDebug    Severity = 10
	SeverityInfo     Severity = 20
	SeverityWarning  Severity = 30
	SeverityError    Severity = 40
	SeverityCritical Severity = 50
)

// Writer states
const (
	StateRunning  WriterState = 1
	StateDraining WriterState = 2
	StateStopped  WriterState = 3
)

// Queue
const (
	// Capacity used when LOG_QUEUE_MAX_SIZE is absent or not a number
	DefaultQueueMaxSize = 10000
	// Environment variable overriding queue_max_size
	EnvQueueMaxSize = "LOG_QUEUE_MAX_SIZE"
)

// Timers
const (
	// Writer poll interval between shutdown flag checks
	DefaultPollInterval = 500 * time.Millisecond
	// Bound on joining the writer goroutine during Stop
	DefaultJoinTimeout = 2 * time.Second
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
)

// File naming and line layout
const (
	// Date layout used in file names and the /logs date parameter
	DateLayout = "2006-01-02"
	// Timestamp layout of persisted lines, millisecond precision with comma
	DefaultTimestampFormat = "2006-01-02 15:04:05,000"
	// Timestamp layout in HTTP responses
	ResponseTimestampFormat = "2006-01-02 15:04:05"
)
