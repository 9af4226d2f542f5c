// FILE: lixenwraith/logsink/type.go
package logsink

import (
	"strconv"
)

// Severity is the level of a single entry
type Severity int

// WriterState is the lifecycle state of a writer goroutine
type WriterState int32

// Entry is one accepted log record, immutable once created.
// Only Text is persisted, rendered into the daily file line.
type Entry struct {
	Severity Severity
	Text     string
}

// String returns the upper-case level name written to files
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "Level " + strconv.Itoa(int(s))
	}
}

// String returns the writer state name
func (s WriterState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
