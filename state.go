// FILE: lixenwraith/logsink/state.go
package logsink

import (
	"sync/atomic"
	"time"
)

// State encapsulates the runtime counters of a pipeline
type State struct {
	Accepted  atomic.Uint64 // Entries admitted to the queue
	Rejected  atomic.Uint64 // Entries refused at capacity or after shutdown
	Written   atomic.Uint64 // Entries persisted by a writer
	Failed    atomic.Uint64 // Entries dequeued but not persisted
	Starts    atomic.Uint64 // Writers spawned over the pipeline lifetime
	Heartbeat atomic.Uint64 // Heartbeat sequence number

	ShutdownCalled atomic.Bool
	StartTime      atomic.Value // stores time.Time
}

// Stats is a point-in-time snapshot of pipeline health
type Stats struct {
	Accepted  uint64
	Rejected  uint64
	Written   uint64
	Failed    uint64
	Starts    uint64
	Rollovers uint64

	QueueLen int
	QueueCap int
	Pending  int

	Alive       bool
	WriterState WriterState
	Uptime      time.Duration
}

func (s *State) startTime() time.Time {
	if t, ok := s.StartTime.Load().(time.Time); ok {
		return t
	}
	return time.Time{}
}
