// FILE: lixenwraith/logsink/heartbeat.go
package logsink

import (
	"fmt"
	"runtime"
)

// handleHeartbeat writes a pipeline statistics line to the console.
// Heartbeats never enter the daily file.
func (p *Pipeline) handleHeartbeat() {
	defer func() {
		_ = recover()
	}()

	stats := p.Stats()
	sequence := p.state.Heartbeat.Add(1)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	p.console.Info().
		Str("type", "proc").
		Uint64("sequence", sequence).
		Str("uptime_hours", fmt.Sprintf("%.2f", stats.Uptime.Hours())).
		Uint64("accepted", stats.Accepted).
		Uint64("rejected", stats.Rejected).
		Uint64("written", stats.Written).
		Uint64("failed", stats.Failed).
		Uint64("rollovers", stats.Rollovers).
		Int("queue_len", stats.QueueLen).
		Int("pending", stats.Pending).
		Str("writer", stats.WriterState.String()).
		Int("goroutines", runtime.NumGoroutine()).
		Str("alloc_mb", fmt.Sprintf("%.2f", float64(mem.Alloc)/1024/1024)).
		Msg("heartbeat")
}
