// FILE: lixenwraith/logsink/timer.go
package logsink

import "time"

// TimerSet holds the optional tickers serviced by a writer between entries
type TimerSet struct {
	syncTicker      *time.Ticker
	heartbeatTicker *time.Ticker
	syncChan        <-chan time.Time
	heartbeatChan   <-chan time.Time
}

// setupWriterTimers creates the tickers enabled by configuration.
// A nil channel never fires, so disabled timers need no special casing.
func (p *Pipeline) setupWriterTimers() *TimerSet {
	timers := &TimerSet{}

	if p.cfg.SyncIntervalMs > 0 {
		timers.syncTicker = time.NewTicker(time.Duration(p.cfg.SyncIntervalMs) * time.Millisecond)
		timers.syncChan = timers.syncTicker.C
	}

	if p.cfg.HeartbeatIntervalS > 0 {
		timers.heartbeatTicker = time.NewTicker(time.Duration(p.cfg.HeartbeatIntervalS) * time.Second)
		timers.heartbeatChan = timers.heartbeatTicker.C
	}

	return timers
}

// closeWriterTimers stops all active tickers
func (p *Pipeline) closeWriterTimers(timers *TimerSet) {
	if timers.syncTicker != nil {
		timers.syncTicker.Stop()
	}
	if timers.heartbeatTicker != nil {
		timers.heartbeatTicker.Stop()
	}
}

// serviceTimers handles any tick that fired without blocking
func (p *Pipeline) serviceTimers(timers *TimerSet) {
	select {
	case <-timers.syncChan:
		p.handleSyncTick()
	default:
	}

	select {
	case <-timers.heartbeatChan:
		p.handleHeartbeat()
	default:
	}
}

// handleSyncTick fsyncs the open daily file
func (p *Pipeline) handleSyncTick() {
	if err := p.sink.Sync(); err != nil {
		p.reportFailure("log file sync failed", err, "")
	}
}
