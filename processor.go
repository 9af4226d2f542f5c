// FILE: lixenwraith/logsink/processor.go
package logsink

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// shutdownFlag is a set-once signal owned by one writer
type shutdownFlag struct {
	once sync.Once
	ch   chan struct{}
}

func newShutdownFlag() *shutdownFlag {
	return &shutdownFlag{ch: make(chan struct{})}
}

// Set raises the flag; repeated calls are no-ops
func (f *shutdownFlag) Set() {
	f.once.Do(func() { close(f.ch) })
}

// IsSet reports whether the flag has been raised
func (f *shutdownFlag) IsSet() bool {
	select {
	case <-f.ch:
		return true
	default:
		return false
	}
}

// writer is one instance of the background consumer
type writer struct {
	shutdown *shutdownFlag
	exited   chan struct{}
	state    atomic.Int32
}

func newWriter() *writer {
	w := &writer{
		shutdown: newShutdownFlag(),
		exited:   make(chan struct{}),
	}
	w.state.Store(int32(StateRunning))
	return w
}

func (w *writer) alive() bool {
	select {
	case <-w.exited:
		return false
	default:
		return true
	}
}

func (w *writer) State() WriterState {
	return WriterState(w.state.Load())
}

// runWriter is the main consume loop running in its own goroutine.
// Running: dequeue and persist. Once the flag is set it moves to Draining and
// keeps consuming, and it stops only when it observes an empty queue.
func (p *Pipeline) runWriter(w *writer) {
	defer close(w.exited)
	defer w.state.Store(int32(StateStopped))

	timers := p.setupWriterTimers()
	defer p.closeWriterTimers(timers)

	poll := p.cfg.PollInterval()

	for {
		if w.shutdown.IsSet() {
			w.state.CompareAndSwap(int32(StateRunning), int32(StateDraining))
			if p.queue.IsEmpty() {
				p.handleSyncTick()
				return
			}
		}

		if entry, ok := p.queue.DequeueWithTimeout(poll); ok {
			p.processEntry(entry)
		}

		p.serviceTimers(timers)
	}
}

// processEntry persists one entry. Failures are reported and counted, never retried.
func (p *Pipeline) processEntry(entry Entry) {
	defer p.queue.Done()
	defer func() {
		if r := recover(); r != nil {
			p.state.Failed.Add(1)
			p.reportFailure("panic while writing log entry", fmt.Errorf("%v", r), entry.Text)
		}
	}()

	if err := p.sink.Write(entry.Severity, entry.Text); err != nil {
		p.state.Failed.Add(1)
		p.reportFailure("failed to write log entry", err, entry.Text)
		return
	}
	p.state.Written.Add(1)
}

// reportFailure writes a persistence problem to the console, swallowing console failures
func (p *Pipeline) reportFailure(msg string, err error, text string) {
	defer func() {
		_ = recover()
	}()

	event := p.console.Error().Err(err)
	if text != "" {
		event = event.Str("entry", text)
	}
	event.Msg(msg)
}
