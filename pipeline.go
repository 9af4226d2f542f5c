// FILE: lixenwraith/logsink/pipeline.go
package logsink

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Pipeline owns the queue, the daily sink and the single background writer.
// Request handlers only enqueue; the writer is the only one touching the file.
type Pipeline struct {
	cfg     *Config
	queue   *BoundedQueue[Entry]
	sink    *DailySink
	console zerolog.Logger
	state   State

	mu     sync.Mutex // guards writer
	writer *writer

	admit sync.RWMutex // held for writing only while closing admission

	exitHookOnce sync.Once
	signalOnce   sync.Once
	shutdownOnce sync.Once
	shutdownErr  error

	exit func(int)
}

// New creates a stopped pipeline from a validated configuration
func New(cfg *Config) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmtErrorf("configuration cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmtErrorf("invalid configuration: %w", err)
	}
	cfg = cfg.Clone()

	sink, err := NewDailySink(cfg)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:     cfg,
		queue:   NewBoundedQueue[Entry](int(cfg.QueueMaxSize)),
		sink:    sink,
		console: NewConsole(cfg),
		exit:    Exit,
	}
	p.state.StartTime.Store(time.Now())

	return p, nil
}

// Config returns a copy of the pipeline configuration
func (p *Pipeline) Config() *Config {
	return p.cfg.Clone()
}

// Console returns the console logger shared with the service boundary
func (p *Pipeline) Console() *zerolog.Logger {
	return &p.console
}

// SetConsole replaces the console logger. Once a writer has been started the
// console is shared with it and ErrAlreadyStarted is returned.
func (p *Pipeline) SetConsole(logger zerolog.Logger) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Starts.Load() > 0 {
		return ErrAlreadyStarted
	}
	p.console = logger
	return nil
}

// Sink returns the daily file sink
func (p *Pipeline) Sink() *DailySink {
	return p.sink
}

// Queue returns the entry queue
func (p *Pipeline) Queue() *BoundedQueue[Entry] {
	return p.queue
}

// Start spawns the writer unless one is alive. Safe to call concurrently;
// at most one writer exists at any time.
func (p *Pipeline) Start() error {
	if p.state.ShutdownCalled.Load() {
		return ErrShutdown
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer != nil && p.writer.alive() {
		return nil
	}

	w := newWriter()
	p.writer = w
	p.state.Starts.Add(1)
	go p.runWriter(w)

	p.exitHookOnce.Do(func() {
		RegisterExitHook(p.onExit)
	})

	return nil
}

// Stop raises the writer's shutdown flag and waits up to the join timeout
// for it to exit. A writer still draining at the deadline is kept, so Start
// cannot create a second one, and ErrJoinTimeout is returned.
func (p *Pipeline) Stop(joinTimeout ...time.Duration) error {
	p.mu.Lock()
	w := p.writer
	p.mu.Unlock()

	if w == nil {
		return nil
	}

	effectiveTimeout := p.cfg.JoinTimeout()
	if len(joinTimeout) > 0 && joinTimeout[0] > 0 {
		effectiveTimeout = joinTimeout[0]
	}

	w.shutdown.Set()

	timer := time.NewTimer(effectiveTimeout)
	defer timer.Stop()

	select {
	case <-w.exited:
	case <-timer.C:
		return fmtErrorf("writer did not exit within %v: %w", effectiveTimeout, ErrJoinTimeout)
	}

	p.mu.Lock()
	if p.writer == w {
		p.writer = nil
	}
	p.mu.Unlock()

	return nil
}

// IsAlive reports whether a writer goroutine is running
func (p *Pipeline) IsAlive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writer != nil && p.writer.alive()
}

// EnsureStarted restarts the writer if it is not alive
func (p *Pipeline) EnsureStarted() error {
	if p.IsAlive() {
		return nil
	}
	return p.Start()
}

// WriterState returns the state of the current writer, Stopped when there is none
func (p *Pipeline) WriterState() WriterState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		return StateStopped
	}
	return p.writer.State()
}

// Shutdown closes admission, drains every accepted entry, stops the writer and
// closes the sink. The drain is unbounded unless drain_timeout_ms is set.
// Subsequent calls return the first result.
func (p *Pipeline) Shutdown() error {
	p.shutdownOnce.Do(func() {
		p.shutdownErr = p.shutdown()
	})
	return p.shutdownErr
}

func (p *Pipeline) shutdown() error {
	var finalErr error

	// A writer must exist for the drain to make progress
	if err := p.Start(); err != nil && !errors.Is(err, ErrShutdown) {
		finalErr = combineErrors(finalErr, err)
	}

	p.admit.Lock()
	p.state.ShutdownCalled.Store(true)
	p.admit.Unlock()

	p.mu.Lock()
	w := p.writer
	p.mu.Unlock()
	if w != nil {
		w.shutdown.Set()
	}

	if drainTimeout := p.cfg.DrainTimeout(); drainTimeout > 0 {
		if !p.queue.WaitUntilEmptyTimeout(drainTimeout) {
			finalErr = combineErrors(finalErr,
				fmtErrorf("%d entries still pending after %v: %w", p.queue.Pending(), drainTimeout, ErrDrainTimeout))
		}
	} else {
		p.queue.WaitUntilEmpty()
	}

	if err := p.Stop(); err != nil {
		finalErr = combineErrors(finalErr, err)
		// The writer still owns the file; close it once the writer is done
		if w != nil {
			go func() {
				<-w.exited
				_ = p.sink.Close()
			}()
		}
		return finalErr
	}

	if err := p.sink.Close(); err != nil {
		finalErr = combineErrors(finalErr, err)
	}

	return finalErr
}

// onExit is the process exit hook: stop the writer and close the file
// unless a full shutdown already did
func (p *Pipeline) onExit() {
	if p.state.ShutdownCalled.Load() {
		return
	}
	if err := p.Stop(); err != nil {
		p.reportFailure("writer stop on exit failed", err, "")
	}
	if err := p.sink.Close(); err != nil {
		p.reportFailure("log file close on exit failed", err, "")
	}
}

// Stats returns a snapshot of the pipeline counters
func (p *Pipeline) Stats() Stats {
	stats := Stats{
		Accepted:    p.state.Accepted.Load(),
		Rejected:    p.state.Rejected.Load(),
		Written:     p.state.Written.Load(),
		Failed:      p.state.Failed.Load(),
		Starts:      p.state.Starts.Load(),
		Rollovers:   p.sink.Rollovers(),
		QueueLen:    p.queue.Len(),
		QueueCap:    p.queue.Cap(),
		Pending:     p.queue.Pending(),
		Alive:       p.IsAlive(),
		WriterState: p.WriterState(),
	}
	if start := p.state.startTime(); !start.IsZero() {
		stats.Uptime = time.Since(start)
	}
	return stats
}
