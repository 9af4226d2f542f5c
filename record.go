// FILE: lixenwraith/logsink/record.go
package logsink

// Enqueue admits an entry without blocking.
// Returns ErrQueueFull at capacity and ErrShutdown once Shutdown has begun.
func (p *Pipeline) Enqueue(severity Severity, text string) error {
	p.admit.RLock()
	defer p.admit.RUnlock()

	if p.state.ShutdownCalled.Load() {
		p.state.Rejected.Add(1)
		return ErrShutdown
	}

	if !p.queue.TryEnqueue(Entry{Severity: severity, Text: text}) {
		p.state.Rejected.Add(1)
		return ErrQueueFull
	}

	p.state.Accepted.Add(1)
	return nil
}

// TryEnqueue is Enqueue reporting only whether the entry was admitted
func (p *Pipeline) TryEnqueue(entry Entry) bool {
	return p.Enqueue(entry.Severity, entry.Text) == nil
}

// Echo writes a message to the console at its severity
func (p *Pipeline) Echo(severity Severity, text string) {
	consoleLog(&p.console, severity, text)
}
