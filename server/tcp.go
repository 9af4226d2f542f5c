// FILE: lixenwraith/logsink/server/tcp.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/panjf2000/gnet/v2"

	"github.com/lixenwraith/logsink"
	"github.com/lixenwraith/logsink/compat"
	"github.com/lixenwraith/logsink/metrics"
)

// DefaultMaxLineBytes bounds a single TCP line without its newline
const DefaultMaxLineBytes = 64 * 1024

// TCP outcome labels
const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeInvalid  = "invalid"
)

// TCP ingests newline-delimited entries over raw TCP with gnet.
// A line is either plain text or a JSON object with message, source and level.
type TCP struct {
	gnet.BuiltinEventEngine

	pipeline *logsink.Pipeline
	ingest   *ingestor
	metrics  *metrics.Metrics
	maxLine  int

	mu     sync.Mutex
	engine gnet.Engine
	booted chan struct{}
	done   chan error
}

// TCPOption customizes a TCP server
type TCPOption func(*TCP)

// WithTCPMetrics counts received lines by outcome
func WithTCPMetrics(m *metrics.Metrics) TCPOption {
	return func(t *TCP) {
		t.metrics = m
	}
}

// WithMaxLineBytes overrides the line length limit
func WithMaxLineBytes(n int) TCPOption {
	return func(t *TCP) {
		if n > 0 {
			t.maxLine = n
		}
	}
}

// NewTCP creates a TCP ingest server over a pipeline
func NewTCP(p *logsink.Pipeline, opts ...TCPOption) *TCP {
	t := &TCP{
		pipeline: p,
		ingest:   newIngestor(p),
		maxLine:  DefaultMaxLineBytes,
		booted:   make(chan struct{}),
		done:     make(chan error, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start runs the gnet engine in the background and waits until it is listening
func (t *TCP) Start(ctx context.Context, addr string) error {
	adapter, err := compat.NewBuilder().
		WithPipeline(t.pipeline).
		BuildStructuredGnet(compat.WithFatalHandler(func(msg string) {
			t.pipeline.Echo(logsink.SeverityCritical, "TCP engine failure: "+msg)
		}))
	if err != nil {
		return err
	}

	go func() {
		t.done <- gnet.Run(t, "tcp://"+addr,
			gnet.WithMulticore(true),
			gnet.WithReuseAddr(true),
			gnet.WithLogger(adapter),
		)
	}()

	select {
	case <-t.booted:
		return nil
	case err := <-t.done:
		if err == nil {
			err = errors.New("engine exited before boot")
		}
		return fmt.Errorf("tcp ingest on %s: %w", addr, err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop shuts the engine down and waits for Run to return
func (t *TCP) Stop(ctx context.Context) error {
	t.mu.Lock()
	eng := t.engine
	t.mu.Unlock()

	if err := eng.Stop(ctx); err != nil {
		return err
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnBoot implements gnet.EventHandler
func (t *TCP) OnBoot(eng gnet.Engine) gnet.Action {
	t.mu.Lock()
	t.engine = eng
	t.mu.Unlock()
	close(t.booted)
	return gnet.None
}

// OnTraffic consumes every complete line and leaves a partial tail buffered
func (t *TCP) OnTraffic(c gnet.Conn) gnet.Action {
	buf, err := c.Peek(-1)
	if err != nil {
		return gnet.Close
	}

	consumed := 0
	for {
		idx := bytes.IndexByte(buf[consumed:], '\n')
		if idx < 0 {
			break
		}
		t.handleLine(c, buf[consumed:consumed+idx])
		consumed += idx + 1
	}

	if _, err := c.Discard(consumed); err != nil {
		return gnet.Close
	}

	if len(buf)-consumed > t.maxLine {
		t.pipeline.Echo(logsink.SeverityWarning,
			fmt.Sprintf("TCP line from %s exceeds %d bytes, closing connection", c.RemoteAddr(), t.maxLine))
		return gnet.Close
	}
	return gnet.None
}

// handleLine ingests one line; the slice is only valid during the call
func (t *TCP) handleLine(c gnet.Conn, line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}

	if len(line) > t.maxLine {
		t.observe(outcomeInvalid)
		return
	}

	sub := Submission{RemoteIP: connIP(c)}
	if line[0] == '{' {
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			// Echoed and counted, never persisted
			t.observe(outcomeInvalid)
			t.pipeline.Echo(logsink.SeverityWarning,
				fmt.Sprintf("Malformed JSON line from %s: %v", sub.RemoteIP, err))
			return
		}
		applyObject(&sub, obj)
	} else {
		sub.Message = string(line)
	}

	if err := t.ingest.ready(); err != nil {
		t.observe(outcomeRejected)
		return
	}

	_, err := t.ingest.submit(sub)
	switch {
	case err == nil:
		t.observe(outcomeAccepted)
	case errors.Is(err, errNoMessage):
		t.observe(outcomeInvalid)
	case errors.Is(err, errQueueFull), errors.Is(err, errShuttingDown):
		t.observe(outcomeRejected)
	default:
		t.observe(outcomeInvalid)
		t.ingest.fail(err)
	}
}

func (t *TCP) observe(outcome string) {
	if t.metrics != nil {
		t.metrics.ObserveTCPLine(outcome)
	}
}

func connIP(c gnet.Conn) string {
	if addr, ok := c.RemoteAddr().(*net.TCPAddr); ok && addr.IP != nil {
		return addr.IP.String()
	}
	return DefaultRemoteIP
}
