// FILE: lixenwraith/logsink/server/http.go
// Package server exposes the ingestion pipeline over HTTP and raw TCP.
package server

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/lixenwraith/logsink"
	"github.com/lixenwraith/logsink/compat"
	"github.com/lixenwraith/logsink/metrics"
)

// Routes
const (
	PathLogger  = "/logger"
	PathHealth  = "/health"
	PathLogs    = "/logs"
	PathMetrics = "/metrics"
)

// HeaderRequestID is echoed back, or generated when the client sends none
const HeaderRequestID = "X-Request-ID"

// HTTP serves the ingestion API on fasthttp
type HTTP struct {
	pipeline *logsink.Pipeline
	ingest   *ingestor
	metrics  *metrics.Metrics
	server   *fasthttp.Server

	metricsHandler fasthttp.RequestHandler
}

// HTTPOption customizes an HTTP server
type HTTPOption func(*HTTP)

// WithMetrics records request metrics and serves them on /metrics
func WithMetrics(m *metrics.Metrics) HTTPOption {
	return func(h *HTTP) {
		h.metrics = m
	}
}

// WithClock overrides the clock used for response timestamps and the default /logs date
func WithClock(now func() time.Time) HTTPOption {
	return func(h *HTTP) {
		h.ingest.now = now
	}
}

// NewHTTP builds a server over a pipeline. Timeouts and body limits come
// from the pipeline configuration.
func NewHTTP(p *logsink.Pipeline, opts ...HTTPOption) (*HTTP, error) {
	h := &HTTP{
		pipeline: p,
		ingest:   newIngestor(p),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.metrics != nil {
		h.metricsHandler = fasthttpadaptor.NewFastHTTPHandler(h.metrics.Handler())
	}

	adapter, err := compat.NewBuilder().WithPipeline(p).BuildFastHTTP()
	if err != nil {
		return nil, err
	}

	cfg := p.Config()
	h.server = &fasthttp.Server{
		Name:                  "logsink",
		Handler:               h.Handler(),
		Logger:                adapter,
		ReadTimeout:           time.Duration(cfg.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout:          time.Duration(cfg.WriteTimeoutMs) * time.Millisecond,
		MaxRequestBodySize:    int(cfg.MaxBodyKB) * 1024,
		NoDefaultServerHeader: true,
		CloseOnShutdown:       true,
	}

	return h, nil
}

// Handler returns the routed request handler with request-id, recovery and metrics middleware
func (h *HTTP) Handler() fasthttp.RequestHandler {
	return h.instrument(h.route)
}

// Serve accepts connections on ln until Shutdown
func (h *HTTP) Serve(ln net.Listener) error {
	return h.server.Serve(ln)
}

// ListenAndServe listens on a TCP address until Shutdown
func (h *HTTP) ListenAndServe(addr string) error {
	return h.server.ListenAndServe(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (h *HTTP) Shutdown(ctx context.Context) error {
	return h.server.ShutdownWithContext(ctx)
}

func (h *HTTP) route(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case PathLogger:
		if !allow(ctx, fasthttp.MethodPost) {
			return
		}
		h.handleLogger(ctx)
	case PathHealth:
		if !allow(ctx, fasthttp.MethodGet) {
			return
		}
		h.handleHealth(ctx)
	case PathLogs:
		if !allow(ctx, fasthttp.MethodGet) {
			return
		}
		h.handleLogs(ctx)
	case PathMetrics:
		if h.metricsHandler == nil {
			writeError(ctx, fasthttp.StatusNotFound, "not found")
			return
		}
		if !allow(ctx, fasthttp.MethodGet) {
			return
		}
		h.metricsHandler(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

// instrument wraps a handler with request ids, panic recovery and metrics
func (h *HTTP) instrument(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()

		requestID := string(ctx.Request.Header.Peek(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Response.Header.Set(HeaderRequestID, requestID)

		defer func() {
			if r := recover(); r != nil {
				ctx.Response.Reset()
				ctx.Response.Header.Set(HeaderRequestID, requestID)
				writeError(ctx, fasthttp.StatusInternalServerError, h.ingest.fail(r))
			}
			if h.metrics != nil {
				h.metrics.ObserveRequest(metricPath(ctx), ctx.Response.StatusCode(), time.Since(start))
			}
		}()

		next(ctx)
	}
}

// metricPath bounds label cardinality to the known routes
func metricPath(ctx *fasthttp.RequestCtx) string {
	switch p := string(ctx.Path()); p {
	case PathLogger, PathHealth, PathLogs, PathMetrics:
		return p
	default:
		return "other"
	}
}

func allow(ctx *fasthttp.RequestCtx, method string) bool {
	if string(ctx.Method()) == method {
		return true
	}
	ctx.Response.Header.Set(fasthttp.HeaderAllow, method)
	writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
	return false
}
