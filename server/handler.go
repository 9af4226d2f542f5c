// FILE: lixenwraith/logsink/server/handler.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/logsink"
	"github.com/lixenwraith/logsink/formatter"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleLogger ingests one entry from the query string and body
func (h *HTTP) handleLogger(ctx *fasthttp.RequestCtx) {
	if err := h.ingest.ready(); err != nil {
		h.writeIngestError(ctx, err)
		return
	}

	sub, err := decodeSubmission(ctx)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, h.ingest.fail(err))
		return
	}

	receipt, err := h.ingest.submit(sub)
	if err != nil {
		h.writeIngestError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, receipt)
}

func (h *HTTP) writeIngestError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, errNoMessage):
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
	case errors.Is(err, errQueueFull), errors.Is(err, errShuttingDown):
		writeError(ctx, fasthttp.StatusServiceUnavailable, err.Error())
	default:
		writeError(ctx, fasthttp.StatusInternalServerError, h.ingest.fail(err))
	}
}

func (h *HTTP) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, healthResponse{
		Status:    "running",
		Timestamp: h.ingest.now().Format(logsink.ResponseTimestampFormat),
	})
}

// handleLogs lists the parsed lines of one day, today by default
func (h *HTTP) handleLogs(ctx *fasthttp.RequestCtx) {
	date := string(ctx.QueryArgs().Peek("date"))
	if date == "" {
		date = h.ingest.now().Format(logsink.DateLayout)
	}
	if !logsink.ValidDate(date) {
		writeError(ctx, fasthttp.StatusBadRequest, msgBadDate)
		return
	}

	records, err := h.pipeline.Sink().ReadDay(date)
	if err != nil {
		h.pipeline.Echo(logsink.SeverityError, fmt.Sprintf("Error while reading log file: %v", err))
		writeError(ctx, fasthttp.StatusInternalServerError, msgReadFailed)
		return
	}
	if records == nil {
		records = []formatter.Record{}
	}
	writeJSON(ctx, fasthttp.StatusOK, records)
}

// decodeSubmission reads source and level from the query string and the
// message from the body. JSON object keys override query values when present.
func decodeSubmission(ctx *fasthttp.RequestCtx) (Submission, error) {
	args := ctx.QueryArgs()
	sub := Submission{
		Source:   string(args.Peek("source")),
		Level:    string(args.Peek("level")),
		RemoteIP: remoteIP(ctx),
	}

	body := ctx.PostBody()
	if !isJSON(ctx.Request.Header.ContentType()) {
		sub.Message = string(body)
		return sub, nil
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return sub, fmt.Errorf("malformed JSON body: %w", err)
	}
	if data == nil {
		return sub, nil
	}

	obj, ok := data.(map[string]any)
	if !ok {
		return sub, fmt.Errorf("JSON body must be an object, got %T", data)
	}
	applyObject(&sub, obj)
	return sub, nil
}

// applyObject copies message, source and level from a decoded JSON object.
// A present but falsy value clears the field so the default applies.
func applyObject(sub *Submission, obj map[string]any) {
	if v, ok := obj["message"]; ok {
		sub.Message = textOf(v)
	}
	if v, ok := obj["source"]; ok {
		sub.Source = textOf(v)
	}
	if v, ok := obj["level"]; ok {
		sub.Level = textOf(v)
	}
}

func textOf(v any) string {
	if !formatter.Truthy(v) {
		return ""
	}
	return formatter.Value(v)
}

// isJSON matches application/json and application/*+json
func isJSON(contentType []byte) bool {
	mime, _, _ := strings.Cut(string(contentType), ";")
	mime = strings.ToLower(strings.TrimSpace(mime))
	return mime == "application/json" ||
		(strings.HasPrefix(mime, "application/") && strings.HasSuffix(mime, "+json"))
}

// remoteIP prefers the first X-Forwarded-For element over the peer address
func remoteIP(ctx *fasthttp.RequestCtx) string {
	if xff := ctx.Request.Header.Peek(fasthttp.HeaderXForwardedFor); len(xff) > 0 {
		first, _, _ := strings.Cut(string(xff), ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	ip := ctx.RemoteIP()
	if ip == nil || ip.IsUnspecified() {
		return DefaultRemoteIP
	}
	return ip.String()
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = fasthttp.StatusInternalServerError
		body = []byte(`{"error":"response encoding failed"}`)
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(append(body, '\n'))
}

func writeError(ctx *fasthttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, errorResponse{Error: msg})
}
