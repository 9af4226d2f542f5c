// FILE: lixenwraith/logsink/example/embed/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/logsink"
	"github.com/lixenwraith/logsink/compat"
	"github.com/lixenwraith/logsink/formatter"
)

// Embeds a pipeline in an application's own fasthttp server: every request
// becomes a daily-file entry, and fasthttp's internal errors are mirrored too.
func main() {
	pipeline, err := logsink.NewBuilder().
		Directory("./embed_logs").
		FilePrefix("access").
		QueueMaxSize(2048).
		HeartbeatIntervalS(60).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build pipeline: %v\n", err)
		os.Exit(1)
	}
	if err := pipeline.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start pipeline: %v\n", err)
		os.Exit(1)
	}

	fasthttpAdapter, err := compat.NewBuilder().
		WithPipeline(pipeline).
		Mirror(logsink.SeverityError).
		BuildFastHTTP(compat.WithLevelDetector(customLevelDetector))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build adapter: %v\n", err)
		os.Exit(1)
	}

	server := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			requestHandler(pipeline, ctx)
		},
		Logger:       fasthttpAdapter,
		Name:         "EmbedExample",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Stop accepting requests, then drain the queue and exit 0
	pipeline.RegisterSignalHandlers(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.ShutdownWithContext(ctx)
	})

	fmt.Println("Starting server on :8080, entries go to ./embed_logs")
	if err := server.ListenAndServe(":8080"); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
	}
	_ = pipeline.Shutdown()
}

func requestHandler(pipeline *logsink.Pipeline, ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())

	entry := formatter.Message("embed", ctx.RemoteIP().String(),
		fmt.Sprintf("%s %s", ctx.Method(), ctx.Path()))
	if err := pipeline.Enqueue(logsink.SeverityInfo, entry); err != nil {
		ctx.Response.Header.Set("X-Log-Dropped", "1")
	}
}

func customLevelDetector(msg string) logsink.Severity {
	if strings.Contains(msg, "connection cannot be served") {
		return logsink.SeverityWarning
	}
	if strings.Contains(msg, "error when serving connection") {
		return logsink.SeverityError
	}
	return compat.DetectLogLevel(msg)
}
