// FILE: lixenwraith/logsink/cmd/logsink/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/logsink"
	"github.com/lixenwraith/logsink/metrics"
	"github.com/lixenwraith/logsink/server"
)

// listenerShutdownTimeout bounds how long in-flight requests get once a signal arrives
const listenerShutdownTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var httpAddr, tcpAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ingestion server",
		Long: `Run the HTTP ingestion API and, when tcp_address is set, the raw TCP
listener. SIGINT or SIGTERM stops the listeners, drains every queued entry
to disk and exits with status 0.

Environment:
  LOG_QUEUE_MAX_SIZE  queue capacity; non-numeric means 10000, 0 or less is unbounded`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if httpAddr != "" {
				opts.overrides = append(opts.overrides, "http_address="+httpAddr)
			}
			if tcpAddr != "" {
				opts.overrides = append(opts.overrides, "tcp_address="+tcpAddr)
			}

			cfg, err := resolveConfig(opts, os.LookupEnv)
			if err != nil {
				return err
			}
			return serve(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "HTTP listen address (overrides http_address)")
	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "raw TCP listen address (overrides tcp_address)")

	return cmd
}

func serve(out io.Writer, cfg *logsink.Config) error {
	p, err := logsink.NewBuilderFromConfig(cfg).Build()
	if err != nil {
		return err
	}
	if err := p.Start(); err != nil {
		return err
	}

	var httpOpts []server.HTTPOption
	var tcpOpts []server.TCPOption
	if cfg.EnableMetrics {
		m := metrics.New(p)
		httpOpts = append(httpOpts, server.WithMetrics(m))
		tcpOpts = append(tcpOpts, server.WithTCPMetrics(m))
	}

	httpServer, err := server.NewHTTP(p, httpOpts...)
	if err != nil {
		return errors.Join(err, p.Shutdown())
	}

	var tcpServer *server.TCP
	if cfg.TCPAddress != "" {
		tcpServer = server.NewTCP(p, tcpOpts...)
		ctx, cancel := context.WithTimeout(context.Background(), listenerShutdownTimeout)
		err := tcpServer.Start(ctx, cfg.TCPAddress)
		cancel()
		if err != nil {
			return errors.Join(err, p.Shutdown())
		}
	}

	printBanner(out, cfg)

	p.RegisterSignalHandlers(func() {
		ctx, cancel := context.WithTimeout(context.Background(), listenerShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			p.Echo(logsink.SeverityWarning, fmt.Sprintf("HTTP shutdown: %v", err))
		}
		if tcpServer != nil {
			if err := tcpServer.Stop(ctx); err != nil {
				p.Echo(logsink.SeverityWarning, fmt.Sprintf("TCP shutdown: %v", err))
			}
		}
	})

	if err := httpServer.ListenAndServe(cfg.HTTPAddress); err != nil {
		p.Echo(logsink.SeverityCritical, fmt.Sprintf("HTTP listener on %s failed: %v", cfg.HTTPAddress, err))
		return errors.Join(err, p.Shutdown())
	}

	// Listener closed by the signal handler; wait for its drain to finish
	return p.Shutdown()
}

// printBanner lists the endpoints and where the daily files go
func printBanner(w io.Writer, cfg *logsink.Config) {
	dir, err := filepath.Abs(cfg.Directory)
	if err != nil {
		dir = cfg.Directory
	}

	rule := strings.Repeat("=", 42)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "      logsink - Log Ingestion Server")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Status: starting")
	fmt.Fprintf(w, "Listening on: %s\n", cfg.HTTPAddress)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  POST "+server.PathLogger+"?source=<source>&level=<level>")
	fmt.Fprintln(w, "  GET  "+server.PathHealth)
	fmt.Fprintln(w, "  GET  "+server.PathLogs+"?date=YYYY-MM-DD")
	if cfg.EnableMetrics {
		fmt.Fprintln(w, "  GET  "+server.PathMetrics)
	}
	if cfg.TCPAddress != "" {
		fmt.Fprintf(w, "  TCP  %s (newline-delimited)\n", cfg.TCPAddress)
	}
	fmt.Fprintf(w, "Logs stored in: %s\n", dir)
	fmt.Fprintln(w, "Press CTRL+C for a graceful shutdown")
	fmt.Fprintln(w, rule)
}
