// FILE: lixenwraith/logsink/cmd/logsink/stress.go
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
)

// stressOptions shape the generated load
type stressOptions struct {
	url            string
	workers        int
	bursts         int
	perBurst       int
	maxMessageSize int
	timeout        time.Duration
}

// stressResult counts responses by outcome
type stressResult struct {
	accepted atomic.Int64 // 200
	rejected atomic.Int64 // 503
	invalid  atomic.Int64 // other 4xx/5xx
	failed   atomic.Int64 // transport errors
	bursts   atomic.Int64
}

var stressLevels = []string{"debug", "info", "warning", "error", "critical"}

func newStressCmd() *cobra.Command {
	opts := &stressOptions{}

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Send bursts of entries to a running server",
		Long: `Send bursts of random entries to POST /logger from concurrent workers
and report how many were accepted, rejected with 503 or failed. Useful for
sizing LOG_QUEUE_MAX_SIZE.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			_, err := runStress(ctx, cmd.OutOrStdout(), opts)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "http://127.0.0.1:5000", "server base URL")
	cmd.Flags().IntVar(&opts.workers, "workers", 50, "concurrent workers")
	cmd.Flags().IntVar(&opts.bursts, "bursts", 100, "total bursts")
	cmd.Flags().IntVar(&opts.perBurst, "per-burst", 100, "entries per burst")
	cmd.Flags().IntVar(&opts.maxMessageSize, "max-size", 1000, "maximum message size in bytes")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "per request timeout")

	return cmd
}

func generateRandomMessage(rng *rand.Rand, size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rng.Intn(len(chars))])
	}
	return sb.String()
}

// sendBurst posts one burst of entries
func sendBurst(client *fasthttp.Client, opts *stressOptions, rng *rand.Rand, burstID int, res *stressResult) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	for i := 0; i < opts.perBurst; i++ {
		level := stressLevels[rng.Intn(len(stressLevels))]
		msg := generateRandomMessage(rng, rng.Intn(opts.maxMessageSize)+10)

		req.Reset()
		req.Header.SetMethod(fasthttp.MethodPost)
		req.SetRequestURI(fmt.Sprintf("%s/logger?source=stress-%d&level=%s", opts.url, burstID, level))
		req.Header.SetContentType("text/plain")
		req.SetBodyString(msg)

		if err := client.DoTimeout(req, resp, opts.timeout); err != nil {
			res.failed.Add(1)
			continue
		}

		switch resp.StatusCode() {
		case fasthttp.StatusOK:
			res.accepted.Add(1)
		case fasthttp.StatusServiceUnavailable:
			res.rejected.Add(1)
		default:
			res.invalid.Add(1)
		}
	}
}

func runStress(ctx context.Context, out io.Writer, opts *stressOptions) (*stressResult, error) {
	if opts.workers <= 0 || opts.bursts <= 0 || opts.perBurst <= 0 || opts.maxMessageSize <= 0 {
		return nil, fmt.Errorf("workers, bursts, per-burst and max-size must be positive")
	}
	opts.url = strings.TrimRight(opts.url, "/")

	fmt.Fprintln(out, "--- logsink stress test ---")
	fmt.Fprintf(out, "Target %s: %d workers, %d bursts, %d entries/burst\n",
		opts.url, opts.workers, opts.bursts, opts.perBurst)

	client := &fasthttp.Client{MaxConnsPerHost: opts.workers}
	res := &stressResult{}

	burstChan := make(chan int, opts.workers)
	var wg sync.WaitGroup
	for w := 0; w < opts.workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for burstID := range burstChan {
				sendBurst(client, opts, rng, burstID, res)
				res.bursts.Add(1)
			}
		}(time.Now().UnixNano() + int64(w))
	}

	start := time.Now()
submit:
	for i := 1; i <= opts.bursts; i++ {
		select {
		case burstChan <- i:
		case <-ctx.Done():
			fmt.Fprintln(out, "Interrupted, halting burst submission")
			break submit
		}
	}
	close(burstChan)
	wg.Wait()
	duration := time.Since(start)

	fmt.Fprintf(out, "Completed %d/%d bursts in %v\n", res.bursts.Load(), opts.bursts, duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Accepted: %d  Rejected (503): %d  Invalid: %d  Failed: %d\n",
		res.accepted.Load(), res.rejected.Load(), res.invalid.Load(), res.failed.Load())
	if duration > 0 {
		fmt.Fprintf(out, "Approximate accepted/sec: %.2f\n", float64(res.accepted.Load())/duration.Seconds())
	}

	return res, nil
}
