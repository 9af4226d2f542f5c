// FILE: lixenwraith/logsink/server/tcp_test.go
package server

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/logsink"
	"github.com/lixenwraith/logsink/metrics"
)

// freeAddr reserves and releases a loopback port for the engine to bind
func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func startTCP(t *testing.T, p *logsink.Pipeline, opts ...TCPOption) (*TCP, string) {
	t.Helper()
	srv := NewTCP(p, opts...)
	addr := freeAddr(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Start(ctx, addr))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})
	return srv, addr
}

func TestTCPIngest(t *testing.T) {
	_, p, _ := createTestServer(t)
	m := metrics.New(p)
	srv, addr := startTCP(t, p, WithTCPMetrics(m))

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	payload := "plain line one\r\n" +
		`{"message":"json line","source":"billing","level":"warning"}` + "\n" +
		"\n" +
		`{"message":""}` + "\n" +
		"split "
	_, err = conn.Write([]byte(payload))
	require.NoError(t, err)

	// Complete the partial line in a second write
	time.Sleep(20 * time.Millisecond)
	_, err = conn.Write([]byte("across writes\n"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return p.Stats().Accepted == 3
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, conn.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, p.Shutdown())

	records, err := p.Sink().ReadDay(time.Now().Format(logsink.DateLayout))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "INFO", records[0].Level)
	require.NotNil(t, records[0].Source)
	assert.Equal(t, "unknown", *records[0].Source)
	require.NotNil(t, records[0].RemoteIP)
	assert.Equal(t, "127.0.0.1", *records[0].RemoteIP)
	assert.Equal(t, "plain line one", records[0].Message)

	assert.Equal(t, "WARNING", records[1].Level)
	assert.Equal(t, "billing", *records[1].Source)
	assert.Equal(t, "json line", records[1].Message)

	assert.Equal(t, "split across writes", records[2].Message)

	assert.Equal(t, 3.0, tcpOutcome(t, m, outcomeAccepted))
	assert.Equal(t, 1.0, tcpOutcome(t, m, outcomeInvalid))
}

func TestTCPLineLimit(t *testing.T) {
	t.Run("oversized complete line is skipped", func(t *testing.T) {
		_, p, _ := createTestServer(t)
		_, addr := startTCP(t, p, WithMaxLineBytes(16))

		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.Write([]byte("0123456789abcdefXYZ\nok\n"))
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			return p.Stats().Accepted == 1
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("unterminated overflow closes the connection", func(t *testing.T) {
		_, p, console := createTestServer(t)
		_, addr := startTCP(t, p, WithMaxLineBytes(16))

		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.Write([]byte(strings.Repeat("x", 64)))
		require.NoError(t, err)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, err = conn.Read(make([]byte, 1))
		assert.Error(t, err, "server should close the connection")

		assert.Contains(t, console.String(), "exceeds 16 bytes, closing connection")
		assert.Equal(t, uint64(0), p.Stats().Accepted)
	})
}

func TestTCPMalformedJSONNotPersisted(t *testing.T) {
	_, p, console := createTestServer(t)
	m := metrics.New(p)
	_, addr := startTCP(t, p, WithTCPMetrics(m))

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(strings.Repeat("{broken\n", 20) + "after\n"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return p.Stats().Accepted == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, p.Shutdown())

	records, err := p.Sink().ReadDay(time.Now().Format(logsink.DateLayout))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "after", records[0].Message)

	assert.Equal(t, 20.0, tcpOutcome(t, m, outcomeInvalid))
	assert.Contains(t, console.String(), "Malformed JSON line from 127.0.0.1")
}

func TestTCPAfterShutdown(t *testing.T) {
	_, p, _ := createTestServer(t)
	m := metrics.New(p)
	_, addr := startTCP(t, p, WithTCPMetrics(m))
	require.NoError(t, p.Shutdown())

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("too late\n"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return tcpOutcome(t, m, outcomeRejected) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

// tcpOutcome reads the TCP line counter for one outcome from the registry
func tcpOutcome(t *testing.T, m *metrics.Metrics, outcome string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != "logsink_tcp_lines_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
