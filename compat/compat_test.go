// FILE: lixenwraith/logsink/compat/compat_test.go
package compat

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/logsink"
	"github.com/lixenwraith/logsink/formatter"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimRight(b.buf.String(), "\n"), "\n")
}

// createTestCompatBuilder returns a builder writing to an in-memory console
func createTestCompatBuilder(t *testing.T) (*Builder, *lockedBuffer) {
	t.Helper()
	buf := &lockedBuffer{}
	console := logsink.NewConsoleLogger(buf, "svc", false)
	return NewBuilder().WithConsole(&console), buf
}

// createTestPipeline returns a started pipeline with the console disabled
func createTestPipeline(t *testing.T) *logsink.Pipeline {
	t.Helper()
	p, err := logsink.NewBuilder().
		Directory(t.TempDir()).
		PollInterval(10 * time.Millisecond).
		SyncIntervalMs(0).
		EnableConsole(false).
		Build()
	require.NoError(t, err)
	require.NoError(t, p.Start())
	t.Cleanup(func() { _ = p.Shutdown() })
	return p
}

func readToday(t *testing.T, p *logsink.Pipeline) []formatter.Record {
	t.Helper()
	records, err := p.Sink().ReadDay(time.Now().Format(logsink.DateLayout))
	require.NoError(t, err)
	return records
}

func TestCompatBuilder(t *testing.T) {
	t.Run("with console", func(t *testing.T) {
		builder, _ := createTestCompatBuilder(t)
		adapter, err := builder.BuildGnet()
		require.NoError(t, err)
		assert.NotNil(t, adapter.target.console)
		assert.Nil(t, adapter.target.pipeline)
	})

	t.Run("with pipeline uses its console", func(t *testing.T) {
		p := createTestPipeline(t)
		adapter, err := NewBuilder().WithPipeline(p).BuildFastHTTP()
		require.NoError(t, err)
		assert.Equal(t, p.Console(), adapter.target.console)
		assert.Nil(t, adapter.target.pipeline, "mirroring is opt-in")
	})

	t.Run("nothing to write to", func(t *testing.T) {
		_, err := NewBuilder().BuildGnet()
		assert.Error(t, err)
	})

	t.Run("nil inputs", func(t *testing.T) {
		_, err := NewBuilder().WithPipeline(nil).BuildGnet()
		assert.Error(t, err)

		_, err = NewBuilder().WithConsole(nil).BuildFastHTTP()
		assert.Error(t, err)
	})

	t.Run("mirror without pipeline", func(t *testing.T) {
		builder, _ := createTestCompatBuilder(t)
		_, err := builder.Mirror(logsink.SeverityError).BuildGnet()
		assert.Error(t, err)
	})
}

func TestGnetAdapter(t *testing.T) {
	builder, buf := createTestCompatBuilder(t)

	var fatalMsg string
	adapter, err := builder.BuildGnet(WithFatalHandler(func(msg string) {
		fatalMsg = msg
	}))
	require.NoError(t, err)

	adapter.Debugf("gnet debug id=%d", 1)
	adapter.Infof("gnet info id=%d", 2)
	adapter.Warnf("gnet warn id=%d", 3)
	adapter.Errorf("gnet error id=%d", 4)
	adapter.Fatalf("gnet fatal id=%d", 5)

	expected := []string{
		"- svc - DEBUG - gnet debug id=1",
		"- svc - INFO - gnet info id=2",
		"- svc - WARNING - gnet warn id=3",
		"- svc - ERROR - gnet error id=4",
		"- svc - CRITICAL - gnet fatal id=5",
	}

	lines := buf.Lines()
	require.Len(t, lines, len(expected))
	for i, line := range lines {
		assert.Contains(t, line, expected[i])
		assert.Contains(t, line, "source=gnet")
	}
	assert.Equal(t, "gnet fatal id=5", fatalMsg)
}

func TestStructuredGnetAdapter(t *testing.T) {
	builder, buf := createTestCompatBuilder(t)

	adapter, err := builder.BuildStructuredGnet()
	require.NoError(t, err)

	adapter.Infof("request served status=%d client_ip=%s", 200, "127.0.0.1")
	adapter.Warnf("plain %s message", "formatted")

	lines := buf.Lines()
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], "- svc - INFO - request served")
	assert.Contains(t, lines[0], "status=200")
	assert.Contains(t, lines[0], "client_ip=127.0.0.1")
	assert.Contains(t, lines[0], "source=gnet")

	assert.Contains(t, lines[1], "- svc - WARNING - plain formatted message")
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []any
		msg    string
		fields []any
	}{
		{"labelled verbs", "conn closed fd=%d err: %v", []any{7, "eof"}, "conn closed", []any{"fd", 7, "err", "eof"}},
		{"no labels", "no pairs here %d", []any{1}, "no pairs here 1", nil},
		{"mixed", "accepted %s fd=%d on loop %d", []any{"tcp", 9, 2}, "accepted tcp on loop 2", []any{"fd", 9}},
		{"escaped percent", "load 50%% fd=%d", []any{1}, "load 50%", []any{"fd", 1}},
		{"missing arg", "x=%d y=%d", []any{1}, "x=1 y=%!d(MISSING)", nil},
		{"extra arg", "plain", []any{1}, "plain%!(EXTRA int=1)", nil},
		{"only fields", "fd=%d", []any{3}, "fd=3", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, fields := splitFields(tt.format, tt.args)
			assert.Equal(t, tt.msg, msg)
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestFastHTTPAdapter(t *testing.T) {
	builder, buf := createTestCompatBuilder(t)

	adapter, err := builder.BuildFastHTTP()
	require.NoError(t, err)

	testMessages := []string{
		"this is some informational message",
		"a debug message for the developers",
		"warning: something might be wrong",
		"an error occurred while processing",
		"panic recovered in handler",
	}
	for _, msg := range testMessages {
		adapter.Printf("%s", msg)
	}

	expectedLevels := []string{"INFO", "DEBUG", "WARNING", "ERROR", "CRITICAL"}

	lines := buf.Lines()
	require.Len(t, lines, len(testMessages))
	for i, line := range lines {
		assert.Contains(t, line, "- svc - "+expectedLevels[i]+" - "+testMessages[i])
		assert.Contains(t, line, "source=fasthttp")
	}
}

func TestFastHTTPAdapterOptions(t *testing.T) {
	builder, buf := createTestCompatBuilder(t)

	adapter, err := builder.BuildFastHTTP(
		WithLevelDetector(func(string) logsink.Severity { return 0 }),
		WithDefaultLevel(logsink.SeverityWarning),
	)
	require.NoError(t, err)

	adapter.Printf("an error that is not detected")

	lines := buf.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "- svc - WARNING - an error that is not detected")
}

func TestMirrorToPipeline(t *testing.T) {
	p := createTestPipeline(t)
	console := zerolog.Nop()

	adapter, err := NewBuilder().
		WithPipeline(p).
		WithConsole(&console).
		Mirror(logsink.SeverityError).
		BuildStructuredGnet(WithFatalHandler(func(string) {}))
	require.NoError(t, err)

	adapter.Infof("below the mirror level")
	adapter.Errorf("accept failed fd=%d", 9)
	adapter.Fatalf("engine stopped")

	require.NoError(t, p.Shutdown())

	records := readToday(t, p)
	require.Len(t, records, 2)

	assert.Equal(t, "ERROR", records[0].Level)
	require.NotNil(t, records[0].Source)
	assert.Equal(t, "gnet", *records[0].Source)
	require.NotNil(t, records[0].RemoteIP)
	assert.Equal(t, LocalAddress, *records[0].RemoteIP)
	assert.Equal(t, "accept failed fd=9", records[0].Message)

	assert.Equal(t, "CRITICAL", records[1].Level)
	assert.Equal(t, "engine stopped", records[1].Message)
}
