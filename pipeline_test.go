// FILE: lixenwraith/logsink/pipeline_test.go
package logsink

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threadSafeBuffer collects console output written from several goroutines
type threadSafeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *threadSafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *threadSafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// createTestPipeline returns a started pipeline writing under a temp directory
func createTestPipeline(t *testing.T, overrides ...string) (*Pipeline, string) {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Directory = tmpDir
	cfg.EnableConsole = false
	cfg.PollIntervalMs = 10
	cfg.SyncIntervalMs = 0
	require.NoError(t, cfg.ApplyOverride(overrides...))

	p, err := New(cfg)
	require.NoError(t, err)
	p.exit = func(int) {}

	require.NoError(t, p.Start())
	t.Cleanup(func() { _ = p.Shutdown() })

	return p, tmpDir
}

func TestNewPipeline(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SanitizePolicy = "bogus"
		_, err := New(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("stopped until started", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Directory = t.TempDir()
		p, err := New(cfg)
		require.NoError(t, err)

		assert.False(t, p.IsAlive())
		assert.Equal(t, StateStopped, p.WriterState())
		assert.Equal(t, DefaultQueueMaxSize, p.Queue().Cap())
	})

	t.Run("config is copied", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Directory = t.TempDir()
		p, err := New(cfg)
		require.NoError(t, err)

		cfg.Directory = "/elsewhere"
		assert.NotEqual(t, "/elsewhere", p.Config().Directory)
	})
}

func TestSetConsole(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Directory = t.TempDir()
	p, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown() })

	var before, after threadSafeBuffer
	require.NoError(t, p.SetConsole(zerolog.New(&before)))
	p.Echo(SeverityWarning, "configured")
	assert.Contains(t, before.String(), "configured")

	require.NoError(t, p.Start())
	require.NoError(t, p.Stop())

	// A writer has shared the console, even if it has since stopped
	assert.ErrorIs(t, p.SetConsole(zerolog.New(&after)), ErrAlreadyStarted)
	p.Echo(SeverityWarning, "still original")
	assert.Contains(t, before.String(), "still original")
	assert.Empty(t, after.String())
}

func TestPipelineWritesInOrder(t *testing.T) {
	p, _ := createTestPipeline(t)

	for i := 0; i < 200; i++ {
		require.NoError(t, p.Enqueue(SeverityInfo, "msg-"+strconv.Itoa(i)))
	}
	require.NoError(t, p.Shutdown())

	lines := readLines(t, p.Sink().Path())
	require.Len(t, lines, 200)
	for i, line := range lines {
		assert.True(t, strings.HasSuffix(line, " - file_logger - INFO - msg-"+strconv.Itoa(i)), line)
	}

	stats := p.Stats()
	assert.Equal(t, uint64(200), stats.Accepted)
	assert.Equal(t, uint64(200), stats.Written)
	assert.Equal(t, uint64(0), stats.Failed)
}

func TestPipelineRejectsWhenFull(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Directory = tmpDir
	cfg.EnableConsole = false
	cfg.QueueMaxSize = 2

	// Not started, so nothing drains the queue
	p, err := New(cfg)
	require.NoError(t, err)
	p.exit = func(int) {}
	t.Cleanup(func() { _ = p.Shutdown() })

	assert.NoError(t, p.Enqueue(SeverityInfo, "a"))
	assert.NoError(t, p.Enqueue(SeverityInfo, "b"))
	assert.ErrorIs(t, p.Enqueue(SeverityInfo, "c"), ErrQueueFull)
	assert.False(t, p.TryEnqueue(Entry{Severity: SeverityInfo, Text: "d"}))

	stats := p.Stats()
	assert.Equal(t, uint64(2), stats.Accepted)
	assert.Equal(t, uint64(2), stats.Rejected)
	assert.Equal(t, 2, stats.QueueLen)
}

func TestPipelineDrainCompleteness(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Directory = tmpDir
	cfg.EnableConsole = false
	cfg.PollIntervalMs = 10
	cfg.QueueMaxSize = 0

	p, err := New(cfg)
	require.NoError(t, err)
	p.exit = func(int) {}

	// Queue M entries before any writer exists
	const m = 1500
	for i := 0; i < m; i++ {
		require.NoError(t, p.Enqueue(SeverityWarning, "drain-"+strconv.Itoa(i)))
	}

	require.NoError(t, p.Start())
	require.NoError(t, p.Shutdown())

	assert.False(t, p.IsAlive())
	assert.True(t, p.Queue().IsEmpty())
	assert.Equal(t, 0, p.Queue().Pending())

	lines := readLines(t, p.Sink().Path())
	require.Len(t, lines, m)
	assert.Contains(t, lines[m-1], "drain-"+strconv.Itoa(m-1))
}

func TestPipelineShutdownWithoutWriter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Directory = t.TempDir()
	cfg.EnableConsole = false
	cfg.PollIntervalMs = 10

	p, err := New(cfg)
	require.NoError(t, err)
	p.exit = func(int) {}

	require.NoError(t, p.Enqueue(SeverityInfo, "queued before start"))

	// Shutdown spawns a writer so the drain can finish
	require.NoError(t, p.Shutdown())
	assert.Len(t, readLines(t, p.Sink().Path()), 1)

	// After shutdown nothing is admitted and nothing starts
	assert.ErrorIs(t, p.Enqueue(SeverityInfo, "late"), ErrShutdown)
	assert.ErrorIs(t, p.Start(), ErrShutdown)
	assert.ErrorIs(t, p.EnsureStarted(), ErrShutdown)

	// Idempotent
	assert.NoError(t, p.Shutdown())
}

func TestPipelineDrainTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Directory = t.TempDir()
	cfg.EnableConsole = false
	cfg.PollIntervalMs = 10
	cfg.DrainTimeoutMs = 20
	cfg.JoinTimeoutMs = 20

	p, err := New(cfg)
	require.NoError(t, err)
	p.exit = func(int) {}

	// A clock that blocks every write stalls the writer
	release := make(chan struct{})
	p.Sink().SetClock(func() time.Time {
		<-release
		return time.Now()
	})

	require.NoError(t, p.Enqueue(SeverityInfo, "stuck"))
	require.NoError(t, p.Enqueue(SeverityInfo, "behind"))

	err = p.Shutdown()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDrainTimeout)
	assert.ErrorIs(t, err, ErrJoinTimeout)

	close(release)
	assert.Eventually(t, func() bool { return !p.IsAlive() }, 2*time.Second, 10*time.Millisecond)
}

func TestPipelineWriteFailureContinues(t *testing.T) {
	tmpDir := t.TempDir()
	console := &threadSafeBuffer{}

	p, err := NewBuilder().
		Directory(filepath.Join(tmpDir, "logs")).
		PollInterval(10 * time.Millisecond).
		SyncIntervalMs(0).
		Console(NewConsoleLogger(console, "console_logger", false)).
		Build()
	require.NoError(t, err)
	p.exit = func(int) {}
	t.Cleanup(func() { _ = p.Shutdown() })

	// A panicking clock makes the first write blow up inside the sink
	var calls int
	var mu sync.Mutex
	p.Sink().SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			panic("clock failure")
		}
		return time.Now()
	})

	require.NoError(t, p.Start())
	require.NoError(t, p.Enqueue(SeverityInfo, "first"))
	require.NoError(t, p.Enqueue(SeverityInfo, "second"))
	require.NoError(t, p.Shutdown())

	stats := p.Stats()
	assert.Equal(t, uint64(1), stats.Failed)
	assert.Equal(t, uint64(1), stats.Written)
	assert.Contains(t, console.String(), "panic while writing log entry")
	assert.Contains(t, console.String(), "first")

	lines := readLines(t, p.Sink().Path())
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "second")
}

func TestPipelineEcho(t *testing.T) {
	console := &threadSafeBuffer{}
	p := createConsolePipeline(t, console)

	p.Echo(SeverityError, "[auth@10.0.0.5] login failed")
	assert.Contains(t, console.String(), "- console_logger - ERROR - [auth@10.0.0.5] login failed")
}

func TestPipelineStatsUptime(t *testing.T) {
	p, _ := createTestPipeline(t)
	time.Sleep(5 * time.Millisecond)

	stats := p.Stats()
	assert.True(t, stats.Alive)
	assert.Greater(t, stats.Uptime, time.Duration(0))
	assert.Equal(t, uint64(1), stats.Starts)
}

func TestPipelineHeartbeat(t *testing.T) {
	console := &threadSafeBuffer{}
	p := createConsolePipeline(t, console)

	require.NoError(t, p.Enqueue(SeverityInfo, "x"))
	p.handleHeartbeat()

	out := console.String()
	assert.Contains(t, out, "heartbeat")
	assert.Contains(t, out, "sequence=1")
	assert.Contains(t, out, "accepted=1")
}

func TestZerologLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ZerologLevel(SeverityDebug))
	assert.Equal(t, zerolog.InfoLevel, ZerologLevel(SeverityInfo))
	assert.Equal(t, zerolog.WarnLevel, ZerologLevel(SeverityWarning))
	assert.Equal(t, zerolog.ErrorLevel, ZerologLevel(SeverityError))
	assert.Equal(t, zerolog.FatalLevel, ZerologLevel(SeverityCritical))
}

// createConsolePipeline returns a started pipeline whose console writes to out
func createConsolePipeline(t *testing.T, out *threadSafeBuffer) *Pipeline {
	t.Helper()
	p, err := NewBuilder().
		Directory(t.TempDir()).
		PollInterval(10 * time.Millisecond).
		SyncIntervalMs(0).
		Console(NewConsoleLogger(out, "console_logger", false)).
		Build()
	require.NoError(t, err)
	p.exit = func(int) {}
	require.NoError(t, p.Start())
	t.Cleanup(func() { _ = p.Shutdown() })
	return p
}
