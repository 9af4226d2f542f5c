// FILE: lixenwraith/logsink/benchmark_test.go
package logsink

import (
	"testing"
	"time"

	"github.com/lixenwraith/logsink/formatter"
)

// BenchmarkQueueEnqueueDequeue benchmarks a producer/consumer round trip
func BenchmarkQueueEnqueueDequeue(b *testing.B) {
	q := NewBoundedQueue[Entry](0)
	entry := Entry{Severity: SeverityInfo, Text: "benchmark message"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.TryEnqueue(entry)
		q.DequeueWithTimeout(time.Millisecond)
		q.Done()
	}
}

// BenchmarkPipelineEnqueue benchmarks concurrent admission into a running pipeline
func BenchmarkPipelineEnqueue(b *testing.B) {
	cfg := DefaultConfig()
	cfg.Directory = b.TempDir()
	cfg.EnableConsole = false
	cfg.QueueMaxSize = 0

	p, err := New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	p.exit = func(int) {}
	if err := p.Start(); err != nil {
		b.Fatal(err)
	}
	defer p.Shutdown()

	text := formatter.Message("bench", "127.0.0.1", "benchmark message")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = p.Enqueue(SeverityInfo, text)
		}
	})
}

// BenchmarkSinkWrite benchmarks formatting and appending one line
func BenchmarkSinkWrite(b *testing.B) {
	cfg := DefaultConfig()
	cfg.Directory = b.TempDir()

	sink, err := NewDailySink(cfg)
	if err != nil {
		b.Fatal(err)
	}
	defer sink.Close()

	text := formatter.Message("bench", "127.0.0.1", "benchmark message")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sink.Write(SeverityInfo, text)
	}
}
