// FILE: lixenwraith/logsink/builder.go
package logsink

import (
	"time"

	"github.com/rs/zerolog"
)

// Builder provides a fluent API for building pipelines.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg     *Config
	console *zerolog.Logger
	now     func() time.Time
	err     error // Accumulate errors for deferred handling
}

// NewBuilder creates a new builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// NewBuilderFromConfig starts from an existing configuration.
func NewBuilderFromConfig(cfg *Config) *Builder {
	if cfg == nil {
		return &Builder{cfg: DefaultConfig(), err: fmtErrorf("configuration cannot be nil")}
	}
	return &Builder{cfg: cfg.Clone()}
}

// Build creates a new stopped Pipeline with the specified configuration.
func (b *Builder) Build() (*Pipeline, error) {
	if b.err != nil {
		return nil, b.err
	}

	p, err := New(b.cfg)
	if err != nil {
		return nil, err
	}

	if b.console != nil {
		if err := p.SetConsole(*b.console); err != nil {
			return nil, err
		}
	}
	if b.now != nil {
		p.Sink().SetClock(b.now)
	}

	return p, nil
}

// Directory sets the directory for daily files.
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// FilePrefix sets the daily file name prefix.
func (b *Builder) FilePrefix(prefix string) *Builder {
	b.cfg.FilePrefix = prefix
	return b
}

// Extension sets the daily file extension, without the dot.
func (b *Builder) Extension(ext string) *Builder {
	b.cfg.Extension = ext
	return b
}

// QueueMaxSize sets the queue capacity, <= 0 for unbounded.
func (b *Builder) QueueMaxSize(size int64) *Builder {
	b.cfg.QueueMaxSize = size
	return b
}

// PollInterval sets how long the writer waits for an entry between flag checks.
func (b *Builder) PollInterval(d time.Duration) *Builder {
	b.cfg.PollIntervalMs = d.Milliseconds()
	return b
}

// JoinTimeout sets how long Stop waits for the writer.
func (b *Builder) JoinTimeout(d time.Duration) *Builder {
	b.cfg.JoinTimeoutMs = d.Milliseconds()
	return b
}

// DrainTimeout bounds the shutdown drain, 0 for unbounded.
func (b *Builder) DrainTimeout(d time.Duration) *Builder {
	b.cfg.DrainTimeoutMs = d.Milliseconds()
	return b
}

// SyncIntervalMs sets the periodic fsync interval, 0 to disable.
func (b *Builder) SyncIntervalMs(interval int64) *Builder {
	b.cfg.SyncIntervalMs = interval
	return b
}

// HeartbeatIntervalS sets the console heartbeat interval, 0 to disable.
func (b *Builder) HeartbeatIntervalS(interval int64) *Builder {
	b.cfg.HeartbeatIntervalS = interval
	return b
}

// SanitizePolicy sets how unprintable characters are persisted.
func (b *Builder) SanitizePolicy(policy string) *Builder {
	b.cfg.SanitizePolicy = policy
	return b
}

// EnableConsole toggles the console echo.
func (b *Builder) EnableConsole(enable bool) *Builder {
	b.cfg.EnableConsole = enable
	return b
}

// Console uses the given logger instead of one built from configuration.
func (b *Builder) Console(logger zerolog.Logger) *Builder {
	b.console = &logger
	return b
}

// Clock replaces the sink wall clock.
func (b *Builder) Clock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Override applies "key=value" overrides.
func (b *Builder) Override(overrides ...string) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.cfg.ApplyOverride(overrides...); err != nil {
		b.err = err
	}
	return b
}
