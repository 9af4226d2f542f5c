// FILE: lixenwraith/logsink/compat/builder.go
package compat

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/logsink"
)

// Builder creates adapters that route gnet and fasthttp internals to the
// service console and, optionally, into the ingestion pipeline
type Builder struct {
	console     *zerolog.Logger
	pipeline    *logsink.Pipeline
	mirror      bool
	mirrorLevel logsink.Severity
	err         error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{mirrorLevel: logsink.SeverityWarning}
}

// WithPipeline uses the pipeline's console logger.
// An explicit WithConsole takes precedence.
func (b *Builder) WithPipeline(p *logsink.Pipeline) *Builder {
	if p == nil {
		b.err = fmt.Errorf("logsink/compat: provided pipeline cannot be nil")
		return b
	}
	b.pipeline = p
	return b
}

// WithConsole sets the console logger adapters write to
func (b *Builder) WithConsole(l *zerolog.Logger) *Builder {
	if l == nil {
		b.err = fmt.Errorf("logsink/compat: provided console logger cannot be nil")
		return b
	}
	b.console = l
	return b
}

// Mirror copies adapter output at or above level into the daily file.
// Requires WithPipeline.
func (b *Builder) Mirror(level logsink.Severity) *Builder {
	b.mirror = true
	b.mirrorLevel = level
	return b
}

// getTarget resolves where adapter output goes
func (b *Builder) getTarget() (*target, error) {
	if b.err != nil {
		return nil, b.err
	}

	t := &target{console: b.console, mirrorLevel: b.mirrorLevel}
	if b.pipeline != nil {
		if t.console == nil {
			t.console = b.pipeline.Console()
		}
		if b.mirror {
			t.pipeline = b.pipeline
		}
	}

	if t.console == nil {
		return nil, fmt.Errorf("logsink/compat: either a pipeline or a console logger is required")
	}
	if b.mirror && t.pipeline == nil {
		return nil, fmt.Errorf("logsink/compat: mirroring requires a pipeline")
	}
	return t, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	t, err := b.getTarget()
	if err != nil {
		return nil, err
	}
	return newGnetAdapter(t, opts...), nil
}

// BuildStructuredGnet creates a gnet adapter that lifts "key=%v" pairs into fields
func (b *Builder) BuildStructuredGnet(opts ...GnetOption) (*StructuredGnetAdapter, error) {
	t, err := b.getTarget()
	if err != nil {
		return nil, err
	}
	return newStructuredGnetAdapter(t, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	t, err := b.getTarget()
	if err != nil {
		return nil, err
	}
	return newFastHTTPAdapter(t, opts...), nil
}
