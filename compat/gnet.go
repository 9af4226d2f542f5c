// FILE: lixenwraith/logsink/compat/gnet.go
package compat

import (
	"fmt"
	"time"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/logsink"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter implements the gnet logging.Logger interface
type GnetAdapter struct {
	target       *target
	fatalHandler func(msg string)
}

func newGnetAdapter(t *target, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		target: t,
		fatalHandler: func(msg string) {
			logsink.Exit(1)
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.target.emit(logsink.SeverityDebug, "gnet", fmt.Sprintf(format, args...))
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.target.emit(logsink.SeverityInfo, "gnet", fmt.Sprintf(format, args...))
}

// Warnf logs at warning level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.target.emit(logsink.SeverityWarning, "gnet", fmt.Sprintf(format, args...))
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.target.emit(logsink.SeverityError, "gnet", fmt.Sprintf(format, args...))
}

// Fatalf logs at critical level and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.target.emit(logsink.SeverityCritical, "gnet", msg)

	// Give the writer a moment to persist the mirrored entry
	if a.target.pipeline != nil {
		a.target.pipeline.Queue().WaitUntilEmptyTimeout(100 * time.Millisecond)
	}

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
