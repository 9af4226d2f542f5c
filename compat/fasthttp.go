// FILE: lixenwraith/logsink/compat/fasthttp.go
package compat

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/logsink"
)

// FastHTTPAdapter implements the fasthttp Logger interface
type FastHTTPAdapter struct {
	target        *target
	defaultLevel  logsink.Severity
	levelDetector func(string) logsink.Severity // 0 means undetected
}

// newFastHTTPAdapter creates a fasthttp-compatible logger adapter over a target
func newFastHTTPAdapter(t *target, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		target:        t,
		defaultLevel:  logsink.SeverityInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the severity used when detection finds nothing
func WithDefaultLevel(level logsink.Severity) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect severity from message content
func WithLevelDetector(detector func(string) logsink.Severity) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected := a.levelDetector(msg); detected != 0 {
			level = detected
		}
	}

	a.target.emit(level, "fasthttp", msg)
}

// DetectLogLevel guesses a severity from message keywords
func DetectLogLevel(msg string) logsink.Severity {
	msgLower := strings.ToLower(msg)

	if strings.Contains(msgLower, "panic") ||
		strings.Contains(msgLower, "fatal") {
		return logsink.SeverityCritical
	}

	if strings.Contains(msgLower, "error") ||
		strings.Contains(msgLower, "failed") {
		return logsink.SeverityError
	}

	if strings.Contains(msgLower, "warn") ||
		strings.Contains(msgLower, "deprecated") {
		return logsink.SeverityWarning
	}

	if strings.Contains(msgLower, "debug") ||
		strings.Contains(msgLower, "trace") {
		return logsink.SeverityDebug
	}

	return logsink.SeverityInfo
}
