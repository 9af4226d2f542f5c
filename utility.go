// FILE: lixenwraith/logsink/utility.go
package logsink

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	ErrQueueFull    = errors.New("logsink: queue full")
	ErrJoinTimeout  = errors.New("logsink: writer did not exit within join timeout")
	ErrDrainTimeout = errors.New("logsink: queue did not drain within timeout")
	ErrShutdown     = errors.New("logsink: pipeline is shutting down")

	ErrAlreadyStarted = errors.New("logsink: pipeline writer already started")
)

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "logsink: ") {
		format = "logsink: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return errors.Join(err1, err2)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// ParseSeverity converts a level name to a Severity.
// Accepts debug, info, warning, warn, error, critical in any case.
func ParseSeverity(levelStr string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return SeverityDebug, nil
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return 0, fmtErrorf("invalid level string: '%s' (use debug, info, warning, warn, error, critical)", levelStr)
	}
}

// SeverityOrInfo maps a level name to a Severity, falling back to INFO for unknown names
func SeverityOrInfo(levelStr string) Severity {
	sev, err := ParseSeverity(levelStr)
	if err != nil {
		return SeverityInfo
	}
	return sev
}
