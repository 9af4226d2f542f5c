// FILE: lixenwraith/logsink/console.go
package logsink

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Console timestamps carry milliseconds like the persisted lines
const consoleTimestampFormat = "2006-01-02 15:04:05,000"

// consoleClock stamps each console event with a preformatted local time
type consoleClock struct {
	now func() time.Time
}

func (c consoleClock) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str(zerolog.TimestampFieldName, c.now().Format(consoleTimestampFormat))
}

// NewConsoleWriter returns a zerolog console writer that renders
// "<timestamp> - <name> - <LEVEL> - <message> key=value..."
func NewConsoleWriter(out io.Writer, name string, color bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !color,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatTimestamp: func(i any) string {
			if s, ok := i.(string); ok {
				return s
			}
			return fmt.Sprint(i)
		},
		FormatLevel: func(i any) string {
			level, _ := i.(string)
			return "- " + name + " - " + consoleLevelName(level) + " -"
		},
	}
}

// consoleLevelName maps zerolog level names to the persisted severity names
func consoleLevelName(level string) string {
	switch level {
	case zerolog.LevelWarnValue:
		return SeverityWarning.String()
	case zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		return SeverityCritical.String()
	case zerolog.LevelTraceValue:
		return SeverityDebug.String()
	case "":
		return SeverityInfo.String()
	default:
		return strings.ToUpper(level)
	}
}

// NewConsoleLogger builds a console logger over an explicit writer
func NewConsoleLogger(out io.Writer, name string, color bool) zerolog.Logger {
	return zerolog.New(NewConsoleWriter(out, name, color)).
		Hook(consoleClock{now: time.Now})
}

// NewConsole builds the console logger described by the configuration
func NewConsole(cfg *Config) zerolog.Logger {
	if !cfg.EnableConsole {
		return zerolog.Nop()
	}

	var out io.Writer = os.Stderr
	if cfg.ConsoleTarget == "stdout" {
		out = os.Stdout
	}
	return NewConsoleLogger(out, cfg.ConsoleName, cfg.ConsoleColor)
}

// ZerologLevel maps a Severity onto the zerolog ladder.
// CRITICAL maps to fatal, which WithLevel emits without exiting.
func ZerologLevel(sev Severity) zerolog.Level {
	switch {
	case sev >= SeverityCritical:
		return zerolog.FatalLevel
	case sev >= SeverityError:
		return zerolog.ErrorLevel
	case sev >= SeverityWarning:
		return zerolog.WarnLevel
	case sev >= SeverityInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// consoleLog writes one message at a severity, swallowing console failures
func consoleLog(logger *zerolog.Logger, sev Severity, msg string) {
	defer func() {
		_ = recover()
	}()
	logger.WithLevel(ZerologLevel(sev)).Msg(msg)
}
