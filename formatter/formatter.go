// FILE: lixenwraith/logsink/formatter/formatter.go
// Package formatter renders persisted log lines and parses them back.
package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/logsink/sanitizer"
)

// Line layout: "<timestamp> - <logger> - <LEVEL> - <text>\n"
const fieldSeparator = " - "

// Defaults matching the persisted file layout
const (
	DefaultLoggerName      = "file_logger"
	DefaultTimestampFormat = "2006-01-02 15:04:05,000"
)

// Formatter renders persisted lines into a reused buffer.
// A Formatter is owned by a single writer and is not safe for concurrent use.
type Formatter struct {
	sanitizer       *sanitizer.Sanitizer
	loggerName      string
	timestampFormat string
	buf             []byte
}

// New creates a formatter with the provided sanitizer
func New(s ...*sanitizer.Sanitizer) *Formatter {
	var san *sanitizer.Sanitizer
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	} else {
		san = sanitizer.New()
	}
	return &Formatter{
		sanitizer:       san,
		loggerName:      DefaultLoggerName,
		timestampFormat: DefaultTimestampFormat,
		buf:             make([]byte, 0, 512),
	}
}

// LoggerName sets the second field of every line
func (f *Formatter) LoggerName(name string) *Formatter {
	if name != "" {
		f.loggerName = name
	}
	return f
}

// TimestampFormat sets the timestamp layout
func (f *Formatter) TimestampFormat(format string) *Formatter {
	if format != "" {
		f.timestampFormat = format
	}
	return f
}

// Line renders one persisted line including the trailing newline.
// The returned slice is only valid until the next call.
func (f *Formatter) Line(timestamp time.Time, level string, text string) []byte {
	f.buf = f.buf[:0]
	f.buf = timestamp.AppendFormat(f.buf, f.timestampFormat)
	f.buf = append(f.buf, fieldSeparator...)
	f.buf = append(f.buf, f.loggerName...)
	f.buf = append(f.buf, fieldSeparator...)
	f.buf = append(f.buf, level...)
	f.buf = append(f.buf, fieldSeparator...)
	f.buf = append(f.buf, f.sanitizer.Sanitize(text)...)
	f.buf = append(f.buf, '\n')
	return f.buf
}

// Message tags a message with its origin: "[source@ip] text"
func Message(source, remoteIP, text string) string {
	var sb strings.Builder
	sb.Grow(len(source) + len(remoteIP) + len(text) + 4)
	sb.WriteByte('[')
	sb.WriteString(source)
	sb.WriteByte('@')
	sb.WriteString(remoteIP)
	sb.WriteString("] ")
	sb.WriteString(text)
	return sb.String()
}

// Value renders a decoded JSON value as message text.
// Strings pass through unchanged; other values become compact JSON.
func Value(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.RawMessage:
		var b bytes.Buffer
		if err := json.Compact(&b, val); err == nil {
			return b.String()
		}
		return string(val)
	}

	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}

	dumper := &spew.ConfigState{
		Indent:                  " ",
		MaxDepth:                10,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	return strings.TrimSpace(dumper.Sdump(v))
}

// Truthy reports whether a decoded JSON value counts as a present message.
// null, false, 0, "" and empty arrays or objects do not.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
