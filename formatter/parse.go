// FILE: lixenwraith/logsink/formatter/parse.go
package formatter

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Record is one line of a daily file as returned by the listing endpoint.
// Lines that do not have four " - " separated fields are kept as Raw.
type Record struct {
	Timestamp string
	Logger    string
	Level     string
	Source    *string
	RemoteIP  *string
	Message   string

	Raw    string
	Parsed bool
}

// Parse splits a persisted line into its fields.
// The caller trims the line; Parse does not.
func Parse(line string) Record {
	parts := strings.SplitN(line, fieldSeparator, 4)
	if len(parts) != 4 {
		return Record{Raw: line}
	}

	rec := Record{
		Timestamp: parts[0],
		Logger:    parts[1],
		Level:     parts[2],
		Message:   parts[3],
		Parsed:    true,
	}

	if strings.HasPrefix(rec.Message, "[") {
		if closing := strings.IndexByte(rec.Message, ']'); closing != -1 {
			tag := rec.Message[1:closing]
			if source, ip, found := strings.Cut(tag, "@"); found {
				rec.Source = &source
				rec.RemoteIP = &ip
			} else {
				rec.Source = &tag
			}
			rec.Message = strings.TrimLeftFunc(rec.Message[closing+1:], unicode.IsSpace)
		}
	}

	return rec
}

// MarshalJSON emits {"raw": line} for unparsed lines, else the six named fields
func (r Record) MarshalJSON() ([]byte, error) {
	if !r.Parsed {
		return json.Marshal(struct {
			Raw string `json:"raw"`
		}{r.Raw})
	}
	return json.Marshal(struct {
		Timestamp string  `json:"timestamp"`
		Logger    string  `json:"logger"`
		Level     string  `json:"level"`
		Source    *string `json:"source"`
		RemoteIP  *string `json:"remote_ip"`
		Message   string  `json:"message"`
	}{r.Timestamp, r.Logger, r.Level, r.Source, r.RemoteIP, r.Message})
}
