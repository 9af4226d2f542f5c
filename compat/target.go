// FILE: lixenwraith/logsink/compat/target.go
package compat

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/logsink"
	"github.com/lixenwraith/logsink/formatter"
)

// LocalAddress tags mirrored entries that originate inside this process
const LocalAddress = "local"

// target routes adapter output to the console and optionally mirrors it into the pipeline
type target struct {
	console     *zerolog.Logger
	pipeline    *logsink.Pipeline
	mirrorLevel logsink.Severity
}

// emit writes to the console and, at or above the mirror level, enqueues a tagged entry.
// fields are alternating key/value pairs.
func (t *target) emit(sev logsink.Severity, source, msg string, fields ...any) {
	if t.console != nil {
		e := t.console.WithLevel(logsink.ZerologLevel(sev)).Str("source", source)
		if len(fields) > 0 {
			e = e.Fields(fields)
		}
		e.Msg(msg)
	}

	if t.pipeline == nil || sev < t.mirrorLevel {
		return
	}
	// Full or closing queue drops adapter noise silently
	_ = t.pipeline.Enqueue(sev, formatter.Message(source, LocalAddress, appendFields(msg, fields)))
}

// appendFields renders key/value pairs as " key=value" suffixes
func appendFields(msg string, fields []any) string {
	if len(fields) < 2 {
		return msg
	}

	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", fields[i], fields[i+1])
	}
	return sb.String()
}
