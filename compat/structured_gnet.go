// FILE: lixenwraith/logsink/compat/structured_gnet.go
package compat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/logsink"
)

var _ logging.Logger = (*StructuredGnetAdapter)(nil)

// verbPattern matches a printf verb, optionally labelled as "key=%v" or "key: %v"
var verbPattern = regexp.MustCompile(`(?:(\w+)\s*[:=]\s*)?(%[-+# 0-9.]*[a-zA-Z%])`)

// splitFields renders the unlabelled part of a printf-style format as the
// message and returns labelled verbs as key/value pairs. Formats whose verbs
// and args disagree are rendered whole with no fields.
func splitFields(format string, args []any) (string, []any) {
	var (
		msg    strings.Builder
		fields []any
		next   int
		last   int
	)

	for _, m := range verbPattern.FindAllStringSubmatchIndex(format, -1) {
		verb := format[m[4]:m[5]]
		if verb == "%%" {
			msg.WriteString(format[last:m[4]])
			msg.WriteByte('%')
			last = m[1]
			continue
		}
		if next >= len(args) {
			return fmt.Sprintf(format, args...), nil
		}

		if m[2] >= 0 {
			msg.WriteString(format[last:m[2]])
			fields = append(fields, format[m[2]:m[3]], args[next])
		} else {
			msg.WriteString(format[last:m[4]])
			fmt.Fprintf(&msg, verb, args[next])
		}
		next++
		last = m[1]
	}

	if next != len(args) {
		return fmt.Sprintf(format, args...), nil
	}
	msg.WriteString(format[last:])

	text := strings.Join(strings.Fields(msg.String()), " ")
	if text == "" {
		return fmt.Sprintf(format, args...), nil
	}
	return text, fields
}

// StructuredGnetAdapter lifts gnet's "key=%v" diagnostics into console fields
type StructuredGnetAdapter struct {
	*GnetAdapter
}

func newStructuredGnetAdapter(t *target, opts ...GnetOption) *StructuredGnetAdapter {
	return &StructuredGnetAdapter{GnetAdapter: newGnetAdapter(t, opts...)}
}

func (a *StructuredGnetAdapter) emitStructured(sev logsink.Severity, format string, args []any) {
	msg, fields := splitFields(format, args)
	a.target.emit(sev, "gnet", msg, fields...)
}

// Debugf logs at debug level with field extraction
func (a *StructuredGnetAdapter) Debugf(format string, args ...any) {
	a.emitStructured(logsink.SeverityDebug, format, args)
}

// Infof logs at info level with field extraction
func (a *StructuredGnetAdapter) Infof(format string, args ...any) {
	a.emitStructured(logsink.SeverityInfo, format, args)
}

// Warnf logs at warning level with field extraction
func (a *StructuredGnetAdapter) Warnf(format string, args ...any) {
	a.emitStructured(logsink.SeverityWarning, format, args)
}

// Errorf logs at error level with field extraction
func (a *StructuredGnetAdapter) Errorf(format string, args ...any) {
	a.emitStructured(logsink.SeverityError, format, args)
}
