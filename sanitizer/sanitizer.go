// FILE: lixenwraith/logsink/sanitizer/sanitizer.go
// Package sanitizer rewrites runes that would break the one-line-per-entry
// layout of persisted log files, using bitwise filter and transform flags.
package sanitizer

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Filter flags for character matching
const (
	FilterNonPrintable uint64 = 1 << iota // Runes not printable per strconv.IsPrint
	FilterControl                         // unicode.IsControl
	FilterLineBreak                       // '\n', '\r', U+2028, U+2029
)

// Transform flags for character transformation
const (
	TransformStrip      uint64 = 1 << iota // Removes the character
	TransformHexEncode                     // Encodes the rune's UTF-8 bytes as "<xxyy>"
	TransformJSONEscape                    // Backslash escapes, '\n' or '\u0000'
)

// PolicyPreset names a pre-configured rule set
type PolicyPreset string

const (
	PolicyRaw  PolicyPreset = "raw"  // Passthrough
	PolicyLine PolicyPreset = "line" // Hex-encode line breaks only
	PolicyTxt  PolicyPreset = "txt"  // Hex-encode anything unprintable
	PolicyJSON PolicyPreset = "json" // JSON-style escapes for control characters
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[PolicyPreset][]rule{
	PolicyRaw:  {},
	PolicyLine: {{filter: FilterLineBreak, transform: TransformHexEncode}},
	PolicyTxt:  {{filter: FilterNonPrintable, transform: TransformHexEncode}},
	PolicyJSON: {{filter: FilterControl | FilterLineBreak, transform: TransformJSONEscape}},
}

var filterCheckers = []struct {
	flag  uint64
	check func(rune) bool
}{
	{FilterNonPrintable, func(r rune) bool { return !strconv.IsPrint(r) }},
	{FilterControl, unicode.IsControl},
	{FilterLineBreak, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
	}},
}

// Sanitizer provides chainable text sanitization.
// Not safe for concurrent use; the internal buffer is reused between calls.
type Sanitizer struct {
	rules []rule
	buf   []byte
}

// New creates a passthrough Sanitizer
func New() *Sanitizer {
	return &Sanitizer{
		buf: make([]byte, 0, 256),
	}
}

// ForPolicy returns a Sanitizer for a named preset
func ForPolicy(name string) (*Sanitizer, error) {
	preset := PolicyPreset(name)
	if _, ok := policyRules[preset]; !ok {
		return nil, fmt.Errorf("sanitizer: unknown policy '%s'", name)
	}
	return New().Policy(preset), nil
}

// Rule appends a custom rule, earlier rules win
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy appends the rules of a preset
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	if rules, ok := policyRules[preset]; ok {
		s.rules = append(s.rules, rules...)
	}
	return s
}

// Sanitize applies all configured rules to the input string
func (s *Sanitizer) Sanitize(data string) string {
	if len(s.rules) == 0 {
		return data
	}

	s.buf = s.buf[:0]
	for _, r := range data {
		matched := false
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				applyTransform(&s.buf, r, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			s.buf = utf8.AppendRune(s.buf, r)
		}
	}

	return string(s.buf)
}

func matchesFilter(r rune, filterMask uint64) bool {
	for _, fc := range filterCheckers {
		if filterMask&fc.flag != 0 && fc.check(r) {
			return true
		}
	}
	return false
}

func applyTransform(buf *[]byte, r rune, transformMask uint64) {
	switch {
	case transformMask&TransformStrip != 0:
		// dropped

	case transformMask&TransformHexEncode != 0:
		var runeBytes [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeBytes[:], r)
		*buf = append(*buf, '<')
		*buf = append(*buf, hex.EncodeToString(runeBytes[:n])...)
		*buf = append(*buf, '>')

	case transformMask&TransformJSONEscape != 0:
		switch r {
		case '\n':
			*buf = append(*buf, '\\', 'n')
		case '\r':
			*buf = append(*buf, '\\', 'r')
		case '\t':
			*buf = append(*buf, '\\', 't')
		case '\b':
			*buf = append(*buf, '\\', 'b')
		case '\f':
			*buf = append(*buf, '\\', 'f')
		default:
			*buf = append(*buf, fmt.Sprintf("\\u%04x", r)...)
		}
	}
}
