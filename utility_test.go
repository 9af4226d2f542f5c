// FILE: lixenwraith/logsink/utility_test.go
package logsink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input    string
		expected Severity
		wantErr  bool
	}{
		{"debug", SeverityDebug, false},
		{"DEBUG", SeverityDebug, false},
		{" info ", SeverityInfo, false},
		{"warning", SeverityWarning, false},
		{"warn", SeverityWarning, false},
		{"Error", SeverityError, false},
		{"critical", SeverityCritical, false},
		{"fatal", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sev, err := ParseSeverity(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, sev)
			}
		})
	}
}

func TestSeverityOrInfo(t *testing.T) {
	assert.Equal(t, SeverityError, SeverityOrInfo("error"))
	assert.Equal(t, SeverityInfo, SeverityOrInfo("verbose"))
	assert.Equal(t, SeverityInfo, SeverityOrInfo(""))
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "DEBUG", SeverityDebug.String())
	assert.Equal(t, "INFO", SeverityInfo.String())
	assert.Equal(t, "WARNING", SeverityWarning.String())
	assert.Equal(t, "ERROR", SeverityError.String())
	assert.Equal(t, "CRITICAL", SeverityCritical.String())
	assert.Equal(t, "Level 25", Severity(25).String())
}

func TestParseKeyValue(t *testing.T) {
	key, value, err := parseKeyValue(" directory = /var/log ")
	require.NoError(t, err)
	assert.Equal(t, "directory", key)
	assert.Equal(t, "/var/log", value)

	key, value, err = parseKeyValue("http_address=a=b")
	require.NoError(t, err)
	assert.Equal(t, "http_address", key)
	assert.Equal(t, "a=b", value)

	_, _, err = parseKeyValue("novalue")
	assert.Error(t, err)

	_, _, err = parseKeyValue("=x")
	assert.Error(t, err)
}

func TestErrorHelpers(t *testing.T) {
	err := fmtErrorf("broken %d", 1)
	assert.Equal(t, "logsink: broken 1", err.Error())
	assert.Equal(t, "logsink: already", fmtErrorf("logsink: already").Error())

	wrapped := fmtErrorf("outer: %w", ErrQueueFull)
	assert.ErrorIs(t, wrapped, ErrQueueFull)

	a := errors.New("a")
	b := errors.New("b")
	assert.Nil(t, combineErrors(nil, nil))
	assert.Equal(t, a, combineErrors(a, nil))
	assert.Equal(t, b, combineErrors(nil, b))
	both := combineErrors(a, b)
	assert.ErrorIs(t, both, a)
	assert.ErrorIs(t, both, b)
}
