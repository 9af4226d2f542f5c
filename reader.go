// FILE: lixenwraith/logsink/reader.go
package logsink

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/lixenwraith/logsink/formatter"
)

// maxLineBytes bounds a single persisted line when reading back
const maxLineBytes = 1 << 20

// ValidDate reports whether s is a YYYY-MM-DD calendar date
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ReadDay parses every non-blank line of the file for date.
// A missing file yields an empty slice and no error.
func (s *DailySink) ReadDay(date string) ([]formatter.Record, error) {
	if !ValidDate(date) {
		return nil, fmtErrorf("invalid date '%s', expected YYYY-MM-DD", date)
	}

	path := s.PathFor(date)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []formatter.Record{}, nil
		}
		return nil, fmtErrorf("failed to open log file '%s': %w", path, err)
	}
	defer file.Close()

	records := make([]formatter.Record, 0, 64)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		records = append(records, formatter.Parse(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmtErrorf("failed to read log file '%s': %w", path, err)
	}

	return records, nil
}
