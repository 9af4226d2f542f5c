// FILE: lixenwraith/logsink/storage.go
package logsink

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/logsink/formatter"
	"github.com/lixenwraith/logsink/sanitizer"
)

// DailySink appends formatted lines to one file per calendar day.
// The file for a date is opened lazily on the first write of that date and
// closed when the date changes. Old files are never touched.
type DailySink struct {
	mu sync.Mutex

	directory string
	prefix    string
	extension string

	formatter *formatter.Formatter
	now       func() time.Time

	date string // date of the open file, empty when none is open
	file *os.File

	linesWritten atomic.Uint64
	rollovers    atomic.Uint64
}

// NewDailySink creates a sink from configuration without touching the filesystem
func NewDailySink(cfg *Config) (*DailySink, error) {
	san, err := sanitizer.ForPolicy(cfg.SanitizePolicy)
	if err != nil {
		return nil, fmtErrorf("failed to create sink sanitizer: %w", err)
	}

	return &DailySink{
		directory: cfg.Directory,
		prefix:    cfg.FilePrefix,
		extension: cfg.Extension,
		formatter: formatter.New(san).
			LoggerName(cfg.LoggerName).
			TimestampFormat(cfg.TimestampFormat),
		now: time.Now,
	}, nil
}

// SetClock replaces the wall clock, used to simulate day boundaries
func (s *DailySink) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Directory returns the directory holding the daily files
func (s *DailySink) Directory() string {
	return s.directory
}

// PathFor returns the file path for a YYYY-MM-DD date
func (s *DailySink) PathFor(date string) string {
	filename := s.prefix + "_" + date
	if s.extension != "" {
		filename += "." + s.extension
	}
	return filepath.Join(s.directory, filename)
}

// Path returns the path the next write would go to
func (s *DailySink) Path() string {
	s.mu.Lock()
	now := s.now
	s.mu.Unlock()
	return s.PathFor(now().Format(DateLayout))
}

// Write appends one line for the current wall-clock date, rolling over first
// if the date changed since the previous write
func (s *DailySink) Write(severity Severity, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	timestamp := s.now()
	date := timestamp.Format(DateLayout)

	if s.file == nil || date != s.date {
		if err := s.openForDateLocked(date); err != nil {
			return err
		}
	}

	line := s.formatter.Line(timestamp, severity.String(), text)
	if _, err := s.file.Write(line); err != nil {
		return fmtErrorf("failed to write to log file '%s': %w", s.file.Name(), err)
	}
	s.linesWritten.Add(1)
	return nil
}

// openForDateLocked closes the current file, if any, and opens the file for date
func (s *DailySink) openForDateLocked(date string) error {
	var closeErr error
	if s.file != nil {
		closeErr = s.closeLocked()
		s.rollovers.Add(1)
	}

	if err := os.MkdirAll(s.directory, 0755); err != nil {
		return combineErrors(closeErr, fmtErrorf("failed to create log directory '%s': %w", s.directory, err))
	}

	path := s.PathFor(date)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return combineErrors(closeErr, fmtErrorf("failed to open/create log file '%s': %w", path, err))
	}

	s.file = file
	s.date = date
	// A close failure on the previous day does not block writing the new one
	return nil
}

// Sync flushes the open file to stable storage
func (s *DailySink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		return fmtErrorf("failed to sync log file '%s': %w", s.file.Name(), err)
	}
	return nil
}

// Close syncs and closes the open file. The next Write reopens it.
func (s *DailySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *DailySink) closeLocked() error {
	if s.file == nil {
		return nil
	}

	var finalErr error
	name := s.file.Name()
	if err := s.file.Sync(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to sync log file '%s' during close: %w", name, err))
	}
	if err := s.file.Close(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to close log file '%s': %w", name, err))
	}
	s.file = nil
	s.date = ""
	return finalErr
}

// LinesWritten returns the number of lines successfully written
func (s *DailySink) LinesWritten() uint64 {
	return s.linesWritten.Load()
}

// Rollovers returns the number of date changes handled
func (s *DailySink) Rollovers() uint64 {
	return s.rollovers.Load()
}
