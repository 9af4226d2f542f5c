// FILE: lixenwraith/logsink/server/ingest.go
package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lixenwraith/logsink"
	"github.com/lixenwraith/logsink/formatter"
)

// Defaults applied when a submission leaves a field empty
const (
	DefaultSource   = "unknown"
	DefaultRemoteIP = "unknown"
	DefaultLevel    = "info"
)

// Client-facing error messages
const (
	msgNoMessage    = "No message provided in the request body"
	msgQueueFull    = "Logging queue full; request dropped"
	msgShuttingDown = "Service is shutting down; request dropped"
	msgIngestFailed = "Error while recording log: %v"
	msgReadFailed   = "Unable to read the requested log file"
	msgBadDate      = "Invalid date, expected YYYY-MM-DD"
)

var (
	errNoMessage    = errors.New(msgNoMessage)
	errQueueFull    = errors.New(msgQueueFull)
	errShuttingDown = errors.New(msgShuttingDown)
)

// Submission is one entry offered for ingestion by any transport
type Submission struct {
	Message  string `validate:"required"`
	Source   string `validate:"required"`
	Level    string `validate:"required"`
	RemoteIP string `validate:"required"`
}

// Receipt is returned to the producer once a submission is queued
type Receipt struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Source    string `json:"source"`
	RemoteIP  string `json:"remote_ip"`
	Level     string `json:"level"`
	Timestamp string `json:"timestamp"`
}

// ingestor turns submissions into queued entries
type ingestor struct {
	pipeline *logsink.Pipeline
	validate *validator.Validate
	now      func() time.Time
}

func newIngestor(p *logsink.Pipeline) *ingestor {
	return &ingestor{
		pipeline: p,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// fill applies defaults to every field except Message
func (s *Submission) fill() {
	if s.Source == "" {
		s.Source = DefaultSource
	}
	if s.Level == "" {
		s.Level = DefaultLevel
	}
	if s.RemoteIP == "" {
		s.RemoteIP = DefaultRemoteIP
	}
}

// ready restarts a writer that died or was stopped
func (i *ingestor) ready() error {
	if err := i.pipeline.EnsureStarted(); err != nil {
		if errors.Is(err, logsink.ErrShutdown) {
			return errShuttingDown
		}
		return err
	}
	return nil
}

// submit echoes the tagged message to the console and enqueues it.
// Returns errNoMessage, errQueueFull or errShuttingDown for the expected
// refusals and any other error for internal failures.
func (i *ingestor) submit(sub Submission) (Receipt, error) {
	sub.fill()
	if err := i.validate.Struct(&sub); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return Receipt{}, errNoMessage
		}
		return Receipt{}, err
	}

	severity := logsink.SeverityOrInfo(sub.Level)
	text := formatter.Message(sub.Source, sub.RemoteIP, sub.Message)

	i.pipeline.Echo(severity, text)

	switch err := i.pipeline.Enqueue(severity, text); {
	case errors.Is(err, logsink.ErrQueueFull):
		i.pipeline.Echo(logsink.SeverityError, msgQueueFull)
		return Receipt{}, errQueueFull
	case errors.Is(err, logsink.ErrShutdown):
		return Receipt{}, errShuttingDown
	case err != nil:
		return Receipt{}, err
	}

	return Receipt{
		Status:    "success",
		Message:   "Log recorded successfully",
		Source:    sub.Source,
		RemoteIP:  sub.RemoteIP,
		Level:     sub.Level,
		Timestamp: i.now().Format(logsink.ResponseTimestampFormat),
	}, nil
}

// fail reports an internal ingestion failure on the console and, when a
// writer is alive, records it as an ERROR entry. Returns the client message.
func (i *ingestor) fail(cause any) string {
	msg := fmt.Sprintf(msgIngestFailed, cause)
	i.pipeline.Echo(logsink.SeverityError, msg)

	if i.pipeline.IsAlive() {
		if err := i.pipeline.Enqueue(logsink.SeverityError, msg); errors.Is(err, logsink.ErrQueueFull) {
			i.pipeline.Echo(logsink.SeverityError, "Logging queue full while handling an error")
		}
	}
	return msg
}
