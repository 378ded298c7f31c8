package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventRecorder records session events.
type EventRecorder interface {
	Record(event LogType) error
}

// NopEventRecorder discards all events.
type NopEventRecorder struct{}

var _ EventRecorder = (*NopEventRecorder)(nil)

func (*NopEventRecorder) Record(event LogType) error {
	return nil
}

// Logger writes JSON lines events to a shared output.
type Logger struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewJSONLinesLogRecorder creates a Logger writing to w.
func NewJSONLinesLogRecorder(w io.Writer) *Logger {
	return &Logger{out: w, now: time.Now}
}

// SetTimeSource replaces the clock used to stamp events.
func (l *Logger) SetTimeSource(now func() time.Time) {
	l.now = now
}

// NewSession creates a recorder that tags events with a fresh session ID.
func (l *Logger) NewSession() *SessionLogger {
	return l.NewSessionWithID(uuid.NewString())
}

// NewSessionWithID creates a recorder for an existing session ID.
func (l *Logger) NewSessionWithID(id string) *SessionLogger {
	return &SessionLogger{logger: l, sessionID: id}
}

func (l *Logger) write(sessionID string, event LogType) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	line, err := json.Marshal(map[string]interface{}{
		"timestamp_micros": l.now().UnixMicro(),
		"session_id":       sessionID,
		event.eventName():  event,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(l.out, "%s\n", line)
	return err
}

// SessionLogger records events for one shell session.
type SessionLogger struct {
	logger    *Logger
	sessionID string
}

var _ EventRecorder = (*SessionLogger)(nil)

// SessionID gets the ID attached to every event.
func (s *SessionLogger) SessionID() string {
	return s.sessionID
}

// Record writes the event to the log.
func (s *SessionLogger) Record(event LogType) error {
	return s.logger.write(s.sessionID, event)
}
