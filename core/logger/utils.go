package logger

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType identifies what a LogEntry describes.
type EventType string

const (
	SessionStart EventType = "session_start"
	SessionEnd   EventType = "session_end"
	Command      EventType = "command"
	JobStarted   EventType = "job_started"
	JobFinished  EventType = "job_finished"
	ModeChanged  EventType = "mode_changed"
)

// LogEntry is a single recorded event.
type LogEntry struct {
	TimestampMicros int64     `json:"timestamp_micros"`
	SessionID       string    `json:"session_id,omitempty"`
	Type            EventType `json:"type"`

	// Set for session events.
	ShellPID int `json:"shell_pid,omitempty"`

	// Set for command and job events.
	Command    []string `json:"command,omitempty"`
	Builtin    bool     `json:"builtin,omitempty"`
	PID        int      `json:"pid,omitempty"`
	Background bool     `json:"background,omitempty"`
	Status     string   `json:"status,omitempty"`

	// Set for mode events.
	ForegroundOnly bool `json:"foreground_only,omitempty"`
}

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures job event logs.
type Logger struct {
	Record LogRecorder
}

// NewJsonLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	var mu sync.Mutex

	return &Logger{
		Record: func(le *LogEntry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}
			entry = append(entry, '\n')

			mu.Lock()
			defer mu.Unlock()
			_, err = w.Write(entry)
			return err
		},
	}
}

// NewDiscardLogger creates a Logger that drops every event.
func NewDiscardLogger() *Logger {
	return &Logger{
		Record: func(*LogEntry) error { return nil },
	}
}

func (l *Logger) record(sessionID string, le *LogEntry) error {
	le.TimestampMicros = time.Now().UnixMicro()
	le.SessionID = sessionID

	return l.Record(le)
}

// NewSession creates a logger with attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: uuid.NewString()}
}

// SessionLogger logs messages with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

// SessionID returns the ID attached to every event.
func (l *SessionLogger) SessionID() string {
	return l.sessionID
}

// Record stamps the event with the session and time then stores it.
func (l *SessionLogger) Record(le *LogEntry) error {
	return l.record(l.sessionID, le)
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}
