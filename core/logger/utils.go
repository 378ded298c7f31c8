package logger

import (
	"encoding/json"
	"fmt"
	"io"
)

// LogEntry is a single decoded event.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id"`

	SessionStart      *SessionStart      `json:"session_start,omitempty"`
	RunCommand        *RunCommand        `json:"run_command,omitempty"`
	UnknownCommand    *UnknownCommand    `json:"unknown_command,omitempty"`
	InvalidInvocation *InvalidInvocation `json:"invalid_invocation,omitempty"`
	SessionEnd        *SessionEnd        `json:"session_end,omitempty"`
}

// GetLogType returns the event held by the entry.
func (le *LogEntry) GetLogType() LogType {
	switch {
	case le.SessionStart != nil:
		return le.SessionStart
	case le.RunCommand != nil:
		return le.RunCommand
	case le.UnknownCommand != nil:
		return le.UnknownCommand
	case le.InvalidInvocation != nil:
		return le.InvalidInvocation
	case le.SessionEnd != nil:
		return le.SessionEnd
	default:
		return nil
	}
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		if logEntry.GetLogType() == nil {
			return fmt.Errorf("log entry at %d has no event", logEntry.TimestampMicros)
		}

		handler(&logEntry)
	}
	return nil
}
