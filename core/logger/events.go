package logger

// LogType is implemented by every loggable event.
type LogType interface {
	// eventName is the JSON key the event is stored under.
	eventName() string
}

// SessionStart is logged once the input source is open.
type SessionStart struct {
	Mode  string `json:"mode"`
	Input string `json:"input"`
}

// RunCommand is logged after every command that was started.
type RunCommand struct {
	Command    []string `json:"command"`
	Redirect   string   `json:"redirect,omitempty"`
	ExitStatus int      `json:"exit_status"`
}

// UnknownCommand is logged when a command couldn't be run or failed.
type UnknownCommand struct {
	Command    []string `json:"command"`
	ExitStatus int      `json:"exit_status"`
}

// InvalidInvocation is logged for lines that were rejected before running.
type InvalidInvocation struct {
	Line  string `json:"line"`
	Error string `json:"error"`
}

// SessionEnd is logged when the loop terminates.
type SessionEnd struct {
	Reason string `json:"reason"`
}

func (*SessionStart) eventName() string      { return "session_start" }
func (*RunCommand) eventName() string        { return "run_command" }
func (*UnknownCommand) eventName() string    { return "unknown_command" }
func (*InvalidInvocation) eventName() string { return "invalid_invocation" }
func (*SessionEnd) eventName() string        { return "session_end" }

var _ LogType = (*SessionStart)(nil)
var _ LogType = (*RunCommand)(nil)
var _ LogType = (*UnknownCommand)(nil)
var _ LogType = (*InvalidInvocation)(nil)
var _ LogType = (*SessionEnd)(nil)
