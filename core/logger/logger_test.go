package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedTime() time.Time {
	return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestSessionLogger_Record(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewJSONLinesLogRecorder(buf)
	logger.SetTimeSource(fixedTime)
	session := logger.NewSessionWithID("abc")

	require.NoError(t, session.Record(&RunCommand{
		Command:    []string{"/bin/echo", "hi"},
		ExitStatus: 0,
	}))

	assert.Equal(t,
		`{"run_command":{"command":["/bin/echo","hi"],"exit_status":0},"session_id":"abc","timestamp_micros":1136171045000000}`+"\n",
		buf.String())
}

func TestReadJSONLinesLog(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewJSONLinesLogRecorder(buf)
	logger.SetTimeSource(fixedTime)
	session := logger.NewSession()

	events := []LogType{
		&SessionStart{Mode: "batch", Input: "cmds.txt"},
		&RunCommand{Command: []string{"/bin/ls"}, Redirect: "out.txt", ExitStatus: 2},
		&UnknownCommand{Command: []string{"/bin/ls"}, ExitStatus: 2},
		&InvalidInvocation{Line: "> x\n", Error: "redirection misformatted"},
		&SessionEnd{Reason: "exit"},
	}
	for _, event := range events {
		require.NoError(t, session.Record(event))
	}

	var got []LogType
	err := ReadJSONLinesLog(buf, func(le *LogEntry) {
		assert.Equal(t, session.SessionID(), le.SessionID)
		assert.Equal(t, fixedTime().UnixMicro(), le.TimestampMicros)
		got = append(got, le.GetLogType())
	})

	require.NoError(t, err)
	assert.Equal(t, events, got)
}

func TestReadJSONLinesLog_invalid(t *testing.T) {
	cases := map[string]string{
		"not-json": "{",
		"no-event": `{"timestamp_micros":5,"session_id":"x"}`,
	}

	for tn, input := range cases {
		t.Run(tn, func(t *testing.T) {
			err := ReadJSONLinesLog(strings.NewReader(input), func(*LogEntry) {
				t.Fatal("handler should not be called")
			})
			assert.Error(t, err)
		})
	}
}

func TestNewSession_uniqueIDs(t *testing.T) {
	logger := NewJSONLinesLogRecorder(&bytes.Buffer{})

	a, b := logger.NewSession(), logger.NewSession()

	assert.NotEmpty(t, a.SessionID())
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}

func TestNopEventRecorder(t *testing.T) {
	assert.NoError(t, (&NopEventRecorder{}).Record(&SessionEnd{Reason: "eof"}))
}
