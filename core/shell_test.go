package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"testing/iotest"

	"github.com/josephlewis42/mysh/core/config"
	"github.com/josephlewis42/mysh/core/logger"
	"github.com/josephlewis42/mysh/core/shell"
	"github.com/josephlewis42/mysh/core/ttylog"
	"github.com/sebdah/goldie/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shellTest struct {
	session *Session
	opts    Options
	// runner replaces the process executor if set.
	runner commandRunner
}

// run executes the shell to completion and returns everything it wrote to
// stdout and stderr.
func (st *shellTest) run(t *testing.T) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	st.opts.Stdout = out
	st.opts.Stderr = out
	if st.opts.Fs == nil {
		st.opts.Fs = afero.NewMemMapFs()
	}

	sh, err := NewShell(st.session, st.opts)
	require.NoError(t, err)
	if st.runner != nil {
		sh.executor = st.runner
	}
	runErr := sh.Run()
	require.NoError(t, sh.Close())

	return out.String(), runErr
}

func batchTest(t *testing.T, script string) *shellTest {
	t.Helper()

	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "script.sh", []byte(script), 0644))
	session, err := ResolveSession(memFs, []string{"mysh", "script.sh"}, nil)
	require.NoError(t, err)

	return &shellTest{session: session, opts: Options{Fs: memFs}}
}

func interactiveTest(input string) *shellTest {
	return &shellTest{
		session: &Session{Mode: ModeInteractive, Name: "stdin", Input: io.NopCloser(strings.NewReader(input))},
	}
}

func TestShell_batch(t *testing.T) {
	requireExecutable(t, "/bin/echo", "/bin/false")

	cases := map[string]string{
		"echo-exit":           "/bin/echo hi\nexit\n/bin/echo never\n",
		"blank-lines":         "\n   \n\t\n/bin/echo a   b\n",
		"redirect-errors":     "> out.txt\n/bin/ls > > out.txt\n/bin/ls > a.txt b.txt\n/bin/ls >\n   > out.txt\n",
		"not-found":           "/does/not/exist -l\n/bin/echo after\n",
		"failing-command":     "/bin/false\n/bin/echo after\n",
		"long-line":           strings.Repeat("x", MaxLineLength+1) + "\n/bin/echo ok\n" + strings.Repeat("y", MaxLineLength) + "\n",
		"long-unterminated":   "/bin/echo ok\n" + strings.Repeat("q", MaxLineLength+1),
		"redirect":            "/bin/echo hi > out.txt\n/bin/echo done\n",
		"no-trailing-newline": "/bin/echo last",
		"exit-with-args":      "exit now\n/bin/echo never\n",
		"exit-redirected":     "exit > out.txt\n/bin/echo never\n",
		"exit-malformed":      "exit > a b\nexit\n",
	}

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
		goldie.WithSubTestNameForDir(true),
	)

	for tn, script := range cases {
		t.Run(tn, func(t *testing.T) {
			out, err := batchTest(t, script).run(t)
			require.NoError(t, err)

			g.Assert(t, tn, []byte(out))
		})
	}
}

func TestShell_redirect(t *testing.T) {
	requireExecutable(t, "/bin/echo")

	st := batchTest(t, "/bin/echo first > out.txt\n/bin/echo second   >out.txt\n")
	_, err := st.run(t)
	require.NoError(t, err)

	contents, err := afero.ReadFile(st.opts.Fs, "out.txt")
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(contents))
}

func TestShell_redirectFailure(t *testing.T) {
	requireExecutable(t, "/bin/echo")

	st := batchTest(t, "/bin/echo hi > out.txt\n/bin/echo next\n")
	st.opts.Fs = afero.NewReadOnlyFs(afero.NewMemMapFs())

	out, err := st.run(t)

	require.NoError(t, err)
	assert.Equal(t, "/bin/echo hi > out.txt\n"+
		"Cannot write to file out.txt.\n"+
		"/bin/echo: Command not found.\n"+
		"/bin/echo next\n"+
		"next\n", out)
}

func TestShell_interactive(t *testing.T) {
	requireExecutable(t, "/bin/echo")

	cases := map[string]struct {
		input  string
		prompt string
		want   string
	}{
		"eof":          {input: "", want: "mysh> "},
		"echo":         {input: "/bin/echo hi\n", want: "mysh> hi\nmysh> "},
		"blank":        {input: "\n  \n", want: "mysh> mysh> mysh> "},
		"exit":         {input: "exit\n/bin/echo never\n", want: "mysh> "},
		"not-found":    {input: "/nope\n", want: "mysh> /nope: Command not found.\nmysh> "},
		"custom":       {input: "/bin/echo hi\n", prompt: "$ ", want: "$ hi\n$ "},
		"misformatted": {input: "/bin/echo >\n", want: "mysh> Redirection misformatted.\nmysh> "},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			st := interactiveTest(tc.input)
			if tc.prompt != "" {
				st.opts.Config = config.Default()
				st.opts.Config.Prompt = tc.prompt
			}

			out, err := st.run(t)

			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestShell_readError(t *testing.T) {
	st := &shellTest{
		session: &Session{
			Mode:  ModeBatch,
			Name:  "broken.sh",
			Input: io.NopCloser(iotest.ErrReader(errors.New("disk on fire"))),
		},
	}

	_, err := st.run(t)

	assert.EqualError(t, err, "read broken.sh: disk on fire")
}

func TestShell_events(t *testing.T) {
	requireExecutable(t, "/bin/echo")

	buf := &bytes.Buffer{}
	st := batchTest(t, "/bin/echo hi > out.txt\n/nope\n> bad\nexit\n")
	st.opts.Events = logger.NewJSONLinesLogRecorder(buf).NewSessionWithID("test")

	_, err := st.run(t)
	require.NoError(t, err)

	var events []logger.LogType
	require.NoError(t, logger.ReadJSONLinesLog(buf, func(le *logger.LogEntry) {
		assert.Equal(t, "test", le.SessionID)
		events = append(events, le.GetLogType())
	}))

	assert.Equal(t, []logger.LogType{
		&logger.SessionStart{Mode: "batch", Input: "script.sh"},
		&logger.RunCommand{Command: []string{"/bin/echo", "hi"}, Redirect: "out.txt"},
		&logger.RunCommand{Command: []string{"/nope"}, ExitStatus: StatusNotRunnable},
		&logger.UnknownCommand{Command: []string{"/nope"}, ExitStatus: StatusNotRunnable},
		&logger.InvalidInvocation{Line: "> bad\n", Error: "redirection misformatted: no command before '>'"},
		&logger.SessionEnd{Reason: EndReasonExit},
	}, events)
}

func TestShell_recording(t *testing.T) {
	requireExecutable(t, "/bin/echo")

	var entries []*ttylog.TTYLogEntry
	st := interactiveTest("/bin/echo recorded\n")
	st.opts.Recording = func(entry *ttylog.TTYLogEntry) error {
		entries = append(entries, entry)
		return nil
	}

	out, err := st.run(t)
	require.NoError(t, err)

	var input, output bytes.Buffer
	closed := false
	for _, entry := range entries {
		switch event := entry.Event.(type) {
		case *ttylog.IO:
			if event.FD == ttylog.FDStdin {
				input.Write(event.Data)
			} else {
				output.Write(event.Data)
			}
		case *ttylog.Close:
			closed = true
		}
	}

	assert.Equal(t, "/bin/echo recorded\n", input.String())
	assert.Equal(t, out, output.String())
	assert.True(t, closed)
}

type failingRunner struct {
	err   error
	calls int
}

func (f *failingRunner) Execute(*shell.Command) (Outcome, error) {
	f.calls++
	return Outcome{}, f.err
}

func TestShell_fatalExecution(t *testing.T) {
	cases := map[string]struct {
		err  error
		want error
	}{
		"spawn": {err: fmt.Errorf("%w: %v", ErrSpawn, syscall.EAGAIN), want: ErrSpawn},
		"wait":  {err: fmt.Errorf("%w: %v", ErrWait, syscall.ECHILD), want: ErrWait},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			buf := &bytes.Buffer{}
			runner := &failingRunner{err: tc.err}
			st := batchTest(t, "/bin/first\n/bin/second\n")
			st.opts.Events = logger.NewJSONLinesLogRecorder(buf).NewSessionWithID("test")
			st.runner = runner

			out, err := st.run(t)

			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 1, runner.calls)
			assert.Equal(t, "/bin/first\n", out)

			var last logger.LogType
			require.NoError(t, logger.ReadJSONLinesLog(buf, func(le *logger.LogEntry) {
				last = le.GetLogType()
			}))
			assert.Equal(t, &logger.SessionEnd{Reason: EndReasonError}, last)
		})
	}
}
