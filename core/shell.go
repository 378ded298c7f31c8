package core

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/josephlewis42/mysh/core/config"
	"github.com/josephlewis42/mysh/core/logger"
	"github.com/josephlewis42/mysh/core/shell"
	"github.com/josephlewis42/mysh/core/ttylog"
	"github.com/josephlewis42/mysh/core/vio"
	"github.com/spf13/afero"
)

// BuiltinExit stops the shell.
const BuiltinExit = "exit"

// Reasons a session ends.
const (
	EndReasonExit  = "exit"
	EndReasonEOF   = "eof"
	EndReasonError = "error"
)

// Options holds the environment the shell runs in.
type Options struct {
	// Config holds user settings, nil uses the defaults.
	Config *config.Configuration

	// Stdout and Stderr receive the shell's output and, unless redirected,
	// the output of commands.
	Stdout io.Writer
	Stderr io.Writer

	// ChildStdin is the standard input of commands.
	ChildStdin io.Reader

	// Fs is used to create redirection targets, nil uses the OS.
	Fs afero.Fs

	// Terminal is set if the input and output are an interactive terminal.
	Terminal bool

	// Events receives session events, nil discards them.
	Events logger.EventRecorder

	// Recording receives all terminal traffic if set.
	Recording ttylog.LogSink
}

// commandRunner runs a parsed command, a non-nil error stops the shell.
type commandRunner interface {
	Execute(cmd *shell.Command) (Outcome, error)
}

var _ commandRunner = (*Executor)(nil)

// Shell reads command lines from a session and runs them.
type Shell struct {
	session     *Session
	prompt      string
	streams     vio.VIO
	recorder    *ttylog.Recorder
	lines       LineReader
	executor    commandRunner
	diagnostics *Diagnostics
	events      logger.EventRecorder
}

// NewShell sets up a shell for the session. The shell takes ownership of the
// session and closes it in Close.
func NewShell(session *Session, opts Options) (*Shell, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Shell{
		session: session,
		events:  opts.Events,
	}
	if s.events == nil {
		s.events = &logger.NopEventRecorder{}
	}

	s.streams = vio.NewAdapter(session.Input, opts.Stdout, opts.Stderr)
	if opts.Recording != nil {
		s.recorder = ttylog.NewRecorder(s.streams, opts.Recording)
		s.streams = s.recorder
	}

	s.diagnostics = NewDiagnostics(s.streams.Stdout(), s.streams.Stderr(), cfg.Color, opts.Terminal)

	if session.Mode == ModeInteractive {
		s.prompt = cfg.Prompt
	}

	if session.Mode == ModeInteractive && opts.Terminal {
		lines, err := NewReadlineLineReader(s.streams.Stdin(), s.streams.Stdout(), s.streams.Stderr())
		if err != nil {
			return nil, err
		}
		s.lines = lines
	} else {
		s.lines = NewBufferedLineReader(s.streams.Stdin(), s.streams.Stdout())
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	s.executor = &Executor{
		Fs:          fs,
		Stdin:       opts.ChildStdin,
		Stdout:      s.streams.Stdout(),
		Stderr:      s.streams.Stderr(),
		Diagnostics: s.diagnostics,
	}

	return s, nil
}

// Run reads and executes lines until exit is called or the input ends. The
// returned error is always fatal, problems with individual lines are reported
// to the user and skipped.
func (s *Shell) Run() error {
	s.record(&logger.SessionStart{Mode: s.session.Mode.String(), Input: s.session.Name})

	for {
		line, err := s.lines.ReadLine(s.prompt)
		switch {
		case err == io.EOF:
			s.record(&logger.SessionEnd{Reason: EndReasonEOF})
			return nil
		case err != nil:
			s.record(&logger.SessionEnd{Reason: EndReasonError})
			return fmt.Errorf("read %s: %w", s.session.Name, err)
		}

		quit, err := s.runLine(line)
		switch {
		case err != nil:
			s.record(&logger.SessionEnd{Reason: EndReasonError})
			return err
		case quit:
			s.record(&logger.SessionEnd{Reason: EndReasonExit})
			return nil
		}
	}
}

// runLine processes a single line of input, quit is set if the shell should
// stop.
func (s *Shell) runLine(line Line) (quit bool, err error) {
	if s.session.Mode == ModeBatch {
		io.WriteString(s.streams.Stdout(), line.Raw)
		if line.TooLong && !strings.HasSuffix(line.Raw, "\n") {
			// The warning goes on its own line.
			io.WriteString(s.streams.Stdout(), "\n")
		}
	}

	if line.TooLong {
		s.diagnostics.LongLine()
		s.record(&logger.InvalidInvocation{Line: line.Raw, Error: "line too long"})
		return false, nil
	}

	cmd, err := shell.Parse(line.Raw)
	if err != nil {
		s.diagnostics.MisformattedRedirection()
		s.record(&logger.InvalidInvocation{Line: line.Raw, Error: err.Error()})
		return false, nil
	}

	switch {
	case len(cmd.Args) == 0:
		return false, nil
	case cmd.Name() == BuiltinExit:
		return true, nil
	}

	outcome, err := s.executor.Execute(cmd)
	if err != nil {
		return false, err
	}

	s.record(&logger.RunCommand{
		Command:    cmd.Args,
		Redirect:   cmd.Redirect,
		ExitStatus: outcome.ExitStatus,
	})

	if !outcome.Success() {
		s.diagnostics.CommandNotFound(cmd.Name())
		s.record(&logger.UnknownCommand{Command: cmd.Args, ExitStatus: outcome.ExitStatus})
	}

	return false, nil
}

func (s *Shell) record(event logger.LogType) {
	if err := s.events.Record(event); err != nil {
		log.Printf("recording event: %v", err)
	}
}

// Close releases the line editor and closes the session input.
func (s *Shell) Close() error {
	var toClose listCloser
	toClose = append(toClose, s.lines)
	if s.recorder != nil {
		toClose = append(toClose, s.recorder)
	}
	toClose = append(toClose, s.session)

	return toClose.Close()
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
