package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/josephlewis42/mysh/core/shell"
	"github.com/spf13/afero"
)

const (
	// StatusRedirectFailed is reported when the output file can't be opened.
	StatusRedirectFailed = 1
	// StatusNotRunnable is reported when the program can't be started.
	StatusNotRunnable = 127
)

var (
	// ErrSpawn means no new process could be created.
	ErrSpawn = errors.New("cannot create process")
	// ErrWait means the shell lost track of a child.
	ErrWait = errors.New("cannot wait for process")
)

// Outcome describes how a command finished.
type Outcome struct {
	ExitStatus int
}

// Success reports whether the command exited cleanly.
func (o Outcome) Success() bool {
	return o.ExitStatus == 0
}

// Executor runs commands as child processes, one at a time.
type Executor struct {
	// Fs is used to create redirection targets.
	Fs afero.Fs

	// Stdin, Stdout and Stderr are inherited by children. Nil connects the
	// stream to the null device.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Diagnostics receives redirection failures.
	Diagnostics *Diagnostics
}

// child is a started process and the resources it holds.
type child struct {
	cmd      *exec.Cmd
	redirect io.Closer
}

// Execute runs cmd and waits for it. The returned error is only non-nil if
// the shell itself can't continue, a failing command is reported through
// the Outcome.
func (e *Executor) Execute(cmd *shell.Command) (Outcome, error) {
	proc, status, err := e.spawn(cmd)
	if err != nil || proc == nil {
		return Outcome{ExitStatus: status}, err
	}

	status, err = e.wait(proc)
	return Outcome{ExitStatus: status}, err
}

// spawn sets up the child's output and starts the program. A nil child with
// a nil error means the command was abandoned with the given status.
func (e *Executor) spawn(cmd *shell.Command) (*child, int, error) {
	stdout := e.Stdout
	var redirect afero.File
	if cmd.HasRedirect() {
		fd, err := e.Fs.OpenFile(cmd.Redirect, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			e.Diagnostics.CannotWrite(cmd.Redirect)
			return nil, StatusRedirectFailed, nil
		}
		redirect = fd
		stdout = fd
	}

	// Args[0] is used as-is, there's no search of $PATH.
	proc := &exec.Cmd{
		Path:   cmd.Name(),
		Args:   cmd.Args,
		Stdin:  e.Stdin,
		Stdout: stdout,
		Stderr: e.Stderr,
	}

	if err := proc.Start(); err != nil {
		if redirect != nil {
			redirect.Close()
		}
		if isSpawnFailure(err) {
			return nil, 0, fmt.Errorf("%w: %v", ErrSpawn, err)
		}
		return nil, StatusNotRunnable, nil
	}

	return &child{cmd: proc, redirect: redirect}, 0, nil
}

// wait blocks until the child exits and returns its exit status.
func (e *Executor) wait(c *child) (int, error) {
	err := c.cmd.Wait()
	if c.redirect != nil {
		c.redirect.Close()
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		if code := exitErr.ExitCode(); code > 0 {
			return code, nil
		}
		// Killed by a signal.
		return 128 + signalNumber(exitErr), nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrWait, err)
	}
}

// isSpawnFailure distinguishes failing to create a process at all from
// failing to run the requested program.
func isSpawnFailure(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.ENOMEM)
}

func signalNumber(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return int(ws.Signal())
	}
	return 0
}
