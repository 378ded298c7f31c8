package core

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	getopt "github.com/pborman/getopt/v2"
	"github.com/spf13/afero"
)

// ErrUsage is returned when the shell is started with bad arguments.
var ErrUsage = errors.New("usage: mysh [batchFile]")

// Mode is how the shell takes its input.
type Mode int

const (
	// ModeInteractive reads from the live input stream and prompts first.
	ModeInteractive Mode = iota
	// ModeBatch reads from a file and echoes every line.
	ModeBatch
)

func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeBatch:
		return "batch"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// OpenError is returned when the batch file can't be opened.
type OpenError struct {
	Name string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("cannot open file %q: %v", e.Name, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Session is the immutable startup configuration of a shell.
type Session struct {
	Mode Mode
	// Name of the input, the batch file path or "stdin".
	Name  string
	Input io.ReadCloser

	closeOnce sync.Once
	closeErr  error
}

// Close closes the input, only the first call has an effect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.Input.Close()
	})
	return s.closeErr
}

// ResolveSession picks the session mode from the full argument vector
// (program name first). A single extra argument names a batch file which is
// opened from fs. Options of any kind are rejected.
func ResolveSession(fs afero.Fs, args []string, stdin io.ReadCloser) (*Session, error) {
	if len(args) == 0 {
		return nil, ErrUsage
	}

	opts := getopt.New()
	if err := opts.Getopt(args, nil); err != nil {
		return nil, fmt.Errorf("%w (%v)", ErrUsage, strings.TrimSpace(err.Error()))
	}

	switch {
	case len(args) == 1:
		return &Session{Mode: ModeInteractive, Name: "stdin", Input: stdin}, nil
	case len(args) == 2 && opts.NArgs() == 1:
		name := opts.Arg(0)
		fd, err := fs.Open(name)
		if err != nil {
			return nil, &OpenError{Name: name, Err: err}
		}
		return &Session{Mode: ModeBatch, Name: name, Input: fd}, nil
	default:
		return nil, ErrUsage
	}
}
