package core

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/abiosoft/readline"
)

// MaxLineLength is the longest accepted command line, not counting the
// terminating newline.
const MaxLineLength = 512

// Line is a single line of input.
type Line struct {
	// Raw holds the line as read including its newline. Lines over
	// MaxLineLength are cut down to their first MaxLineLength bytes.
	Raw string
	// TooLong is set if the line was over MaxLineLength.
	TooLong bool
}

// LineReader produces lines of input, it returns io.EOF when the input is
// exhausted.
type LineReader interface {
	// ReadLine writes prompt, if any, then blocks for the next line.
	ReadLine(prompt string) (Line, error)
	Close() error
}

// bufferedLineReader reads lines with a fixed size buffer so over-long lines
// are drained rather than held in memory.
type bufferedLineReader struct {
	r   *bufio.Reader
	out io.Writer
}

var _ LineReader = (*bufferedLineReader)(nil)

// NewBufferedLineReader reads lines from r, prompts are written to out.
func NewBufferedLineReader(r io.Reader, out io.Writer) LineReader {
	return &bufferedLineReader{
		// One extra byte for the newline.
		r:   bufio.NewReaderSize(r, MaxLineLength+1),
		out: out,
	}
}

func (b *bufferedLineReader) ReadLine(prompt string) (Line, error) {
	if prompt != "" {
		if _, err := io.WriteString(b.out, prompt); err != nil {
			return Line{}, err
		}
	}

	chunk, err := b.r.ReadSlice('\n')
	switch {
	case err == nil:
		return newLine(string(chunk)), nil

	case errors.Is(err, bufio.ErrBufferFull):
		line := Line{Raw: string(chunk[:MaxLineLength]), TooLong: true}
		terminated, err := b.discardLine()
		if terminated {
			line.Raw += "\n"
		}
		return line, err

	case err == io.EOF && len(chunk) > 0:
		// Final line without a newline.
		return newLine(string(chunk)), nil

	default:
		return Line{}, err
	}
}

// discardLine drops input up to and including the next newline.
func (b *bufferedLineReader) discardLine() (terminated bool, err error) {
	for {
		_, err := b.r.ReadSlice('\n')
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err == io.EOF:
			return false, nil
		default:
			return false, err
		}
	}
}

func (b *bufferedLineReader) Close() error {
	return nil
}

// readlineLineReader reads from a terminal with line editing.
type readlineLineReader struct {
	rl *readline.Instance
}

var _ LineReader = (*readlineLineReader)(nil)

// NewReadlineLineReader creates a line editor over a terminal.
func NewReadlineLineReader(in io.Reader, out, errOut io.Writer) (LineReader, error) {
	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(in),
		Stdout: out,
		Stderr: errOut,
		FuncIsTerminal: func() bool {
			return true
		},
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	return &readlineLineReader{rl: rl}, nil
}

func (r *readlineLineReader) ReadLine(prompt string) (Line, error) {
	r.rl.SetPrompt(prompt)

	for {
		line, err := r.rl.Readline()
		switch {
		case err == readline.ErrInterrupt:
			// Interrupt clears the line.
			continue
		case err != nil:
			return Line{}, err
		}

		if len(line) > MaxLineLength {
			return Line{Raw: line[:MaxLineLength] + "\n", TooLong: true}, nil
		}
		return Line{Raw: line + "\n"}, nil
	}
}

func (r *readlineLineReader) Close() error {
	return r.rl.Close()
}

func newLine(raw string) Line {
	return Line{
		Raw:     raw,
		TooLong: len(strings.TrimSuffix(raw, "\n")) > MaxLineLength,
	}
}
