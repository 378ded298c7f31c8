// Package vio bundles the three standard streams a shell reads from and
// writes to so they can be swapped out for recording or tests.
package vio

import (
	"io"
	"os"
)

// VIO is a set of standard streams.
type VIO interface {
	Stdin() io.ReadCloser
	Stdout() io.WriteCloser
	Stderr() io.WriteCloser
}

// Adapter implements VIO over arbitrary readers and writers.
type Adapter struct {
	IStdin  io.ReadCloser
	IStdout io.WriteCloser
	IStderr io.WriteCloser
}

var _ VIO = (*Adapter)(nil)

// NewAdapter creates a VIO, nil streams read as closed and discard writes.
func NewAdapter(stdin io.Reader, stdout, stderr io.Writer) *Adapter {
	return &Adapter{
		IStdin:  toReadCloserOrDiscard(stdin),
		IStdout: toWriteCloserOrDiscard(stdout),
		IStderr: toWriteCloserOrDiscard(stderr),
	}
}

func (a *Adapter) Stdin() io.ReadCloser {
	return a.IStdin
}

func (a *Adapter) Stdout() io.WriteCloser {
	return a.IStdout
}

func (a *Adapter) Stderr() io.WriteCloser {
	return a.IStderr
}

func toWriteCloserOrDiscard(w io.Writer) io.WriteCloser {
	if w == nil {
		return &devNull{}
	}
	if wc, ok := w.(io.WriteCloser); ok {
		return wc
	}

	return nopWriteCloser{w}
}

func toReadCloserOrDiscard(r io.Reader) io.ReadCloser {
	if r == nil {
		return &devNull{}
	}
	if rc, ok := r.(io.ReadCloser); ok {
		return rc
	}

	return io.NopCloser(r)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// devNull always reports closed on reads and discards writes.
type devNull struct{}

var _ io.ReadCloser = (*devNull)(nil)
var _ io.WriteCloser = (*devNull)(nil)

func (*devNull) Read([]byte) (int, error) {
	return 0, os.ErrClosed
}

func (*devNull) Close() error {
	return nil
}

func (*devNull) Write(b []byte) (int, error) {
	return len(b), nil
}
