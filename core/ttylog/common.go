// Package ttylog records the terminal traffic of a shell session.
package ttylog

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/josephlewis42/mysh/core/vio"
)

// FD identifies the stream an IO event happened on.
type FD int

const (
	FDStdin FD = iota
	FDStdout
	FDStderr
)

// TTYLogEntry is a single recorded event.
type TTYLogEntry struct {
	TimestampMicros int64
	// Event is one of *IO or *Close.
	Event interface{}
}

// IO holds data read from or written to a stream.
type IO struct {
	FD   FD
	Data []byte
}

// Close marks the end of a recording.
type Close struct{}

// LogSink receives log events.
type LogSink func(t *TTYLogEntry) error

// Recorder wraps a set of streams and forwards their traffic to a LogSink.
type Recorder struct {
	*vio.Adapter
	mutex  sync.Mutex
	output LogSink
	now    func() time.Time
}

var _ vio.VIO = (*Recorder)(nil)

func (r *Recorder) record(entry *TTYLogEntry) {
	r.mutex.Lock()
	err := r.output(entry)
	r.mutex.Unlock()
	if err != nil {
		log.Print(err)
	}
}

func (r *Recorder) recordIO(mockFd FD, data []byte, dest func([]byte) (int, error)) (int, error) {
	eventTime := r.now()
	amount, err := dest(data)
	if amount > 0 {
		// Copy, callers are free to reuse the buffer.
		recorded := make([]byte, amount)
		copy(recorded, data[:amount])
		r.record(&TTYLogEntry{
			TimestampMicros: eventTime.UnixMicro(),
			Event:           &IO{FD: mockFd, Data: recorded},
		})
	}
	return amount, err
}

// Close writes the end of the recording, it does not close the wrapped
// streams.
func (r *Recorder) Close() error {
	r.record(&TTYLogEntry{
		TimestampMicros: r.now().UnixMicro(),
		Event:           &Close{},
	})
	return nil
}

type recorderReadCloser struct {
	r       *Recorder
	mockFd  FD
	wrapped io.ReadCloser
}

var _ io.ReadCloser = (*recorderReadCloser)(nil)

func (rc *recorderReadCloser) Read(p []byte) (int, error) {
	return rc.r.recordIO(rc.mockFd, p, rc.wrapped.Read)
}

func (rc *recorderReadCloser) Close() error {
	return rc.wrapped.Close()
}

type recorderWriteCloser struct {
	r       *Recorder
	mockFd  FD
	wrapped io.WriteCloser
}

var _ io.WriteCloser = (*recorderWriteCloser)(nil)

func (rc *recorderWriteCloser) Write(p []byte) (int, error) {
	return rc.r.recordIO(rc.mockFd, p, rc.wrapped.Write)
}

func (rc *recorderWriteCloser) Close() error {
	return rc.wrapped.Close()
}

// NewRecorder creates a logger that forwards all events to output.
func NewRecorder(toWrap vio.VIO, output LogSink) *Recorder {
	return newRecorder(toWrap, output, time.Now)
}

func newRecorder(toWrap vio.VIO, output LogSink, now func() time.Time) *Recorder {
	recorder := &Recorder{
		output: output,
		now:    now,
	}

	recorder.Adapter = &vio.Adapter{
		IStdin:  &recorderReadCloser{mockFd: FDStdin, r: recorder, wrapped: toWrap.Stdin()},
		IStdout: &recorderWriteCloser{mockFd: FDStdout, r: recorder, wrapped: toWrap.Stdout()},
		IStderr: &recorderWriteCloser{mockFd: FDStderr, r: recorder, wrapped: toWrap.Stderr()},
	}

	return recorder
}
