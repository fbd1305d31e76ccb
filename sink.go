package logmanager

import (
	"io"
	"time"
)

// Sink is the terminal destination of formatted records. A sink is driven by a
// single channel worker and is never called concurrently.
type Sink interface {
	// Write performs one blocking write of a formatted record stamped ts
	Write(p []byte, ts time.Time) error
	// Sync pushes buffered data to the underlying device
	Sync() error
	// Close releases the sink after the final Sync
	Close() error
}

var (
	_ Sink = (*RollingWriter)(nil)
	_ Sink = (*StreamSink)(nil)
)

// StreamSink writes records to a stream such as os.Stdout.
// The stream is never closed.
type StreamSink struct {
	w io.Writer
}

// NewStreamSink wraps w, using io.Discard when w is nil
func NewStreamSink(w io.Writer) *StreamSink {
	if w == nil {
		w = io.Discard
	}
	return &StreamSink{w: w}
}

// Write writes p to the stream, ts is ignored
func (s *StreamSink) Write(p []byte, _ time.Time) error {
	_, err := s.w.Write(p)
	return err
}

// Sync flushes writers exposing Flush, such as *bufio.Writer.
// Terminals are not fsync'ed.
func (s *StreamSink) Sync() error {
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes the stream and leaves it open
func (s *StreamSink) Close() error {
	return s.Sync()
}
