// Package bytestream turns a blocking descriptor read into a lazy,
// single-pass sequence of bytes produced on a background goroutine,
// grounded on the producer-goroutine-plus-channel shape of proctmux's
// RingBuffer readers (internal/buffer/ring_buffer.go's NewReader/Write
// pair), adapted from a broadcast scrollback buffer into a single-consumer,
// backpressured pipe: the channel here is unbuffered so the producer never
// runs ahead of the one reader that exists for a non-restartable stream.
package bytestream

import (
	"io"
	"sync"
)

// DefaultWorkingBufferSize is the size of the buffer passed to each
// background read. The spec's nominal capacity of 1 GiB is a ceiling on
// how large a single read may be sized, not a preallocation target; 4 KiB
// is the working size actually used.
const DefaultWorkingBufferSize = 4096

type chunk struct {
	data []byte
	err  error
}

// Stream is a single-consumer, single-pass byte sequence produced by
// repeatedly calling Read on an underlying descriptor from a background
// goroutine. It is not safe to read from multiple goroutines concurrently,
// and it cannot be restarted once exhausted or closed.
type Stream struct {
	ch        chan chunk
	done      chan struct{}
	closeOnce sync.Once

	pending    []byte
	pendingErr error
}

// New starts a background goroutine reading from r in chunks of bufSize
// bytes (DefaultWorkingBufferSize if bufSize <= 0) and returns a Stream
// that yields those bytes to a single consumer.
func New(r io.Reader, bufSize int) *Stream {
	if bufSize <= 0 {
		bufSize = DefaultWorkingBufferSize
	}

	s := &Stream{
		ch:   make(chan chunk),
		done: make(chan struct{}),
	}
	go s.produce(r, bufSize)
	return s
}

func (s *Stream) produce(r io.Reader, bufSize int) {
	defer close(s.ch)

	buf := make([]byte, bufSize)
	for {
		select {
		case <-s.done:
			return
		default:
		}

		n, err := r.Read(buf)

		var data []byte
		if n > 0 {
			data = append([]byte(nil), buf[:n]...)
		}

		select {
		case s.ch <- chunk{data: data, err: err}:
		case <-s.done:
			return
		}

		if err != nil {
			return
		}
	}
}

// fill pulls the next chunk from the producer if the pending buffer is
// empty and no terminal error/EOF has been latched yet.
func (s *Stream) fill() {
	if len(s.pending) > 0 || s.pendingErr != nil {
		return
	}

	c, ok := <-s.ch
	if !ok {
		s.pendingErr = io.EOF
		return
	}

	s.pending = c.data
	if c.err != nil {
		s.pendingErr = c.err
	}
}

// Read implements io.Reader, draining whatever bytes are currently
// buffered before blocking on the next background read. It composes with
// bufio.Reader, io.Copy, and any other io.Reader consumer.
func (s *Stream) Read(p []byte) (int, error) {
	s.fill()

	if len(s.pending) == 0 {
		if s.pendingErr != nil {
			return 0, s.pendingErr
		}
		return 0, nil
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Next yields a single byte at a time, matching the spec's framing of the
// stream as an async sequence of individual items. io.EOF terminates the
// sequence; any other error terminates it with that failure.
func (s *Stream) Next() (byte, error) {
	for len(s.pending) == 0 && s.pendingErr == nil {
		s.fill()
	}

	if len(s.pending) == 0 {
		return 0, s.pendingErr
	}

	b := s.pending[0]
	s.pending = s.pending[1:]
	return b, nil
}

// Close stops the producer at its next read boundary. It does not block
// waiting for the background goroutine's in-flight read to return; that
// read is only unblocked by the descriptor itself reaching EOF or being
// closed elsewhere.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}
