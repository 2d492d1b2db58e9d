// Package descriptor owns raw OS file descriptors so that exactly one
// goroutine ever closes a given fd, no matter how many components of
// the process supervisor hold a reference to it.
package descriptor

import (
	"io"
	"os"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// Handle is a move-only owner of a single raw file descriptor. It is safe
// to share a *Handle across goroutines; Close is idempotent: the first
// call returns the close error, if any, and the second and later calls
// are silently ignored.
type Handle struct {
	mu     sync.Mutex
	fd     int
	file   *os.File
	closed bool
}

// FromFD wraps a raw file descriptor that the caller has already opened.
func FromFD(fd int) *Handle {
	return &Handle{fd: fd}
}

// FromFile wraps an already-owned *os.File, the "owned platform handle"
// construction path. Closing the Handle closes the underlying file.
func FromFile(f *os.File) *Handle {
	return &Handle{fd: int(f.Fd()), file: f}
}

// FD returns the raw descriptor. It remains valid until Close is called,
// even from another goroutine; callers racing a concurrent Close may
// observe a descriptor that has just been invalidated, which is the
// caller's responsibility to serialize against.
func (h *Handle) FD() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fd
}

// Read performs a single blocking read into buf, returning the number of
// bytes read. unix.Read reports end-of-file as (0, nil); Read translates
// that into io.EOF so it satisfies the io.Reader contract (a pipe whose
// write end closed reads this way). A PTY primary instead reports EIO
// once every secondary has closed, which Read also maps to io.EOF.
func (h *Handle) Read(buf []byte) (int, error) {
	h.mu.Lock()
	fd := h.fd
	closed := h.closed
	h.mu.Unlock()

	if closed {
		return 0, os.ErrClosed
	}

	n, err := unix.Read(fd, buf)
	if err != nil {
		if err == syscall.EIO {
			return 0, io.EOF
		}
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write performs a single blocking write of buf, returning the number of
// bytes written.
func (h *Handle) Write(buf []byte) (int, error) {
	h.mu.Lock()
	fd := h.fd
	closed := h.closed
	h.mu.Unlock()

	if closed {
		return 0, os.ErrClosed
	}

	return unix.Write(fd, buf)
}

// Close releases the descriptor exactly once. Every call after the first
// returns nil without touching the fd again.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.file != nil {
		return h.file.Close()
	}
	return unix.Close(h.fd)
}
