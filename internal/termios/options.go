// Package termios provides the bidirectional mapping between the public
// PTYOptions flag set and the termios bits tcgetattr/tcsetattr operate on,
// grounded on the ioctl-based raw mode setup proctmux's process package
// used for its PTY master (setRawMode in pty.go).
package termios

import "golang.org/x/sys/unix"

// Options is a set of PTY behaviors the caller can request. The zero value
// is the default cooked terminal: echo on, canonical line discipline,
// output CR/LF translation off.
type Options uint8

const (
	// DisableEcho turns off character echo (termios ECHO, inverted).
	DisableEcho Options = 1 << iota
	// NonCanonical disables line buffering and erase/kill processing
	// (termios ICANON, inverted).
	NonCanonical
	// OutputCRLF enables output NL->CRNL translation (termios ONLCR, direct).
	OutputCRLF
)

// Has reports whether flag is present in the set.
func (o Options) Has(flag Options) bool { return o&flag != 0 }

// With returns a copy of o with flag set.
func (o Options) With(flag Options) Options { return o | flag }

// Without returns a copy of o with flag cleared.
func (o Options) Without(flag Options) Options { return o &^ flag }

type bit struct {
	flag     Options
	get      func(*unix.Termios) uint64
	set      func(*unix.Termios, uint64)
	mask     uint64
	inverted bool
}

var bits = []bit{
	{flag: DisableEcho, get: lflag, set: setLflag, mask: uint64(unix.ECHO), inverted: true},
	{flag: NonCanonical, get: lflag, set: setLflag, mask: uint64(unix.ICANON), inverted: true},
	{flag: OutputCRLF, get: oflag, set: setOflag, mask: uint64(unix.ONLCR), inverted: false},
}

// FromFD reads the termios state of fd via tcgetattr and translates it into
// an Options set according to the table above. Fails with the underlying
// errno (ENOTTY included) if fd is not a terminal.
func FromFD(fd int) (Options, error) {
	t, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return 0, err
	}

	var o Options
	for _, b := range bits {
		set := b.get(t)&b.mask != 0
		if b.inverted {
			set = !set
		}
		if set {
			o |= b.flag
		}
	}
	return o, nil
}

// ApplyTo sets the termios state of fd via tcsetattr to reflect o.
// The change is applied TCSANOW-equivalently unless drainFirst is true,
// which selects TCSADRAIN-equivalent application, waiting for pending
// output to drain. immediately has no effect of its own: TCSANOW is
// already what applies when drainFirst is false.
// Fails with the underlying errno if fd is not a terminal.
func ApplyTo(fd int, o Options, immediately, drainFirst bool) error {
	t, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return err
	}

	for _, b := range bits {
		want := o.Has(b.flag)
		if b.inverted {
			want = !want
		}
		cur := b.get(t)
		if want {
			cur |= b.mask
		} else {
			cur &^= b.mask
		}
		b.set(t, cur)
	}

	req := ioctlSetTermiosNow
	_ = immediately
	if drainFirst {
		req = ioctlSetTermiosDrain
	}

	return unix.IoctlSetTermios(fd, req, t)
}
