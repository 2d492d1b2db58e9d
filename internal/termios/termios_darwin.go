//go:build darwin

package termios

import "golang.org/x/sys/unix"

const (
	ioctlGetTermios      = unix.TIOCGETA
	ioctlSetTermiosNow   = unix.TIOCSETA
	ioctlSetTermiosDrain = unix.TIOCSETAW
)

func lflag(t *unix.Termios) uint64       { return t.Lflag }
func setLflag(t *unix.Termios, v uint64) { t.Lflag = v }

func oflag(t *unix.Termios) uint64       { return t.Oflag }
func setOflag(t *unix.Termios, v uint64) { t.Oflag = v }
