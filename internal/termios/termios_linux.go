//go:build linux

package termios

import "golang.org/x/sys/unix"

const (
	ioctlGetTermios      = unix.TCGETS
	ioctlSetTermiosNow   = unix.TCSETS
	ioctlSetTermiosDrain = unix.TCSETSW
)

func lflag(t *unix.Termios) uint64    { return uint64(t.Lflag) }
func setLflag(t *unix.Termios, v uint64) { t.Lflag = uint32(v) }

func oflag(t *unix.Termios) uint64    { return uint64(t.Oflag) }
func setOflag(t *unix.Termios, v uint64) { t.Oflag = uint32(v) }
