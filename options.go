package ptyprocess

import (
	"github.com/CharlesJS/PTYProcess/internal/spawn"
	"github.com/CharlesJS/PTYProcess/internal/termios"
)

// Options is a bitmask of PTY line-discipline settings applied to the
// primary side at spawn time and queryable/settable afterward.
type Options = termios.Options

const (
	DisableEcho  = termios.DisableEcho
	NonCanonical = termios.NonCanonical
	OutputCRLF   = termios.OutputCRLF
)

// CaptureRequest selects how a child's stdout or stderr is wired back to
// the parent.
type CaptureRequest = spawn.CaptureRequest

const (
	CaptureNone = spawn.CaptureNone
	CaptureNull = spawn.CaptureNull
	CapturePipe = spawn.CapturePipe
	CapturePty  = spawn.CapturePty
)
