package spawn

// CaptureRequest selects how a child's stdout or stderr stream is wired
// back to the parent, mirroring the four channel kinds a spawn-file-actions
// object can register in the source library.
type CaptureRequest int

const (
	// CaptureNone leaves the child's stream untouched; it inherits
	// whatever the supervising process itself has open at that slot.
	CaptureNone CaptureRequest = iota
	// CaptureNull binds a parent-side handle to /dev/null. The child's
	// target fd is left unaltered: it inherits the supervising process's
	// stream at that slot, exactly as with CaptureNone, so reading the
	// parent-side handle yields nothing regardless of what the child writes.
	CaptureNull
	// CapturePipe creates a unidirectional pipe; the parent holds the
	// read end and the child's target fd becomes the write end.
	CapturePipe
	// CapturePty dup's the child's target fd onto the PTY secondary; the
	// parent-side handle is the (shared) PTY primary.
	CapturePty
)

func (c CaptureRequest) String() string {
	switch c {
	case CaptureNone:
		return "None"
	case CaptureNull:
		return "Null"
	case CapturePipe:
		return "Pipe"
	case CapturePty:
		return "Pty"
	default:
		return "Unknown"
	}
}
