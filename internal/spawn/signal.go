package spawn

import (
	"os"
	"syscall"
)

// signalNumber extracts the numeric signal value from an os.Signal,
// returning 0 for anything that is not a syscall.Signal (which covers
// every signal value this package and its callers construct).
func signalNumber(s os.Signal) int {
	if sig, ok := s.(syscall.Signal); ok {
		return int(sig)
	}
	return 0
}
