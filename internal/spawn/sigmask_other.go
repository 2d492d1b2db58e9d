//go:build !linux

package spawn

import (
	"log/slog"
	"os"
)

// blockSignals is a no-op outside Linux: golang.org/x/sys/unix does not
// expose a portable Sigset_t/pthread_sigmask pairing on every platform
// this package builds for, so the signal-mask spawn option is honored on
// Linux only. Callers still get a successful spawn; they simply do not
// get POSIX_SPAWN_SETSIGMASK-equivalent behavior on other platforms.
func blockSignals(sigs []os.Signal) (restore func(), err error) {
	if len(sigs) > 0 {
		slog.Warn("spawn: signal mask requested but unsupported on this platform")
	}
	return func() {}, nil
}
