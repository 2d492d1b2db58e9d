//go:build linux

package spawn

import (
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

// blockSignals blocks sigs on the calling OS thread and returns a restore
// function that undoes it. This is the parent-side bracket around
// cmd.Start used to stand in for POSIX_SPAWN_SETSIGMASK, which the Go
// runtime's ForkExec does not expose directly: glibc's posix_spawn applies
// the mask to the child only, but since a freshly forked child inherits
// its parent thread's mask at the instant of fork, blocking the signals on
// the spawning thread for the duration of the fork achieves the same
// result for the child while leaving the rest of the process unaffected.
func blockSignals(sigs []os.Signal) (restore func(), err error) {
	if len(sigs) == 0 {
		return func() {}, nil
	}

	var set unix.Sigset_t
	for _, s := range sigs {
		addSignal(&set, signalNumber(s))
	}

	runtime.LockOSThread()
	var old unix.Sigset_t
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &set, &old); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	return func() {
		_ = unix.PthreadSigmask(unix.SIG_SETMASK, &old, nil)
		runtime.UnlockOSThread()
	}, nil
}

func addSignal(set *unix.Sigset_t, num int) {
	if num <= 0 {
		return
	}
	word := (num - 1) / 64
	bit := uint((num - 1) % 64)
	if word < len(set.Val) {
		set.Val[word] |= 1 << bit
	}
}
