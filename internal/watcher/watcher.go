// Package watcher owns the single goroutine that reaps a spawned child
// and serializes every status read/mutation through it, grounded on
// proctmux's internal/process/instance.go LockAndLoad single-writer
// pattern and on the SIGCHLD+Wait4 reaping loop in
// _examples/other_examples/db02a58e_michaeljprentice-vic__lib-tether-tether_linux.go.go.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// Result is what a wait-for-exit continuation receives: the terminal
// status once reached, or a non-nil err if the child was reaped by
// something else first (ECHILD) before this Watcher could observe its
// exit.
type Result struct {
	Status Status
	Err    error
}

type waiter struct {
	resultCh chan Result
}

type state struct {
	status  Status
	waiters []waiter
	reapErr error
}

// Watcher owns reaping for exactly one pid. All state access happens on
// its single actor goroutine; every exported method round-trips through
// the cmds channel rather than touching state directly.
type Watcher struct {
	pid  int
	log  *slog.Logger
	cmds chan func(*state)
	stop chan struct{}
}

// Start begins watching pid, which must already be running (the caller
// just spawned it). The returned Watcher's initial status is Running.
func Start(pid int, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}

	w := &Watcher{
		pid:  pid,
		log:  log,
		cmds: make(chan func(*state)),
		stop: make(chan struct{}),
	}

	go w.run()

	return w
}

func (w *Watcher) run() {
	st := &state{status: StatusRunning(w.pid)}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGCHLD)
	defer signal.Stop(sig)

	// The child may have already exited between Spawn returning and this
	// goroutine reaching signal.Notify; check once up front so that race
	// doesn't strand it unreaped until some unrelated SIGCHLD arrives.
	w.reap(st)

	subscribed := true
	if st.status.IsTerminal() {
		signal.Stop(sig)
		subscribed = false
	}

	for {
		select {
		case <-sig:
			w.reap(st)
			if st.status.IsTerminal() && subscribed {
				signal.Stop(sig)
				subscribed = false
			}
		case fn := <-w.cmds:
			fn(st)
		case <-w.stop:
			return
		}
	}
}

// reap drains every pending wait4 state change for w.pid without
// blocking, folding stop/continue transitions into Suspended/Running and
// latching the first Exited/UncaughtSignal/reap-failure it observes.
func (w *Watcher) reap(st *state) {
	if st.status.IsTerminal() {
		return
	}

	for {
		var ws unix.WaitStatus
		wpid, err := unix.Wait4(w.pid, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)

		if err == unix.EINTR {
			continue
		}
		if err != nil {
			// ECHILD here means some other part of the process already
			// reaped this pid out from under us. Latch a terminal error
			// rather than spinning on a wait that can never succeed.
			st.reapErr = err
			w.log.Warn("watcher: wait4 failed, abandoning reap", "pid", w.pid, "err", err)
			w.resolveWaiters(st)
			return
		}
		if wpid == 0 {
			return
		}

		switch {
		case ws.Exited():
			st.status = StatusExited(ws.ExitStatus())
			w.resolveWaiters(st)
			return
		case ws.Signaled():
			st.status = StatusUncaughtSignal(int(ws.Signal()))
			w.resolveWaiters(st)
			return
		case ws.Stopped():
			st.status = StatusSuspended(w.pid)
		case ws.Continued():
			st.status = StatusRunning(w.pid)
		}
	}
}

func (w *Watcher) resolveWaiters(st *state) {
	res := Result{Status: st.status, Err: st.reapErr}
	for _, wt := range st.waiters {
		wt.resultCh <- res
	}
	st.waiters = nil
}

// Status returns the current status. While the cached status is
// Suspended it first issues a non-blocking wait4 peek, since not every
// platform this module targets (Darwin in particular) reliably
// redelivers SIGCHLD for CLD_CONTINUED/CLD_STOPPED transitions; without
// this peek a Resume() on such a host could go unobserved indefinitely.
func (w *Watcher) Status() Status {
	result := make(chan Status, 1)
	w.cmds <- func(st *state) {
		if st.status.Kind() == Suspended {
			w.reap(st)
		}
		result <- st.status
	}
	return <-result
}

// WaitUntilExit blocks until the child reaches a terminal status, ctx is
// canceled, or the reap fails out from under this Watcher.
func (w *Watcher) WaitUntilExit(ctx context.Context) (Status, error) {
	resultCh := make(chan Result, 1)
	w.cmds <- func(st *state) {
		if st.status.Kind() == Suspended {
			w.reap(st)
		}
		if st.status.IsTerminal() || st.reapErr != nil {
			resultCh <- Result{Status: st.status, Err: st.reapErr}
			return
		}
		st.waiters = append(st.waiters, waiter{resultCh: resultCh})
	}

	select {
	case res := <-resultCh:
		return res.Status, res.Err
	case <-ctx.Done():
		return w.Status(), ctx.Err()
	}
}

// Suspend sends SIGSTOP to the child.
func (w *Watcher) Suspend() error { return w.signal(syscall.SIGSTOP) }

// Resume sends SIGCONT to the child.
func (w *Watcher) Resume() error { return w.signal(syscall.SIGCONT) }

// Signal sends an arbitrary signal to the child.
func (w *Watcher) Signal(sig syscall.Signal) error { return w.signal(sig) }

func (w *Watcher) signal(sig syscall.Signal) error {
	result := make(chan error, 1)
	w.cmds <- func(st *state) {
		if st.status.IsTerminal() {
			result <- ErrNotRunning
			return
		}
		result <- syscall.Kill(w.pid, sig)
	}
	return <-result
}

// Close stops the actor goroutine. Safe to call once the status is
// terminal; the Watcher must not be used afterward.
func (w *Watcher) Close() {
	close(w.stop)
}
