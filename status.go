package ptyprocess

import "github.com/CharlesJS/PTYProcess/internal/watcher"

// Status is the lifecycle state of a Process at a point in time.
type Status = watcher.Status

// Status constructors and the kinds a Status can report. NotRunYet is the
// state before Run is called; Running and Suspended carry the child's
// pid; Exited and UncaughtSignal are terminal.
var (
	StatusNotRunYet      = watcher.StatusNotRunYet
	StatusRunning        = watcher.StatusRunning
	StatusSuspended      = watcher.StatusSuspended
	StatusExited         = watcher.StatusExited
	StatusUncaughtSignal = watcher.StatusUncaughtSignal
)

const (
	KindNotRunYet      = watcher.NotRunYet
	KindRunning        = watcher.Running
	KindSuspended      = watcher.Suspended
	KindExited         = watcher.Exited
	KindUncaughtSignal = watcher.UncaughtSignal
)
