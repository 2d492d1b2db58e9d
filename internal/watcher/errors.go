package watcher

import "errors"

// ErrNotRunning is returned by Suspend/Resume/Signal once the watched
// process has reached a terminal status.
var ErrNotRunning = errors.New("watcher: process is not running")
