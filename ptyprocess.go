package ptyprocess

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/CharlesJS/PTYProcess/internal/bytestream"
	"github.com/CharlesJS/PTYProcess/internal/spawn"
	"github.com/CharlesJS/PTYProcess/internal/termios"
	"github.com/CharlesJS/PTYProcess/internal/watcher"
)

// Process supervises one child attached to a pseudo-terminal. Create one
// with New, start it with Run, and use the remaining methods to observe
// and control it afterward. A Process runs exactly one child; build a new
// one to run another command.
type Process struct {
	path   string
	args   []string
	env    map[string]string
	dir    string
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	runner  *spawn.Runner
	watch   *watcher.Watcher

	ptyStream    *bytestream.Stream
	stdoutStream *bytestream.Stream
	stderrStream *bytestream.Stream
}

// Option configures a Process before Run. Following the builder-by-option
// convention, every Option is applied in New, before the child exists.
type Option func(*Process)

// WithEnv sets the child's entire environment, used exactly as given
// rather than merged with the caller's. A nil env (the default) inherits
// the caller's environment.
func WithEnv(env map[string]string) Option {
	return func(p *Process) { p.env = env }
}

// WithDir sets the child's working directory. An empty dir (the default)
// is treated as absent, leaving the child in the caller's cwd.
func WithDir(dir string) Option {
	return func(p *Process) { p.dir = dir }
}

// WithLogger overrides the *slog.Logger used for diagnostic events.
// Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(p *Process) { p.logger = log }
}

// New constructs a Process for path/args. It does not spawn anything;
// call Run to start the child.
func New(path string, args []string, opts ...Option) *Process {
	p := &Process{path: path, args: args}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Run spawns the child, applying options to the PTY primary before the
// child starts and wiring stdout/stderr per the given CaptureRequests.
// Run may be called at most once per Process; calling it again is a
// programmer error and panics.
func (p *Process) Run(ctx context.Context, stdout, stderr CaptureRequest, options Options, mask []os.Signal) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		panic(ErrAlreadyRun)
	}
	p.started = true
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := spawn.Config{
		Path:       p.path,
		Args:       p.args,
		Env:        p.env,
		Dir:        p.dir,
		Stdout:     stdout,
		Stderr:     stderr,
		Options:    options,
		SignalMask: mask,
		Logger:     p.logger,
	}

	runner, err := spawn.Spawn(cfg)
	if err != nil {
		if errors.Is(err, syscall.ENOENT) {
			return &PathError{Path: p.path, Err: err}
		}
		return err
	}

	w := watcher.Start(runner.Pid, p.logger)

	p.mu.Lock()
	p.runner = runner
	p.watch = w
	p.mu.Unlock()

	return nil
}

// Write sends input to the child by writing to the PTY primary, the
// mechanism behind "feeding it input" — there is no separate stdin
// channel, since the child's stdin is always the PTY secondary. Returns
// a BadDescriptorError if called before Run.
func (p *Process) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.runner == nil {
		return 0, &BadDescriptorError{Op: "Write", Err: syscall.EBADF}
	}
	return p.runner.PTY.Write(b)
}

// PTYBytes returns the async byte stream reading from the PTY primary.
// Panics if called before Run succeeds.
func (p *Process) PTYBytes() *bytestream.Stream {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.runner == nil {
		panic("ptyprocess: PTYBytes called before Run")
	}
	if p.ptyStream == nil {
		p.ptyStream = bytestream.New(p.runner.PTY, 0)
	}
	return p.ptyStream
}

// StdoutBytes returns the async byte stream for the child's stdout.
// Panics if Run was not called with CapturePipe, CaptureNull or
// CapturePty for stdout; with CaptureNull the stream reads /dev/null and
// ends at once. When stdout was captured via CapturePty, this returns the
// same Stream as PTYBytes, since both read from the same descriptor.
func (p *Process) StdoutBytes() *bytestream.Stream {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.runner == nil || p.runner.Stdout == nil {
		panic("ptyprocess: StdoutBytes called without capturing stdout")
	}
	if p.runner.Stdout == p.runner.PTY {
		if p.ptyStream == nil {
			p.ptyStream = bytestream.New(p.runner.PTY, 0)
		}
		return p.ptyStream
	}
	if p.stdoutStream == nil {
		p.stdoutStream = bytestream.New(p.runner.Stdout, 0)
	}
	return p.stdoutStream
}

// StderrBytes returns the async byte stream for the child's stderr.
// Panics if Run was not called with CapturePipe, CaptureNull or
// CapturePty for stderr; with CaptureNull the stream reads /dev/null and
// ends at once. When stderr was captured via CapturePty, this returns the
// same Stream as PTYBytes.
func (p *Process) StderrBytes() *bytestream.Stream {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.runner == nil || p.runner.Stderr == nil {
		panic("ptyprocess: StderrBytes called without capturing stderr")
	}
	if p.runner.Stderr == p.runner.PTY {
		if p.ptyStream == nil {
			p.ptyStream = bytestream.New(p.runner.PTY, 0)
		}
		return p.ptyStream
	}
	if p.stderrStream == nil {
		p.stderrStream = bytestream.New(p.runner.Stderr, 0)
	}
	return p.stderrStream
}

// Options reads the PTY primary's current line-discipline settings.
// Returns a BadDescriptorError if called before Run.
func (p *Process) Options() (Options, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.runner == nil {
		return 0, &BadDescriptorError{Op: "Options", Err: syscall.EBADF}
	}
	return termios.FromFD(p.runner.PTY.FD())
}

// SetOptions applies o to the PTY primary immediately. Returns a
// BadDescriptorError if called before Run.
func (p *Process) SetOptions(o Options) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.runner == nil {
		return &BadDescriptorError{Op: "SetOptions", Err: syscall.EBADF}
	}
	return termios.ApplyTo(p.runner.PTY.FD(), o, true, false)
}

// Resize sets the PTY's window size, which the child observes as a
// SIGWINCH plus updated ioctl(TIOCGWINSZ) results.
func (p *Process) Resize(rows, cols uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.runner == nil {
		return &BadDescriptorError{Op: "Resize", Err: syscall.EBADF}
	}

	ws := &unix.Winsize{Row: rows, Col: cols}
	return unix.IoctlSetWinsize(p.runner.PTY.FD(), unix.TIOCSWINSZ, ws)
}

// Status returns the current lifecycle status. Before Run this is always
// StatusNotRunYet.
func (p *Process) Status() Status {
	p.mu.Lock()
	w := p.watch
	p.mu.Unlock()

	if w == nil {
		return StatusNotRunYet()
	}
	return w.Status()
}

// WaitUntilExit blocks until the child reaches a terminal status or ctx
// is canceled. Returns a NoSuchProcessError if called before Run.
func (p *Process) WaitUntilExit(ctx context.Context) (Status, error) {
	p.mu.Lock()
	w := p.watch
	p.mu.Unlock()

	if w == nil {
		return StatusNotRunYet(), &NoSuchProcessError{Op: "WaitUntilExit", Err: syscall.ESRCH}
	}
	return w.WaitUntilExit(ctx)
}

// Terminate sends SIGTERM to the child.
func (p *Process) Terminate() error { return p.signal(syscall.SIGTERM, "Terminate") }

// Interrupt sends SIGINT to the child.
func (p *Process) Interrupt() error { return p.signal(syscall.SIGINT, "Interrupt") }

// Suspend sends SIGSTOP to the child.
func (p *Process) Suspend() error { return p.signal(syscall.SIGSTOP, "Suspend") }

// Resume sends SIGCONT to the child.
func (p *Process) Resume() error { return p.signal(syscall.SIGCONT, "Resume") }

// Signal sends an arbitrary signal to the child.
func (p *Process) Signal(sig syscall.Signal) error { return p.signal(sig, "Signal") }

func (p *Process) signal(sig syscall.Signal, op string) error {
	p.mu.Lock()
	w := p.watch
	p.mu.Unlock()

	if w == nil {
		return &NoSuchProcessError{Op: op, Err: syscall.ESRCH}
	}

	err := w.Signal(sig)
	if errors.Is(err, watcher.ErrNotRunning) {
		return &NoSuchProcessError{Op: op, Err: syscall.ESRCH}
	}
	return err
}

// Close releases every descriptor this Process owns: the watcher
// goroutine, the byte streams, and the PTY/stdout/stderr handles
// themselves. It does not affect the child process; terminate it first
// with Terminate if that's what's wanted.
func (p *Process) Close() {
	p.mu.Lock()
	w := p.watch
	runner := p.runner
	ptyStream := p.ptyStream
	stdoutStream := p.stdoutStream
	stderrStream := p.stderrStream
	p.mu.Unlock()

	if w != nil {
		w.Close()
	}
	if ptyStream != nil {
		ptyStream.Close()
	}
	if stdoutStream != nil {
		stdoutStream.Close()
	}
	if stderrStream != nil {
		stderrStream.Close()
	}

	if runner == nil {
		return
	}
	runner.PTY.Close()
	if runner.Stdout != nil {
		runner.Stdout.Close()
	}
	if runner.Stderr != nil {
		runner.Stderr.Close()
	}
}
