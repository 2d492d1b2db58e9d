// Package spawn performs the atomic construction of a PTY pair plus
// per-stream capture channels and invokes the child process, grounded on
// proctmux's internal/process/controller.go StartProcess (pty.Start,
// termios raw-mode setup, SysProcAttr process-group isolation) generalized
// from "always a PTY on stdout+stderr" to the spec's independent
// None/Null/Pipe/Pty choice per stream.
package spawn

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"

	"github.com/CharlesJS/PTYProcess/internal/descriptor"
	"github.com/CharlesJS/PTYProcess/internal/termios"
)

// Config describes a single spawn attempt. It is consumed exactly once by
// Spawn.
type Config struct {
	// Path is the executable to run. It is never resolved against PATH,
	// the same as posix_spawn(path, ...) rather than posix_spawnp.
	Path string
	Args []string

	// Env, when non-nil, is the child's entire environment (an empty
	// map means an empty environment). nil means inherit the parent's.
	Env map[string]string

	// Dir is the child's working directory. Empty is treated as
	// absent, a deliberate workaround for chdir("") returning ENOENT.
	Dir string

	Stdout CaptureRequest
	Stderr CaptureRequest

	// Options is applied to the PTY primary before the child starts.
	Options termios.Options

	// SignalMask, if non-empty, is blocked in the child at spawn time on
	// Linux; on other platforms it is ignored with a warning.
	SignalMask []os.Signal

	// Logger receives diagnostic events; defaults to slog.Default().
	Logger *slog.Logger
}

// Runner is the immutable result of a successful Spawn: a pid plus the
// descriptors the parent now owns. PTY is always present; Stdout/Stderr
// are nil unless the corresponding CaptureRequest produced a parent-side
// handle. When a stream requested CapturePty, its handle is the same
// *descriptor.Handle as PTY (the two streams share one reader, since the
// source only ever spawns one reader per owned handle).
type Runner struct {
	Pid    int
	PTY    *descriptor.Handle
	Stdout *descriptor.Handle
	Stderr *descriptor.Handle
}

// Spawn opens a PTY pair, wires the requested capture channels, and starts
// the child. Every descriptor opened along the way is accounted for on
// every exit path: nothing leaks to the parent on success, failure, or a
// panic unwinding through this function.
func Spawn(cfg Config) (_ *Runner, err error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	var closeOnExit, closeOnError []io.Closer
	defer func() {
		r := recover()
		for _, c := range closeOnExit {
			_ = c.Close()
		}
		if err != nil || r != nil {
			for _, c := range closeOnError {
				_ = c.Close()
			}
		}
		if r != nil {
			panic(r)
		}
	}()

	primary, secondary, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("spawn: open pty: %w", err)
	}
	closeOnError = append(closeOnError, primary)
	closeOnExit = append(closeOnExit, secondary)
	ptyHandle := descriptor.FromFile(primary)

	if err := termios.ApplyTo(int(primary.Fd()), cfg.Options, true, false); err != nil {
		return nil, fmt.Errorf("spawn: configure pty: %w", err)
	}

	cmd := &exec.Cmd{
		Path: cfg.Path,
		Args: append([]string{cfg.Path}, cfg.Args...),
	}
	cmd.Stdin = secondary
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Setctty: true,
		Ctty:    0,
	}

	if cfg.Dir != "" {
		cmd.Dir = cfg.Dir
	}
	cmd.Env = buildEnv(cfg.Env)

	stdoutHandle, err := wireStream(&cmd.Stdout, cfg.Stdout, os.Stdout, ptyHandle, secondary, &closeOnExit, &closeOnError)
	if err != nil {
		return nil, fmt.Errorf("spawn: wire stdout: %w", err)
	}
	stderrHandle, err := wireStream(&cmd.Stderr, cfg.Stderr, os.Stderr, ptyHandle, secondary, &closeOnExit, &closeOnError)
	if err != nil {
		return nil, fmt.Errorf("spawn: wire stderr: %w", err)
	}

	restore, err := blockSignals(cfg.SignalMask)
	if err != nil {
		return nil, fmt.Errorf("spawn: set signal mask: %w", err)
	}
	startErr := cmd.Start()
	restore()

	if startErr != nil {
		return nil, classifyStartError(cfg.Path, startErr)
	}

	log.Debug("spawn: started child", "pid", cmd.Process.Pid, "path", cfg.Path)
	cmd.Process.Release()

	return &Runner{
		Pid:    cmd.Process.Pid,
		PTY:    ptyHandle,
		Stdout: stdoutHandle,
		Stderr: stderrHandle,
	}, nil
}

// wireStream implements the per-stream CaptureRequest table: it decides
// what the child's target *os.File should be and what (if any) handle the
// parent keeps.
func wireStream(
	target **os.File,
	req CaptureRequest,
	inherited *os.File,
	ptyHandle *descriptor.Handle,
	secondary *os.File,
	closeOnExit, closeOnError *[]io.Closer,
) (*descriptor.Handle, error) {
	switch req {
	case CaptureNone:
		*target = inherited
		return nil, nil

	case CaptureNull:
		null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
		if err != nil {
			return nil, err
		}
		*closeOnError = append(*closeOnError, null)
		// Deliberately left unaltered: the child's target fd keeps
		// whatever it already inherits. See the Null capture note on
		// CaptureNull in capture.go.
		*target = inherited
		return descriptor.FromFile(null), nil

	case CapturePipe:
		r, w, err := os.Pipe()
		if err != nil {
			return nil, err
		}
		*closeOnExit = append(*closeOnExit, w)
		*closeOnError = append(*closeOnError, r)
		*target = w
		return descriptor.FromFile(r), nil

	case CapturePty:
		*target = secondary
		return ptyHandle, nil

	default:
		return nil, fmt.Errorf("unknown capture request %v", req)
	}
}

// classifyStartError wraps the posix_spawn-equivalent failure the same way
// the spec requires: ENOENT becomes a "file not found" domain error, and
// everything else keeps its wrapped errno.
func classifyStartError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOENT) {
		return fmt.Errorf("file read: no such file: %s: %w", path, syscall.ENOENT)
	}
	return fmt.Errorf("spawn: start %s: %w", path, err)
}
