package ptyprocess

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"
)

func withTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRun_ExitCode(t *testing.T) {
	for _, code := range []int{0, 100} {
		p := New("/bin/sh", []string{"-c", "exit " + strconv.Itoa(code)})
		if err := p.Run(withTimeout(t), CaptureNull, CaptureNull, 0, nil); err != nil {
			t.Fatalf("Run: %v", err)
		}
		defer p.Close()

		st, err := p.WaitUntilExit(withTimeout(t))
		if err != nil {
			t.Fatalf("WaitUntilExit: %v", err)
		}
		if st.Kind() != KindExited || st.ExitCode() != code {
			t.Fatalf("status = %v, want Exited(%d)", st, code)
		}
	}
}

func TestRun_Signaled(t *testing.T) {
	p := New("/bin/sh", []string{"-c", "kill -TERM $$; sleep 5"})
	if err := p.Run(withTimeout(t), CaptureNull, CaptureNull, 0, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer p.Close()

	st, err := p.WaitUntilExit(withTimeout(t))
	if err != nil {
		t.Fatalf("WaitUntilExit: %v", err)
	}
	if st.Kind() != KindUncaughtSignal {
		t.Fatalf("status = %v, want UncaughtSignal", st)
	}
}

func TestTerminate_StopsSleep(t *testing.T) {
	p := New("/bin/sleep", []string{"5"})
	if err := p.Run(withTimeout(t), CaptureNull, CaptureNull, 0, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer p.Close()

	if err := p.Terminate(); err != nil {
		t.Fatalf("Terminate: %v", err)
	}

	st, err := p.WaitUntilExit(withTimeout(t))
	if err != nil {
		t.Fatalf("WaitUntilExit: %v", err)
	}
	if st.Kind() != KindUncaughtSignal {
		t.Fatalf("status = %v, want UncaughtSignal", st)
	}
}

func TestInterrupt_DuringSleep(t *testing.T) {
	p := New("/bin/sleep", []string{"5"})
	if err := p.Run(withTimeout(t), CaptureNull, CaptureNull, 0, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer p.Close()

	if err := p.Interrupt(); err != nil {
		t.Fatalf("Interrupt: %v", err)
	}

	st, err := p.WaitUntilExit(withTimeout(t))
	if err != nil {
		t.Fatalf("WaitUntilExit: %v", err)
	}
	if st.Kind() != KindUncaughtSignal {
		t.Fatalf("status = %v, want UncaughtSignal", st)
	}
}

func TestEcho_CapturedViaPipe(t *testing.T) {
	p := New("/bin/echo", []string{"hello", "world"})
	if err := p.Run(withTimeout(t), CapturePipe, CaptureNull, 0, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer p.Close()

	out, err := io.ReadAll(p.StdoutBytes())
	if err != nil {
		t.Fatalf("reading stdout: %v", err)
	}
	if strings.TrimSpace(string(out)) != "hello world" {
		t.Fatalf("stdout = %q, want %q", out, "hello world")
	}

	if _, err := p.WaitUntilExit(withTimeout(t)); err != nil {
		t.Fatalf("WaitUntilExit: %v", err)
	}
}

func TestCat_CapturedViaPty_NonCanonicalDisableEcho(t *testing.T) {
	p := New("/bin/cat", nil)
	if err := p.Run(withTimeout(t), CapturePty, CaptureNull, DisableEcho|NonCanonical, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer p.Close()
	defer p.Terminate()

	stream := p.StdoutBytes()
	if stream != p.PTYBytes() {
		t.Fatal("StdoutBytes should alias PTYBytes when stdout captured via CapturePty")
	}

	pty := p.PTYBytes()
	if _, err := p.Write([]byte("line\n")); err != nil {
		t.Fatalf("write to pty: %v", err)
	}

	reader := bufio.NewReader(pty)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read echoed line: %v", err)
	}
	if strings.TrimSpace(line) != "line" {
		t.Fatalf("echoed line = %q, want %q", line, "line")
	}
}

func TestEnv_ExclusiveMapping(t *testing.T) {
	p := New("/usr/bin/env", nil, WithEnv(map[string]string{"VORLON": "shadow", "SHADOW": "vorlon"}))
	if err := p.Run(withTimeout(t), CapturePipe, CaptureNull, 0, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer p.Close()

	out, err := io.ReadAll(p.StdoutBytes())
	if err != nil {
		t.Fatalf("reading stdout: %v", err)
	}

	got := map[string]bool{}
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		got[line] = true
	}
	if !got["VORLON=shadow"] || !got["SHADOW=vorlon"] {
		t.Fatalf("env output missing expected entries: %q", out)
	}
	if len(got) != 2 {
		t.Fatalf("env output = %v, want exactly the 2 provided entries", got)
	}

	if _, err := p.WaitUntilExit(withTimeout(t)); err != nil {
		t.Fatalf("WaitUntilExit: %v", err)
	}
}

func TestRun_Twice_Panics(t *testing.T) {
	p := New("/bin/sh", []string{"-c", "exit 0"})
	if err := p.Run(withTimeout(t), CaptureNull, CaptureNull, 0, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer p.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on second Run")
		}
	}()
	_ = p.Run(withTimeout(t), CaptureNull, CaptureNull, 0, nil)
}

func TestMissingExecutable_ReturnsPathError(t *testing.T) {
	p := New("/no/such/binary-xyz", nil)
	err := p.Run(withTimeout(t), CaptureNull, CaptureNull, 0, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var pathErr *PathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("err = %v, want *PathError", err)
	}
}

func TestOptions_BeforeRun_IsBadDescriptor(t *testing.T) {
	p := New("/bin/sleep", []string{"1"})
	_, err := p.Options()
	var bad *BadDescriptorError
	if !errors.As(err, &bad) {
		t.Fatalf("err = %v, want *BadDescriptorError", err)
	}
}

func TestSignal_BeforeRun_IsNoSuchProcess(t *testing.T) {
	p := New("/bin/sleep", []string{"1"})
	err := p.Terminate()
	var nsp *NoSuchProcessError
	if !errors.As(err, &nsp) {
		t.Fatalf("err = %v, want *NoSuchProcessError", err)
	}
}
