package termios

import (
	"testing"

	"github.com/creack/pty"
)

func openTestPTY(t *testing.T) int {
	t.Helper()
	primary, secondary, err := pty.Open()
	if err != nil {
		t.Fatalf("pty.Open: %v", err)
	}
	secondary.Close()
	t.Cleanup(func() { primary.Close() })
	return int(primary.Fd())
}

func TestRoundTrip_AllSubsets(t *testing.T) {
	all := []Options{DisableEcho, NonCanonical, OutputCRLF}

	for mask := 0; mask < 1<<len(all); mask++ {
		var want Options
		for i, flag := range all {
			if mask&(1<<i) != 0 {
				want |= flag
			}
		}

		fd := openTestPTY(t)

		if err := ApplyTo(fd, want, true, false); err != nil {
			t.Fatalf("ApplyTo(%v): %v", want, err)
		}

		got, err := FromFD(fd)
		if err != nil {
			t.Fatalf("FromFD: %v", err)
		}

		if got != want {
			t.Errorf("round trip mismatch: applied %03b, read back %03b", want, got)
		}
	}
}

func TestDefaultOptions_IsCookedMode(t *testing.T) {
	fd := openTestPTY(t)

	if err := ApplyTo(fd, Options(0), true, false); err != nil {
		t.Fatalf("ApplyTo: %v", err)
	}

	got, err := FromFD(fd)
	if err != nil {
		t.Fatalf("FromFD: %v", err)
	}

	if got != 0 {
		t.Errorf("default Options = %03b, want 0 (cooked: echo on, canonical on, ONLCR off)", got)
	}
}

func TestApplyTo_DrainFirst(t *testing.T) {
	fd := openTestPTY(t)

	if err := ApplyTo(fd, NonCanonical, false, true); err != nil {
		t.Fatalf("ApplyTo with drainFirst: %v", err)
	}

	got, err := FromFD(fd)
	if err != nil {
		t.Fatalf("FromFD: %v", err)
	}
	if !got.Has(NonCanonical) {
		t.Errorf("NonCanonical not applied via drain-first path")
	}
}
