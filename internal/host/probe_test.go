package host

import (
	"errors"
	"testing"
	"time"

	"github.com/rileyhilliard/tmux-wax/internal/logger"
	"github.com/rileyhilliard/tmux-wax/pkg/sshutil"
	sshtest "github.com/rileyhilliard/tmux-wax/pkg/sshutil/testing"
)

func TestCategorizeProbeError(t *testing.T) {
	tests := []struct {
		msg  string
		want ProbeFailReason
	}{
		{"i/o timeout", ProbeFailTimeout},
		{"dial tcp 10.0.0.1:22: connect: connection timeout", ProbeFailTimeout},
		{"dial tcp 127.0.0.1:22: connect: connection refused", ProbeFailRefused},
		{"no route to host", ProbeFailUnreachable},
		{"network is unreachable", ProbeFailUnreachable},
		{"host is down", ProbeFailUnreachable},
		{"dial tcp: lookup nas.invalid: no such host", ProbeFailResolve},
		{"ssh: handshake failed: EOF", ProbeFailHandshake},
		{"host key mismatch for box:22: server sent ssh-ed25519 key", ProbeFailHostKey},
		{"something else entirely", ProbeFailUnknown},
	}

	for _, tt := range tests {
		err := categorizeProbeError("wax@box:22", errors.New(tt.msg))
		if err == nil {
			t.Fatalf("categorizeProbeError(%q) returned nil", tt.msg)
		}
		if err.Reason != tt.want {
			t.Errorf("categorizeProbeError(%q).Reason = %v, want %v", tt.msg, err.Reason, tt.want)
		}
	}
}

func TestCategorizeProbeError_Nil(t *testing.T) {
	if err := categorizeProbeError("box", nil); err != nil {
		t.Errorf("categorizeProbeError(nil) = %v, want nil", err)
	}
}

func TestProbeError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ProbeError{Target: "wax@box:22", Reason: ProbeFailRefused, Cause: cause}

	want := "probe wax@box:22 failed: connection refused (connection refused)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("ProbeError should unwrap to its cause")
	}

	bare := &ProbeError{Target: "box", Reason: ProbeFailTimeout}
	if bare.Error() != "probe box failed: connection timed out" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestProbeFailReasonString(t *testing.T) {
	reasons := []ProbeFailReason{
		ProbeFailUnknown, ProbeFailTimeout, ProbeFailRefused, ProbeFailUnreachable,
		ProbeFailResolve, ProbeFailHandshake, ProbeFailHostKey,
	}
	seen := map[string]bool{}
	for _, r := range reasons {
		s := r.String()
		if s == "" {
			t.Errorf("reason %d has empty description", r)
		}
		if seen[s] {
			t.Errorf("duplicate description %q", s)
		}
		seen[s] = true
	}
}

func TestProbe_HandshakingServer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := sshtest.NewServer(t, "testuser", "testpass")

	latency, err := Probe(srv.Target("testpass"), 5*time.Second)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if latency <= 0 {
		t.Errorf("latency = %v, want > 0", latency)
	}
	if n := srv.PasswordAttempts(); n != 0 {
		t.Errorf("probe sent %d password attempts, want 0", n)
	}
	if cmds := srv.Executed(); len(cmds) != 0 {
		t.Errorf("probe executed %v, want nothing", cmds)
	}
}

func TestProbe_SilentEndpoint(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ln := sshtest.NewSilentListener(t)

	_, err := Probe(sshutil.Target{Host: "127.0.0.1", Port: ln.Port()}, 300*time.Millisecond)
	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("Probe() error = %v, want *ProbeError", err)
	}
	if probeErr.Reason != ProbeFailTimeout {
		t.Errorf("Reason = %v, want %v", probeErr.Reason, ProbeFailTimeout)
	}
}

func TestProber_Reachable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := sshtest.NewServer(t, "testuser", "testpass")
	log := logger.NewBufferLogger()

	p := NewProber(log)
	if !p.Reachable(srv.Target("testpass")) {
		t.Fatal("Reachable() = false for a handshaking server")
	}
	if srv.Logins() != 0 {
		t.Errorf("probe logged in %d times, want 0", srv.Logins())
	}
}

func TestProber_Unreachable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	silent := sshtest.NewSilentListener(t)
	garbage := sshtest.NewGarbageListener(t)
	closed := sshtest.NewServer(t, "testuser", "testpass")
	closedTarget := closed.Target("testpass")
	closed.Close()

	tests := []struct {
		name   string
		target sshutil.Target
	}{
		{"accepts TCP but never handshakes", sshutil.Target{Host: "127.0.0.1", Port: silent.Port()}},
		{"speaks something other than SSH", sshutil.Target{Host: "127.0.0.1", Port: garbage.Port()}},
		{"nothing listening", closedTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.NewBufferLogger()
			p := &Prober{Timeout: 300 * time.Millisecond, Log: log}

			if p.Reachable(tt.target) {
				t.Fatal("Reachable() = true, want false")
			}
			if !log.HasLevel("debug") {
				t.Error("expected the failure reason to be logged at debug level")
			}
		})
	}
}

func TestProber_DefaultTimeout(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := sshtest.NewServer(t, "testuser", "testpass")

	p := &Prober{}
	if !p.Reachable(srv.Target("")) {
		t.Fatal("Reachable() = false with zero-value Prober")
	}
}
