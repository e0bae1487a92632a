package host

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/tmux-wax/internal/logger"
	"github.com/rileyhilliard/tmux-wax/pkg/sshutil"
)

// DefaultProbeTimeout bounds the TCP connect and the SSH handshake.
const DefaultProbeTimeout = 5 * time.Second

// ProbeError represents a failed probe with categorized failure reason.
type ProbeError struct {
	Target string
	Reason ProbeFailReason
	Cause  error
}

// ProbeFailReason categorizes why a probe failed.
type ProbeFailReason int

const (
	ProbeFailUnknown ProbeFailReason = iota
	ProbeFailTimeout
	ProbeFailRefused
	ProbeFailUnreachable
	ProbeFailResolve
	ProbeFailHandshake
	ProbeFailHostKey
)

// String returns a human-readable description of the failure reason.
func (r ProbeFailReason) String() string {
	switch r {
	case ProbeFailTimeout:
		return "connection timed out"
	case ProbeFailRefused:
		return "connection refused"
	case ProbeFailUnreachable:
		return "host unreachable"
	case ProbeFailResolve:
		return "hostname did not resolve"
	case ProbeFailHandshake:
		return "SSH handshake failed"
	case ProbeFailHostKey:
		return "host key verification failed"
	default:
		return "unknown error"
	}
}

func (e *ProbeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("probe %s failed: %s (%v)", e.Target, e.Reason, e.Cause)
	}
	return fmt.Sprintf("probe %s failed: %s", e.Target, e.Reason)
}

func (e *ProbeError) Unwrap() error {
	return e.Cause
}

// Probe checks that an SSH server answers at target and returns the time
// the TCP connect and handshake took. It never authenticates or runs
// anything, and closes the connection before returning.
func Probe(target sshutil.Target, timeout time.Duration) (time.Duration, error) {
	start := time.Now()

	if err := sshutil.Handshake(target, timeout); err != nil {
		return 0, categorizeProbeError(target.String(), err)
	}

	return time.Since(start), nil
}

// Prober answers "is the host up" for the status pipeline.
type Prober struct {
	Timeout time.Duration
	Log     logger.Logger
}

// NewProber returns a Prober with the default timeout.
func NewProber(log logger.Logger) *Prober {
	return &Prober{
		Timeout: DefaultProbeTimeout,
		Log:     log,
	}
}

// Reachable reports whether target completed an SSH handshake. Every
// failure maps to false; the reason is only logged at debug level.
func (p *Prober) Reachable(target sshutil.Target) bool {
	log := logger.OrDefault(p.Log)

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	latency, err := Probe(target, timeout)
	if err != nil {
		log.Debug("%v", err)
		return false
	}

	log.Debug("probe %s ok in %s", target, latency.Round(time.Millisecond))
	return true
}

// categorizeProbeError converts a generic error into a ProbeError with
// a categorized failure reason.
func categorizeProbeError(target string, err error) *ProbeError {
	if err == nil {
		return nil
	}

	probeErr := &ProbeError{
		Target: target,
		Reason: ProbeFailUnknown,
		Cause:  err,
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "host key"):
		probeErr.Reason = ProbeFailHostKey
	case strings.Contains(errStr, "timeout"):
		probeErr.Reason = ProbeFailTimeout
	case strings.Contains(errStr, "connection refused"):
		probeErr.Reason = ProbeFailRefused
	case strings.Contains(errStr, "no route to host"),
		strings.Contains(errStr, "network is unreachable"),
		strings.Contains(errStr, "host is down"):
		probeErr.Reason = ProbeFailUnreachable
	case strings.Contains(errStr, "no such host"):
		probeErr.Reason = ProbeFailResolve
	case strings.Contains(errStr, "handshake"):
		probeErr.Reason = ProbeFailHandshake
	}

	return probeErr
}
