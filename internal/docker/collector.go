package docker

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/tmux-wax/internal/errors"
	"github.com/rileyhilliard/tmux-wax/internal/logger"
	"github.com/rileyhilliard/tmux-wax/pkg/sshutil"
)

// ListCommand lists every container, running or not, printing one bare
// state word per line.
const ListCommand = "docker ps -a --format '{{.State}}'"

// DefaultDialTimeout bounds the TCP connect, handshake and login.
const DefaultDialTimeout = 10 * time.Second

// Collect runs ListCommand over an open connection and reduces its output.
// A non-zero exit is logged and the captured stdout is still counted.
func Collect(client sshutil.SSHClient, log logger.Logger) (Tally, error) {
	log = logger.OrDefault(log)

	stdout, stderr, exitCode, err := client.Exec(ListCommand)
	if err != nil {
		return Tally{}, err
	}
	if exitCode != 0 {
		log.Warn("%s on %s exited with status %d: %s",
			ListCommand, client.GetHost(), exitCode, strings.TrimSpace(string(stderr)))
	}

	tally := Reduce(stdout)
	if err := tally.Validate(); err != nil {
		return Tally{}, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Container counts from '%s' don't add up", client.GetHost()),
			"This is a bug in tmux-wax. Please report it with the output of: "+ListCommand)
	}

	log.Debug("%s: %d containers (%d up, %d down, %d failed)",
		client.GetHost(), tally.Total, tally.Up, tally.Down, tally.Failed)
	return tally, nil
}

// Collector opens a fresh authenticated connection per call and collects
// the container tally from it.
type Collector struct {
	Timeout time.Duration
	Log     logger.Logger

	// dial is replaced in tests.
	dial func(target sshutil.Target, timeout time.Duration) (sshutil.SSHClient, error)
}

// NewCollector returns a Collector with the default dial timeout.
func NewCollector(log logger.Logger) *Collector {
	return &Collector{
		Timeout: DefaultDialTimeout,
		Log:     log,
	}
}

// Collect dials target with its password, runs the listing, and closes the
// connection on every path. Login failures surface as ErrAuth, connection
// problems as ErrTransport, and exec problems as ErrExec.
func (c *Collector) Collect(target sshutil.Target) (Tally, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	dial := c.dial
	if dial == nil {
		dial = dialSSH
	}

	client, err := dial(target, timeout)
	if err != nil {
		return Tally{}, err
	}
	defer client.Close()

	return Collect(client, c.Log)
}

func dialSSH(target sshutil.Target, timeout time.Duration) (sshutil.SSHClient, error) {
	client, err := sshutil.Dial(target, timeout)
	if err != nil {
		return nil, err
	}
	return client, nil
}
