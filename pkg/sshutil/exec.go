package sshutil

import (
	"bytes"
	stderrors "errors"
	"fmt"

	"github.com/rileyhilliard/tmux-wax/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Exec runs a command on the remote host and returns its complete output.
// Returns stdout, stderr, exit code, and any error.
//
// A non-zero exit is reported through exitCode with a nil error. Exit code
// is -1 if the command couldn't run, or if the server closed the channel
// without reporting a status.
func (c *Client) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Couldn't open a session channel on '%s'", c.Host),
			"The server may limit sessions per connection (MaxSessions in sshd_config).")
	}
	defer session.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	if err := session.Start(cmd); err != nil {
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Failed to execute command: %s", cmd),
			"The server refused the exec request. Check that your user has a login shell.")
	}

	exitCode = 0
	if err := session.Wait(); err != nil {
		var exitErr *ssh.ExitError
		var missingErr *ssh.ExitMissingError
		switch {
		case stderrors.As(err, &exitErr):
			exitCode = exitErr.ExitStatus()
		case stderrors.As(err, &missingErr):
			exitCode = -1
		default:
			return nil, nil, -1, errors.WrapWithCode(err, errors.ErrExec,
				fmt.Sprintf("Lost the connection while reading output of: %s", cmd),
				"The host may have dropped the session. Try again.")
		}
	}

	return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitCode, nil
}
