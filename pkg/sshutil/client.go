package sshutil

import (
	stderrors "errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/tmux-wax/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Target identifies a remote SSH endpoint and the password used to log in.
type Target struct {
	Host     string
	Port     uint16
	User     string
	Password string

	// KnownHosts is an optional known_hosts file. Empty accepts any host key.
	KnownHosts string
}

// Address returns the host:port string for dialing. Host may be an alias
// from ~/.ssh/config, in which case its HostName is used.
func (t Target) Address() string {
	return net.JoinHostPort(resolveHostname(t.Host), strconv.Itoa(int(t.Port)))
}

// String returns user@host:port for messages. The password is never included.
func (t Target) String() string {
	hostPort := net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
	if t.User == "" {
		return hostPort
	}
	return t.User + "@" + hostPort
}

// Client wraps an SSH connection with additional metadata.
type Client struct {
	*ssh.Client
	Host    string // The original host/alias used to connect
	Address string // The resolved address (host:port)
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// GetHost returns the original host/alias used to connect.
func (c *Client) GetHost() string {
	return c.Host
}

// GetAddress returns the resolved host:port address.
func (c *Client) GetAddress() string {
	return c.Address
}

// hostKeyWatch records whether the server presented a host key that passed
// verification. Once that happens the key exchange is complete, so any later
// failure belongs to authentication.
type hostKeyWatch struct {
	verify   ssh.HostKeyCallback
	accepted atomic.Bool
}

func (w *hostKeyWatch) callback(hostname string, remote net.Addr, key ssh.PublicKey) error {
	if err := w.verify(hostname, remote, key); err != nil {
		return err
	}
	w.accepted.Store(true)
	return nil
}

// dialTCP opens the transport connection and arms a deadline covering the
// SSH handshake. Callers clear it once the session is established.
func dialTCP(target Target, address string, timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Can't reach '%s' at %s", target.Host, address),
			suggestionForDialError(err))
	}
	if timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}
	return conn, nil
}

// Handshake checks that an SSH server answers at the target: it opens a TCP
// connection and completes the key exchange, including host key
// verification, without offering any credentials. The connection is closed
// before returning.
func Handshake(target Target, timeout time.Duration) error {
	address := target.Address()

	verify, err := hostKeyCallback(target.KnownHosts)
	if err != nil {
		return err
	}
	watch := &hostKeyWatch{verify: verify}

	conn, err := dialTCP(target, address, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	config := &ssh.ClientConfig{
		User:            target.User,
		HostKeyCallback: watch.callback,
		Timeout:         timeout,
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err == nil {
		// The server let us in without credentials. Still reachable.
		return ssh.NewClient(sshConn, chans, reqs).Close()
	}

	if watch.accepted.Load() {
		return nil
	}

	var hostKeyErr *HostKeyMismatchError
	if stderrors.As(err, &hostKeyErr) {
		return errors.WrapWithCode(err, errors.ErrTransport,
			hostKeyErr.Error(),
			hostKeyErr.Suggestion())
	}

	return errors.WrapWithCode(err, errors.ErrTransport,
		fmt.Sprintf("SSH handshake with '%s' didn't go through", target.Host),
		suggestionForHandshakeError(err))
}

// Dial establishes an authenticated SSH connection using password
// authentication. Servers that only offer keyboard-interactive get the same
// password for every prompt.
//
// Failures before the host key is accepted are ErrTransport. A rejected
// login is ErrAuth. A connection dropped mid-authentication is ErrTransport.
func Dial(target Target, timeout time.Duration) (*Client, error) {
	address := target.Address()

	verify, err := hostKeyCallback(target.KnownHosts)
	if err != nil {
		return nil, err
	}
	watch := &hostKeyWatch{verify: verify}

	conn, err := dialTCP(target, address, timeout)
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            target.User,
		Auth:            passwordAuth(target.Password),
		HostKeyCallback: watch.callback,
		Timeout:         timeout,
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()

		var hostKeyErr *HostKeyMismatchError
		if stderrors.As(err, &hostKeyErr) {
			return nil, errors.WrapWithCode(err, errors.ErrTransport,
				hostKeyErr.Error(),
				hostKeyErr.Suggestion())
		}

		if !watch.accepted.Load() {
			return nil, errors.WrapWithCode(err, errors.ErrTransport,
				fmt.Sprintf("SSH handshake with '%s' didn't go through", target.Host),
				suggestionForHandshakeError(err))
		}

		if isAuthRejection(err) {
			return nil, errors.WrapWithCode(err, errors.ErrAuth,
				fmt.Sprintf("Authentication as '%s' on '%s' was rejected", target.User, target.Host),
				"Check username and password in the config file. Password (or keyboard-interactive) login must be enabled in sshd.")
		}

		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Connection to '%s' dropped during authentication", target.Host),
			"The server closed the session before login finished. Check sshd logs on the host.")
	}

	_ = conn.SetDeadline(time.Time{})

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    target.Host,
		Address: address,
	}, nil
}

// passwordAuth offers the password directly and through keyboard-interactive.
func passwordAuth(password string) []ssh.AuthMethod {
	return []ssh.AuthMethod{
		ssh.Password(password),
		ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
			answers := make([]string, len(questions))
			for i := range answers {
				answers[i] = password
			}
			return answers, nil
		}),
	}
}

func isAuthRejection(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "unable to authenticate") ||
		strings.Contains(errStr, "no supported methods")
}

func suggestionForDialError(err error) string {
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") {
		return "Is SSH running on that box? Check the port in the config file."
	}
	if strings.Contains(errStr, "no route to host") || strings.Contains(errStr, "network is unreachable") {
		return "Can't route to the host. Check your network connection."
	}
	if strings.Contains(errStr, "timeout") {
		return "Connection timed out. Host might be offline or blocked by a firewall."
	}
	if strings.Contains(errStr, "no such host") {
		return "The hostname didn't resolve. Check the host in the config file."
	}
	return "Make sure the host is reachable: ping <host>"
}

func suggestionForHandshakeError(err error) string {
	errStr := err.Error()
	if strings.Contains(errStr, "host key") || strings.Contains(errStr, "knownhosts") {
		return "Host key issue. Try connecting manually first: ssh <host>"
	}
	if strings.Contains(errStr, "timeout") {
		return "The port accepted the connection but never spoke SSH. Is this the right port?"
	}
	if strings.Contains(errStr, "EOF") || strings.Contains(errStr, "reset by peer") {
		return "The server hung up during the handshake. Check sshd is healthy on the host."
	}
	return "Something went wrong during SSH setup. Try: ssh <host>"
}
