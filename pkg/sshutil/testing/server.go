package testing

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/rileyhilliard/tmux-wax/pkg/sshutil"
	"golang.org/x/crypto/ssh"
)

// Server is an in-process SSH server listening on 127.0.0.1. It accepts
// password (or keyboard-interactive) logins for one user and answers exec
// requests with canned responses.
type Server struct {
	user     string
	password string

	listener  net.Listener
	config    *ssh.ServerConfig
	publicKey ssh.PublicKey

	mu               sync.Mutex
	responses        map[string]CommandResponse
	executed         []string
	passwordAttempts int
	logins           int
	conns            map[net.Conn]struct{}

	wg sync.WaitGroup
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// KeyboardInteractiveOnly disables the "password" method so clients must
// answer a keyboard-interactive prompt instead.
func KeyboardInteractiveOnly() ServerOption {
	return func(s *Server) {
		s.config.PasswordCallback = nil
		s.config.KeyboardInteractiveCallback = func(conn ssh.ConnMetadata, client ssh.KeyboardInteractiveChallenge) (*ssh.Permissions, error) {
			answers, err := client(conn.User(), "", []string{"Password: "}, []bool{false})
			if err != nil {
				return nil, err
			}
			return s.checkPassword(conn, []byte(answers[0]))
		}
	}
}

// NewServer starts a server and registers its shutdown with t.Cleanup.
func NewServer(t testing.TB, user, password string, opts ...ServerOption) *Server {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("host key signer: %v", err)
	}

	s := &Server{
		user:      user,
		password:  password,
		publicKey: signer.PublicKey(),
		responses: make(map[string]CommandResponse),
		conns:     make(map[net.Conn]struct{}),
	}
	s.config = &ssh.ServerConfig{
		PasswordCallback: s.checkPassword,
	}
	s.config.AddHostKey(signer)

	for _, opt := range opts {
		opt(s)
	}

	s.listener, err = net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s.wg.Add(1)
	go s.serve()

	t.Cleanup(s.Close)
	return s
}

// Port returns the listening port.
func (s *Server) Port() uint16 {
	return uint16(s.listener.Addr().(*net.TCPAddr).Port)
}

// PublicKey returns the server's host key.
func (s *Server) PublicKey() ssh.PublicKey {
	return s.publicKey
}

// Target returns a target pointing at this server with the given password.
func (s *Server) Target(password string) sshutil.Target {
	return sshutil.Target{
		Host:     "127.0.0.1",
		Port:     s.Port(),
		User:     s.user,
		Password: password,
	}
}

// SetResponse registers the reply for an exact exec command.
func (s *Server) SetResponse(cmd string, resp CommandResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[cmd] = resp
}

// Executed returns the exec commands received so far.
func (s *Server) Executed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.executed...)
}

// PasswordAttempts returns how many times a password was checked.
func (s *Server) PasswordAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passwordAttempts
}

// Logins returns the number of successfully authenticated connections.
func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// OpenConns returns the number of TCP connections still open server-side.
func (s *Server) OpenConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close stops the listener, drops open connections, and waits for handlers.
func (s *Server) Close() {
	s.listener.Close()

	s.mu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Server) checkPassword(conn ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
	s.mu.Lock()
	s.passwordAttempts++
	s.mu.Unlock()

	if conn.User() == s.user && string(password) == s.password {
		return nil, nil
	}
	return nil, fmt.Errorf("password rejected for %q", conn.User())
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				s.mu.Lock()
				delete(s.conns, conn)
				s.mu.Unlock()
				conn.Close()
			}()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	sconn, chans, reqs, err := ssh.NewServerConn(conn, s.config)
	if err != nil {
		return
	}
	defer sconn.Close()

	s.mu.Lock()
	s.logins++
	s.mu.Unlock()

	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			continue
		}
		s.handleSession(ch, requests)
	}
}

func (s *Server) handleSession(ch ssh.Channel, requests <-chan *ssh.Request) {
	defer ch.Close()

	for req := range requests {
		if req.Type != "exec" {
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
			continue
		}

		var payload struct{ Command string }
		if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
			_ = req.Reply(false, nil)
			return
		}

		s.mu.Lock()
		s.executed = append(s.executed, payload.Command)
		resp, ok := s.responses[payload.Command]
		s.mu.Unlock()
		if !ok {
			resp = CommandResponse{
				Stderr:   []byte("sh: 1: " + payload.Command + ": not found\n"),
				ExitCode: 127,
			}
		}

		_ = req.Reply(true, nil)
		_, _ = ch.Write(resp.Stdout)
		_, _ = ch.Stderr().Write(resp.Stderr)
		_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{uint32(resp.ExitCode)}))
		return
	}
}

// Listener is a bare TCP listener that never speaks SSH.
type Listener struct {
	listener net.Listener
	mu       sync.Mutex
	conns    []net.Conn
	wg       sync.WaitGroup
}

// NewSilentListener accepts connections and holds them open without ever
// sending a byte, like a service that is up but stuck.
func NewSilentListener(t testing.TB) *Listener {
	return newListener(t, nil)
}

// NewGarbageListener answers every connection with an HTTP error and hangs up.
func NewGarbageListener(t testing.TB) *Listener {
	return newListener(t, []byte("HTTP/1.1 400 Bad Request\r\nConnection: close\r\n\r\n"))
}

func newListener(t testing.TB, reply []byte) *Listener {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	l := &Listener{listener: ln}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			if reply != nil {
				_, _ = conn.Write(reply)
				conn.Close()
				continue
			}
			l.mu.Lock()
			l.conns = append(l.conns, conn)
			l.mu.Unlock()
		}
	}()

	t.Cleanup(l.Close)
	return l
}

// Port returns the listening port.
func (l *Listener) Port() uint16 {
	return uint16(l.listener.Addr().(*net.TCPAddr).Port)
}

// Close stops accepting and drops held connections.
func (l *Listener) Close() {
	l.listener.Close()
	l.wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.conns {
		c.Close()
	}
	l.conns = nil
}
