package docker

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/rileyhilliard/tmux-wax/internal/errors"
	"github.com/rileyhilliard/tmux-wax/internal/logger"
	"github.com/rileyhilliard/tmux-wax/pkg/sshutil"
	sshtest "github.com/rileyhilliard/tmux-wax/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect_Mock(t *testing.T) {
	client := sshtest.NewMockClient("box")
	client.SetCommandResponse(ListCommand, sshtest.CommandResponse{
		Stdout: []byte("running\nexited\nrestarting\nrunning\n"),
	})

	tally, err := Collect(client, logger.Noop())
	require.NoError(t, err)
	assert.Equal(t, Tally{Total: 4, Up: 2, Down: 1, Failed: 1}, tally)
	assert.Equal(t, []string{ListCommand}, client.Executed())
}

func TestCollect_NonZeroExitStillCounts(t *testing.T) {
	client := sshtest.NewMockClient("box")
	client.SetCommandResponse(ListCommand, sshtest.CommandResponse{
		Stdout:   []byte("running\n"),
		Stderr:   []byte("WARNING: something odd\n"),
		ExitCode: 1,
	})
	log := logger.NewBufferLogger()

	tally, err := Collect(client, log)
	require.NoError(t, err)
	assert.Equal(t, Tally{Total: 1, Up: 1}, tally)
	require.True(t, log.HasLevel("warn"))
	assert.Contains(t, log.Messages[0].Message, "status 1")
	assert.Contains(t, log.Messages[0].Message, "something odd")
}

func TestCollect_DockerMissing(t *testing.T) {
	client := sshtest.NewMockClient("box")
	log := logger.NewBufferLogger()

	tally, err := Collect(client, log)
	require.NoError(t, err)
	assert.Equal(t, Tally{}, tally)
	assert.True(t, log.HasLevel("warn"))
}

func TestCollect_ExecError(t *testing.T) {
	client := sshtest.NewMockClient("box")
	execErr := errors.New(errors.ErrExec, "Couldn't open a session channel on 'box'", "")
	client.SetCommandResponse(ListCommand, sshtest.CommandResponse{ExitCode: -1, Error: execErr})

	_, err := Collect(client, logger.Noop())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
}

func TestCollector_ClosesConnection(t *testing.T) {
	client := sshtest.NewMockClient("box")
	client.SetCommandResponse(ListCommand, sshtest.CommandResponse{Stdout: []byte("exited\n")})

	var gotTimeout time.Duration
	c := &Collector{
		Log: logger.Noop(),
		dial: func(target sshutil.Target, timeout time.Duration) (sshutil.SSHClient, error) {
			gotTimeout = timeout
			return client, nil
		},
	}

	tally, err := c.Collect(sshutil.Target{Host: "box", Port: 22})
	require.NoError(t, err)
	assert.Equal(t, Tally{Total: 1, Down: 1}, tally)
	assert.True(t, client.Closed())
	assert.Equal(t, DefaultDialTimeout, gotTimeout)
}

func TestCollector_ClosesConnectionOnError(t *testing.T) {
	client := sshtest.NewMockClient("box")
	client.SetCommandResponse(ListCommand, sshtest.CommandResponse{ExitCode: -1, Error: stderrors.New("channel refused")})

	c := &Collector{
		Timeout: time.Second,
		dial: func(target sshutil.Target, timeout time.Duration) (sshutil.SSHClient, error) {
			return client, nil
		},
	}

	_, err := c.Collect(sshutil.Target{Host: "box", Port: 22})
	require.Error(t, err)
	assert.True(t, client.Closed())
}

func TestCollector_DialError(t *testing.T) {
	authErr := errors.New(errors.ErrAuth, "Authentication as 'wax' on 'box' was rejected", "")
	c := &Collector{
		dial: func(target sshutil.Target, timeout time.Duration) (sshutil.SSHClient, error) {
			return nil, authErr
		},
	}

	_, err := c.Collect(sshutil.Target{Host: "box", Port: 22})
	assert.Same(t, authErr, err)
}

func TestCollector_SSHServer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := sshtest.NewServer(t, "testuser", "testpass")
	srv.SetResponse(ListCommand, sshtest.CommandResponse{
		Stdout: []byte("running\nrunning\nrunning\nrunning\nrunning\nexited\nexited\nexited\ncreated\npaused\n"),
	})

	c := NewCollector(logger.Noop())
	tally, err := c.Collect(srv.Target("testpass"))
	require.NoError(t, err)

	assert.Equal(t, Tally{Total: 10, Up: 5, Down: 3, Failed: 2}, tally)
	assert.Equal(t, []string{ListCommand}, srv.Executed())
	assert.Eventually(t, func() bool { return srv.OpenConns() == 0 },
		2*time.Second, 10*time.Millisecond, "collector left a connection open")
}

func TestCollector_SSHServerWrongPassword(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := sshtest.NewServer(t, "testuser", "testpass")

	c := NewCollector(logger.Noop())
	_, err := c.Collect(srv.Target("nope"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
	assert.Empty(t, srv.Executed())
}

func TestCollector_SSHServerGone(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := sshtest.NewServer(t, "testuser", "testpass")
	target := srv.Target("testpass")
	srv.Close()

	c := &Collector{Timeout: 2 * time.Second, Log: logger.Noop()}
	_, err := c.Collect(target)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTransport))
}
