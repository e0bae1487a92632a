package config

import "github.com/rileyhilliard/tmux-wax/pkg/sshutil"

// Config is the connection setup read from ~/.tmux-wax-env.
//
//	username = "wax"
//	password = "secret"
//	host = "192.168.1.20"
//	port = 22
//	known_hosts = "~/.ssh/known_hosts"  # optional
type Config struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     uint16 `mapstructure:"port"`

	// KnownHosts enables host key verification against this file.
	// Empty means any host key is accepted.
	KnownHosts string `mapstructure:"known_hosts"`
}

// Target returns the SSH target described by the config.
func (c *Config) Target() sshutil.Target {
	return sshutil.Target{
		Host:       c.Host,
		Port:       c.Port,
		User:       c.Username,
		Password:   c.Password,
		KnownHosts: c.KnownHosts,
	}
}

// fileConfig mirrors the file before range checks. Port is wider than
// uint16 so out-of-range values are reported instead of wrapped.
type fileConfig struct {
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	Host       string `mapstructure:"host"`
	Port       int64  `mapstructure:"port"`
	KnownHosts string `mapstructure:"known_hosts"`
}
