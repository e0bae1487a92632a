package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/tmux-wax/internal/errors"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Validate checks a config for values the SSH layer can't work with.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Username) == "" {
		return emptyField("username")
	}
	if cfg.Password == "" {
		return emptyField("password")
	}
	if strings.TrimSpace(cfg.Host) == "" {
		return emptyField("host")
	}
	if strings.ContainsAny(cfg.Host, " \t@/") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Host '%s' doesn't look like a hostname", cfg.Host),
			"Use a hostname, IP address, or ~/.ssh/config alias. Put the user in 'username'.")
	}
	if cfg.Port == 0 {
		return errors.New(errors.ErrConfig,
			"Port must be set",
			"Use a TCP port between 1 and 65535 (SSH is usually 22)")
	}

	if cfg.KnownHosts != "" {
		info, err := os.Stat(cfg.KnownHosts)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"known_hosts file not found: "+cfg.KnownHosts,
				"Fix the path, or remove known_hosts to skip host key checks")
		}
		if info.IsDir() {
			return errors.New(errors.ErrConfig,
				"known_hosts points at a directory: "+cfg.KnownHosts,
				"Point it at a file such as ~/.ssh/known_hosts")
		}
		if _, err := knownhosts.New(cfg.KnownHosts); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"known_hosts file can't be parsed: "+cfg.KnownHosts,
				"Fix the bad line, or remove known_hosts to skip host key checks")
		}
	}

	return nil
}

func emptyField(key string) error {
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("'%s' is empty", key),
		fmt.Sprintf("Set %s in the config file", key))
}
