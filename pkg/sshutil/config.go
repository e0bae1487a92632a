package sshutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// resolveHostname maps an alias from ~/.ssh/config to its HostName.
// Anything that isn't an alias (or a missing/unparseable config) is
// returned unchanged.
func resolveHostname(host string) string {
	return resolveHostnameFrom(filepath.Join(homeDir(), ".ssh", "config"), host)
}

func resolveHostnameFrom(configPath, host string) string {
	content, err := preprocessSSHConfig(configPath)
	if err != nil {
		return host
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return host
	}

	if hostname, _ := cfg.Get(host, "HostName"); hostname != "" {
		return hostname
	}
	return host
}

// preprocessSSHConfig reads the SSH config and returns content up to the
// first Match directive, which ssh_config can't parse.
func preprocessSSHConfig(configPath string) ([]byte, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(content), "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), "match ") {
			break
		}
		result = append(result, line)
	}

	return []byte(strings.Join(result, "\n")), nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}
