package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rileyhilliard/tmux-wax/internal/errors"
	"github.com/spf13/viper"
)

// ConfigFileName is the config file name in the user's home directory.
const ConfigFileName = ".tmux-wax-env"

// RequiredKeys are the keys every config file must set.
var RequiredKeys = []string{"username", "password", "host", "port"}

// DefaultPath returns ~/.tmux-wax-env.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine home directory",
			"Check the HOME environment variable, or pass --config")
	}
	return filepath.Join(home, ConfigFileName), nil
}

// Load reads a TOML config from path. The file has no extension, so the
// format is set explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found: "+path,
				"Create it with username, password, host and port entries (TOML)")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file: "+path,
			"Check the file is readable and valid TOML, e.g. port = 22")
	}

	return parseConfig(v, path)
}

// parseConfig checks required keys and converts viper config to Config.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	for _, key := range RequiredKeys {
		if !v.IsSet(key) {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Missing '%s' in %s", key, path),
				"The config needs username, password, host and port")
		}
	}

	// Strict decoding does not reject floats for integer fields.
	switch port := v.Get("port").(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
	default:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Config has a value of the wrong type: port is a %T in %s", port, path),
			"Write the port as a bare integer, e.g. port = 22")
	}

	var raw fileConfig
	if err := v.Unmarshal(&raw, strictDecoding); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Config has a value of the wrong type: "+path,
			"username, password and host are strings; port is a number")
	}

	if raw.Port < 1 || raw.Port > math.MaxUint16 {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Port %d in %s is out of range", raw.Port, path),
			"Use a TCP port between 1 and 65535 (SSH is usually 22)")
	}

	cfg := &Config{
		Username:   raw.Username,
		Password:   raw.Password,
		Host:       raw.Host,
		Port:       uint16(raw.Port),
		KnownHosts: ExpandPath(raw.KnownHosts),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// strictDecoding turns off viper's default string/bool/number coercion.
func strictDecoding(c *mapstructure.DecoderConfig) {
	c.WeaklyTypedInput = false
}

// LoadDefault loads the config from explicit, or from ~/.tmux-wax-env
// when explicit is empty.
func LoadDefault(explicit string) (*Config, error) {
	path := explicit
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	} else {
		path = ExpandPath(path)
	}
	return Load(path)
}
