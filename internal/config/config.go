// Package config loads the livetiles TOML configuration file.
//
//	[layout]
//	direction = "horizontal"
//	height = 6
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "720h"
//
//	[server]
//	addr = ":8080"
//	document = "default"
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/store"
)

// Config is the configuration file.
type Config struct {
	Layout layout.Config `toml:"layout"`
	Store  store.Config  `toml:"store"`
	Server Server        `toml:"server"`
}

// Server configures `livetiles serve`.
type Server struct {
	Addr string `toml:"addr"`
	// Document is the stored layout the service loads at start and saves
	// after every change.
	Document        string        `toml:"document"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Default values.
const (
	DefaultAddr            = ":8080"
	DefaultDocument        = "default"
	DefaultShutdownTimeout = 10 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Store:  store.Config{Backend: store.BackendFile},
		Server: Server{Addr: DefaultAddr, Document: DefaultDocument, ShutdownTimeout: DefaultShutdownTimeout},
	}
}

// DefaultPath returns ~/.config/livetiles/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "livetiles", "config.toml"), nil
}

// Load reads a configuration file over the defaults. With an empty path
// the default location is tried and a missing file yields [Default].
// Unknown keys are rejected so typos do not go unnoticed.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return Config{}, errors.New(errors.ErrCodeFileNotFound, "config file %s does not exist", path)
		}
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Layout.SetDefaults()
	if c.Store.Backend == "" {
		c.Store.Backend = store.BackendFile
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Document == "" {
		c.Server.Document = DefaultDocument
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := errors.ValidateDocumentName(c.Server.Document); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "server.document")
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.shutdown_timeout must not be negative")
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
