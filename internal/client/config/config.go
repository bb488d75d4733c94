// Package config holds the command-line client settings: defaults, an
// optional JSON file and environment variables, applied in that order.
// Command-line flags are applied on top by the cli package.
package config

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	ServerEndpointAddr string        `env:"COCOINBOX_SERVER"`
	HomeDir            string        `env:"COCOINBOX_HOME"`
	RequestTimeout     time.Duration `env:"COCOINBOX_TIMEOUT"`
}

// LoadDefaults points the client at a local server and keeps its state in
// ~/.cocoinbox.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	if home, err := os.UserHomeDir(); err == nil {
		c.HomeDir = filepath.Join(home, ".cocoinbox")
	}
}

// LoadConfig applies defaults, then the JSON file at path (skipped when
// path is empty), then the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
