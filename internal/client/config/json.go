package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cocoinbox/cocoinbox/internal/timex"
)

// JsonConfig mirrors Config for decoding; timex.Duration accepts "10s" or
// integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	HomeDir            string          `json:"home_dir"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
}

// parseJson overlays only the fields present in the file.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.HomeDir != "" {
		cfg.HomeDir = jc.HomeDir
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
