// Package config handles configuration for the server: defaults, an
// optional JSON file, environment variables and command-line flags, applied
// in that order.
package config

import (
	"fmt"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/common"
)

// Config holds runtime settings for the Cocoinbox server.
//
// SecretKey and DatabaseDSN have no defaults; Validate rejects a Config
// in which either is empty.
type Config struct {
	EndpointAddrGRPC string        `env:"COCOINBOX_GRPC_ADDR"`
	EndpointAddrHTTP string        `env:"COCOINBOX_HTTP_ADDR"`
	DatabaseDSN      string        `env:"DATABASE_DSN"`
	SecretKey        string        `env:"JWT_SECRET"`
	S3RootUser       string        `env:"S3_ROOT_USER"`
	S3RootPassword   string        `env:"S3_ROOT_PASSWORD"`
	S3Bucket         string        `env:"S3_BUCKET"`
	S3Region         string        `env:"S3_REGION"`
	S3BaseEndpoint   string        `env:"S3_BASE_ENDPOINT"`
	MailProviderURL  string        `env:"MAIL_PROVIDER_URL"`
	RedisAddr        string        `env:"REDIS_ADDR"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL"`
	OTLPEndpoint     string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel         string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates everything except the secret and the DSN.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.S3Bucket = "secure-files"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.MailProviderURL = "https://api.mail.tm"
	c.SweepInterval = 10 * time.Minute
	c.LogLevel = "info"
}

// Validate reports missing settings the server cannot start without.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("%w: signing secret is not set", common.ErrorConfiguration)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("%w: database DSN is not set", common.ErrorConfiguration)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("%w: sweep interval must be positive", common.ErrorConfiguration)
	}
	return nil
}

// LoadConfig applies defaults, then the JSON file, then the environment,
// then flags. It panics on unreadable input, like a malformed JSON file.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		panic(err)
	}
	parseFlags(cfg)
	return cfg
}
