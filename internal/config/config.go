// Package config loads the YAML configuration of the ntfysub daemon.
package config

import (
	"fmt"
	"os"

	"github.com/arloliu/ntfysub"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Log           LogConfig          `yaml:"log"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	NATS          NATSConfig         `yaml:"nats"`
	Credentials   []CredentialConfig `yaml:"credentials"`
	Subscriptions []ntfysub.Config   `yaml:"subscriptions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text", "json"
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Address   string `yaml:"address"`   // ":9090"
	Namespace string `yaml:"namespace"` // "ntfysub"
}

// NATSConfig configures the optional NATS-backed credential store.
// Credentials are read from the KV bucket when URL is set.
type NATSConfig struct {
	URL               string `yaml:"url"`               // "nats://localhost:4222"
	CredentialsBucket string `yaml:"credentialsBucket"` // "ntfysub-credentials"
}

// CredentialConfig is one static credential entry.
type CredentialConfig struct {
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoadConfig loads configuration from a YAML file.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Error if file cannot be read, parsed or validated
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses, defaults and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Normalize applies defaults and validates the configuration.
// Configurations built in code (for example from CLI flags) go through the same path as files.
func (c *Config) Normalize() error {
	applyDefaults(c)

	if err := validateConfig(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}
