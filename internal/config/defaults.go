package config

import (
	"github.com/arloliu/ntfysub"
	"github.com/arloliu/ntfysub/credentials"
)

// applyDefaults applies default values to configuration fields that are not set.
func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9090"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "ntfysub"
	}

	if cfg.NATS.CredentialsBucket == "" {
		cfg.NATS.CredentialsBucket = credentials.DefaultBucket
	}

	for i := range cfg.Subscriptions {
		ntfysub.SetDefaults(&cfg.Subscriptions[i])
	}
}
