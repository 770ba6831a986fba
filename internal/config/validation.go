package config

import (
	"errors"
	"fmt"

	"github.com/arloliu/ntfysub/internal/logging"
	"github.com/arloliu/ntfysub/subscription"
)

// validateConfig validates the configuration for logical consistency.
func validateConfig(cfg *Config) error {
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[cfg.Log.Format] {
		return fmt.Errorf("invalid log format: %s (must be one of: text, json)", cfg.Log.Format)
	}

	for i, c := range cfg.Credentials {
		if _, err := subscription.ParseEndpoint(c.Endpoint); err != nil {
			return fmt.Errorf("credentials[%d]: %w", i, err)
		}
		if c.Username == "" {
			return fmt.Errorf("credentials[%d]: username is required", i)
		}
	}

	if len(cfg.Subscriptions) == 0 {
		return errors.New("at least one subscription is required")
	}

	seen := make(map[string]int, len(cfg.Subscriptions))
	for i := range cfg.Subscriptions {
		sub := &cfg.Subscriptions[i]
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("subscriptions[%d]: %w", i, err)
		}
		if _, err := subscription.BuildURL(sub.Endpoint, sub.Topic, sub.Since); err != nil {
			return fmt.Errorf("subscriptions[%d]: %w", i, err)
		}

		id := subscription.ID(sub.Endpoint, sub.Topic)
		if j, dup := seen[id]; dup {
			return fmt.Errorf("subscriptions[%d]: duplicate of subscriptions[%d] (%s on %s)", i, j, sub.Topic, sub.Endpoint)
		}
		seen[id] = i
	}

	return nil
}
