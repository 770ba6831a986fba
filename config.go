package ntfysub

import (
	"fmt"
	"time"
)

// Default listener settings.
const (
	DefaultEventBufferSize = 64
	DefaultMaxLineSize     = 1 << 20
	DefaultUserAgent       = "ntfysub/" + Version
)

// BackoffConfig controls the reconnect delay policy of the supervised loop.
type BackoffConfig struct {
	// Min is the first reconnect delay and the delay restored by a reset.
	// Default: 1 second
	Min time.Duration `yaml:"min"`

	// Max caps every reconnect delay.
	// Default: 5 minutes
	Max time.Duration `yaml:"max"`

	// Multiplier is the growth factor applied to the previous delay before jitter.
	// Default: 2.0
	Multiplier float64 `yaml:"multiplier"`

	// StableUptime is how long an attempt must stay up before its failure resets the
	// delay to Min. Shorter-lived attempts keep escalating.
	// Default: 4 minutes
	StableUptime time.Duration `yaml:"stableUptime"`

	// Seed makes jitter deterministic when non-zero. Intended for tests.
	Seed int64 `yaml:"seed"`
}

// Config is the configuration of one Listener.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h".
type Config struct {
	// Endpoint is the ntfy server base URL, e.g. "https://ntfy.sh".
	Endpoint string `yaml:"endpoint"`

	// Topic is the topic to subscribe to.
	Topic string `yaml:"topic"`

	// Since is the initial resume cursor in unix seconds. 0 requests every message
	// the server still has cached for the topic.
	Since uint64 `yaml:"since"`

	// EventBufferSize is the capacity of the events channel. When it is full the
	// listener stops reading from the server until the consumer catches up.
	// Default: 64
	EventBufferSize int `yaml:"eventBufferSize"`

	// MaxLineSize bounds a single NDJSON line in bytes. Longer lines are skipped and
	// logged without ending the attempt; the cursor does not advance past them.
	// Default: 1 MiB
	MaxLineSize int `yaml:"maxLineSize"`

	// UserAgent is sent with every subscription request.
	UserAgent string `yaml:"userAgent"`

	// Backoff controls reconnect delays.
	Backoff BackoffConfig `yaml:"backoff"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Endpoint and Topic are left empty and must be set by the caller.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		EventBufferSize: DefaultEventBufferSize,
		MaxLineSize:     DefaultMaxLineSize,
		UserAgent:       DefaultUserAgent,
		Backoff: BackoffConfig{
			Min:          1 * time.Second,
			Max:          5 * time.Minute,
			Multiplier:   2.0,
			StableUptime: 4 * time.Minute,
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.EventBufferSize == 0 {
		cfg.EventBufferSize = defaults.EventBufferSize
	}
	if cfg.MaxLineSize == 0 {
		cfg.MaxLineSize = defaults.MaxLineSize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.Backoff.Min == 0 {
		cfg.Backoff.Min = defaults.Backoff.Min
	}
	if cfg.Backoff.Max == 0 {
		cfg.Backoff.Max = defaults.Backoff.Max
	}
	if cfg.Backoff.Multiplier == 0 {
		cfg.Backoff.Multiplier = defaults.Backoff.Multiplier
	}
	if cfg.Backoff.StableUptime == 0 {
		cfg.Backoff.StableUptime = defaults.Backoff.StableUptime
	}
	// Seed 0 is valid (random jitter), so no default is applied
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Endpoint and topic syntax is not checked here: a malformed endpoint or topic fails
// each connection attempt and is retried like any other connection error.
//
// Hard Validation Rules:
//   - Endpoint and Topic are set
//   - EventBufferSize >= 1, MaxLineSize >= 1
//   - 0 < Backoff.Min <= Backoff.Max
//   - Backoff.Multiplier >= 1
//   - Backoff.StableUptime > 0
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	}
	if cfg.Topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	}
	if cfg.EventBufferSize < 1 {
		return fmt.Errorf("%w: EventBufferSize must be >= 1, got %d", ErrInvalidConfig, cfg.EventBufferSize)
	}
	if cfg.MaxLineSize < 1 {
		return fmt.Errorf("%w: MaxLineSize must be >= 1, got %d", ErrInvalidConfig, cfg.MaxLineSize)
	}
	if cfg.Backoff.Min <= 0 {
		return fmt.Errorf("%w: Backoff.Min must be > 0, got %v", ErrInvalidConfig, cfg.Backoff.Min)
	}
	if cfg.Backoff.Max < cfg.Backoff.Min {
		return fmt.Errorf(
			"%w: Backoff.Max (%v) must be >= Backoff.Min (%v)",
			ErrInvalidConfig, cfg.Backoff.Max, cfg.Backoff.Min,
		)
	}
	if cfg.Backoff.Multiplier < 1 {
		return fmt.Errorf("%w: Backoff.Multiplier must be >= 1, got %v", ErrInvalidConfig, cfg.Backoff.Multiplier)
	}
	if cfg.Backoff.StableUptime <= 0 {
		return fmt.Errorf("%w: Backoff.StableUptime must be > 0, got %v", ErrInvalidConfig, cfg.Backoff.StableUptime)
	}

	return nil
}

// ValidateWithWarnings logs warnings for non-recommended values.
//
// This is called after Validate() in NewListener() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.MaxLineSize < 4096 {
		logger.Warn(
			"MaxLineSize is very small, messages with actions or attachments may not fit",
			"maxLineSize", cfg.MaxLineSize,
			"recommended", DefaultMaxLineSize,
		)
	}

	if cfg.Backoff.StableUptime < cfg.Backoff.Max {
		logger.Warn(
			"Backoff.StableUptime is shorter than Backoff.Max, reconnect delays reset quickly",
			"stableUptime", cfg.Backoff.StableUptime,
			"max", cfg.Backoff.Max,
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Reconnect delays are in milliseconds instead of seconds. Use DefaultConfig()
// for production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := ntfysub.TestConfig()
//	cfg.Endpoint = srv.URL()
//	cfg.Topic = "alerts"
//	l, err := ntfysub.NewListener(cfg)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.Backoff.Min = 5 * time.Millisecond
	cfg.Backoff.Max = 50 * time.Millisecond

	return cfg
}
