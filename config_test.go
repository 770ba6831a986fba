package ntfysub

import (
	"testing"
	"time"

	"github.com/arloliu/ntfysub/internal/logger"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Empty(t, cfg.Endpoint)
	require.Empty(t, cfg.Topic)
	require.Zero(t, cfg.Since)
	require.Equal(t, 64, cfg.EventBufferSize)
	require.Equal(t, 1<<20, cfg.MaxLineSize)
	require.Equal(t, DefaultUserAgent, cfg.UserAgent)
	require.Equal(t, 1*time.Second, cfg.Backoff.Min)
	require.Equal(t, 5*time.Minute, cfg.Backoff.Max)
	require.InDelta(t, 2.0, cfg.Backoff.Multiplier, 0)
	require.Equal(t, 4*time.Minute, cfg.Backoff.StableUptime)
	require.Zero(t, cfg.Backoff.Seed)
}

func TestSetDefaults(t *testing.T) {
	t.Run("applies defaults to empty config", func(t *testing.T) {
		cfg := Config{}
		SetDefaults(&cfg)

		require.Equal(t, DefaultEventBufferSize, cfg.EventBufferSize)
		require.Equal(t, DefaultMaxLineSize, cfg.MaxLineSize)
		require.Equal(t, 1*time.Second, cfg.Backoff.Min)
		require.Equal(t, 5*time.Minute, cfg.Backoff.Max)
		require.Equal(t, 4*time.Minute, cfg.Backoff.StableUptime)
	})

	t.Run("preserves custom values", func(t *testing.T) {
		cfg := Config{
			Endpoint:        "https://ntfy.sh",
			Topic:           "alerts",
			Since:           42,
			EventBufferSize: 8,
			MaxLineSize:     4096,
			UserAgent:       "custom",
			Backoff: BackoffConfig{
				Min:          2 * time.Second,
				Max:          time.Minute,
				Multiplier:   1.5,
				StableUptime: 10 * time.Minute,
				Seed:         7,
			},
		}
		want := cfg
		SetDefaults(&cfg)

		require.Equal(t, want, cfg)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		cfg := TestConfig()
		cfg.Endpoint = "http://localhost"
		cfg.Topic = "test"

		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing endpoint", func(c *Config) { c.Endpoint = "" }},
		{"missing topic", func(c *Config) { c.Topic = "" }},
		{"zero buffer", func(c *Config) { c.EventBufferSize = 0 }},
		{"negative line size", func(c *Config) { c.MaxLineSize = -1 }},
		{"zero min backoff", func(c *Config) { c.Backoff.Min = 0 }},
		{"max below min", func(c *Config) { c.Backoff.Max = c.Backoff.Min / 2 }},
		{"multiplier below one", func(c *Config) { c.Backoff.Multiplier = 0.5 }},
		{"zero stable uptime", func(c *Config) { c.Backoff.StableUptime = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	t.Run("valid", func(t *testing.T) {
		cfg := valid()
		require.NoError(t, cfg.Validate())
	})

	t.Run("malformed endpoint is left to the connection attempt", func(t *testing.T) {
		cfg := valid()
		cfg.Endpoint = "not a url"
		require.NoError(t, cfg.Validate())
	})
}

func TestConfig_ValidateWithWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLineSize = 128
	cfg.Backoff.StableUptime = time.Minute

	require.NotPanics(t, func() { cfg.ValidateWithWarnings(logger.NewTest(t)) })
}

// TestConfig_YAML demonstrates that time.Duration works directly with YAML unmarshaling
func TestConfig_YAML(t *testing.T) {
	yamlConfig := `
endpoint: https://ntfy.sh
topic: alerts
since: 1635528757
eventBufferSize: 16
maxLineSize: 65536
userAgent: test-agent
backoff:
  min: 500ms
  max: 2m
  multiplier: 1.5
  stableUptime: 10m
  seed: 3
`

	var cfg Config
	err := yaml.Unmarshal([]byte(yamlConfig), &cfg)
	require.NoError(t, err)

	require.Equal(t, "https://ntfy.sh", cfg.Endpoint)
	require.Equal(t, "alerts", cfg.Topic)
	require.Equal(t, uint64(1635528757), cfg.Since)
	require.Equal(t, 16, cfg.EventBufferSize)
	require.Equal(t, 65536, cfg.MaxLineSize)
	require.Equal(t, "test-agent", cfg.UserAgent)
	require.Equal(t, 500*time.Millisecond, cfg.Backoff.Min)
	require.Equal(t, 2*time.Minute, cfg.Backoff.Max)
	require.InDelta(t, 1.5, cfg.Backoff.Multiplier, 0)
	require.Equal(t, 10*time.Minute, cfg.Backoff.StableUptime)
	require.Equal(t, int64(3), cfg.Backoff.Seed)
}

// TestConfig_DefaultsWithPartialYAML demonstrates using SetDefaults with partial config
func TestConfig_DefaultsWithPartialYAML(t *testing.T) {
	yamlConfig := `
endpoint: http://localhost:8080
topic: builds
backoff:
  max: 30s
`

	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(yamlConfig), &cfg))
	SetDefaults(&cfg)

	require.Equal(t, 30*time.Second, cfg.Backoff.Max)
	require.Equal(t, 1*time.Second, cfg.Backoff.Min)
	require.Equal(t, DefaultEventBufferSize, cfg.EventBufferSize)
	require.NoError(t, cfg.Validate())
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()
	require.Less(t, cfg.Backoff.Max, time.Second)
	require.LessOrEqual(t, cfg.Backoff.Min, cfg.Backoff.Max)
	require.Equal(t, DefaultConfig().Backoff.StableUptime, cfg.Backoff.StableUptime)
}
