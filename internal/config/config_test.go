package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "http_port"},
		{"zero shutdown", func(c *Config) { c.Server.ShutdownTimeout = 0 }, "shutdown_timeout"},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }, "rate_limit"},
		{"zero burst", func(c *Config) { c.Server.RateBurst = 0 }, "rate_burst"},
		{"negative max messages", func(c *Config) { c.Board.MaxMessages = -1 }, "max_messages"},
		{"zero content length", func(c *Config) { c.Board.MaxContentLength = 0 }, "max_content_length"},
		{"unknown provider", func(c *Config) { c.Embeddings.Provider = "word2vec" }, "embeddings.provider"},
		{"tei without url", func(c *Config) {
			c.Embeddings.Provider = "tei"
			c.Embeddings.BaseURL = ""
		}, "base_url"},
		{"openai without key", func(c *Config) { c.Embeddings.Provider = "openai" }, "api_key"},
		{"threshold above one", func(c *Config) { c.Toxicity.Threshold = 1.5 }, "threshold"},
		{"empty subject prefix", func(c *Config) { c.NATS.SubjectPrefix = "" }, "subject_prefix"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_RateLimitDisabledAllowsZeroBurst(t *testing.T) {
	cfg := Default()
	cfg.Server.RateLimit = 0
	cfg.Server.RateBurst = 0
	assert.NoError(t, cfg.Validate())
}

func TestNATSConfig_Enabled(t *testing.T) {
	assert.False(t, NATSConfig{}.Enabled())
	assert.True(t, NATSConfig{URL: "nats://localhost:4222"}.Enabled())
	assert.True(t, NATSConfig{Embedded: true}.Enabled())
}
