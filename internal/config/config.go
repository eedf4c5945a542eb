// Package config loads moodwall configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/moodwall/internal/logging"
	"github.com/fyrsmithlabs/moodwall/internal/telemetry"
)

// Config is the complete daemon configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Board      BoardConfig      `koanf:"board"`
	Intent     IntentConfig     `koanf:"intent"`
	Embeddings EmbeddingsConfig `koanf:"embeddings"`
	Toxicity   ToxicityConfig   `koanf:"toxicity"`
	NATS       NATSConfig       `koanf:"nats"`
	Logging    logging.Config   `koanf:"logging"`
	Telemetry  telemetry.Config `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string `koanf:"cors_origins"`
	// RateLimit is POST requests per second per client IP; 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// BoardConfig bounds the message board.
type BoardConfig struct {
	// MaxMessages caps the board; the oldest message is evicted. 0 is unbounded.
	MaxMessages      int `koanf:"max_messages"`
	MaxContentLength int `koanf:"max_content_length"`
	SimilarLimit     int `koanf:"similar_limit"`
}

// IntentConfig selects the reference table source.
type IntentConfig struct {
	// ReferencesFile is a YAML table written by `moodwall references`.
	// When empty the table is built from the default seed phrases at startup.
	ReferencesFile string `koanf:"references_file"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	Provider  string   `koanf:"provider"`
	Model     string   `koanf:"model"`
	BaseURL   string   `koanf:"base_url"`
	APIKey    Secret   `koanf:"api_key"`
	CacheDir  string   `koanf:"cache_dir"`
	MaxLength int      `koanf:"max_length"`
	Timeout   Duration `koanf:"timeout"`
}

// ToxicityConfig configures the toxicity check. Disabled when BaseURL is empty.
type ToxicityConfig struct {
	BaseURL   string   `koanf:"base_url"`
	Threshold float64  `koanf:"threshold"`
	Timeout   Duration `koanf:"timeout"`
}

// Enabled reports whether a toxicity service is configured.
func (c ToxicityConfig) Enabled() bool {
	return c.BaseURL != ""
}

// NATSConfig configures board event publishing. Events are off when URL is
// empty and Embedded is false.
type NATSConfig struct {
	URL           string `koanf:"url"`
	Embedded      bool   `koanf:"embedded"`
	Host          string `koanf:"host"`
	Port          int    `koanf:"port"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

// Enabled reports whether events are published.
func (c NATSConfig) Enabled() bool {
	return c.URL != "" || c.Embedded
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: Duration(10 * time.Second),
			CORSOrigins:     []string{"*"},
			RateLimit:       5,
			RateBurst:       10,
		},
		Board: BoardConfig{
			MaxMessages:      500,
			MaxContentLength: 280,
			SimilarLimit:     20,
		},
		Embeddings: EmbeddingsConfig{
			Provider: "fastembed",
			Model:    "BAAI/bge-small-en-v1.5",
			BaseURL:  "http://localhost:8081",
			Timeout:  Duration(30 * time.Second),
		},
		Toxicity: ToxicityConfig{
			Threshold: 0.7,
			Timeout:   Duration(10 * time.Second),
		},
		NATS: NATSConfig{
			Embedded:      true,
			Host:          "127.0.0.1",
			Port:          4222,
			SubjectPrefix: "moodwall",
		},
		Logging:   *logging.NewDefaultConfig(),
		Telemetry: *telemetry.NewDefaultConfig(),
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port %d must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit cannot be negative"))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, errors.New("server.rate_burst must be at least 1 when rate limiting"))
	}

	if c.Board.MaxMessages < 0 {
		errs = append(errs, errors.New("board.max_messages cannot be negative"))
	}
	if c.Board.MaxContentLength < 1 {
		errs = append(errs, errors.New("board.max_content_length must be positive"))
	}
	if c.Board.SimilarLimit < 1 {
		errs = append(errs, errors.New("board.similar_limit must be positive"))
	}

	switch c.Embeddings.Provider {
	case "fastembed":
	case "tei":
		if c.Embeddings.BaseURL == "" {
			errs = append(errs, errors.New("embeddings.base_url required for tei"))
		}
	case "openai":
		if !c.Embeddings.APIKey.IsSet() {
			errs = append(errs, errors.New("embeddings.api_key required for openai"))
		}
	default:
		errs = append(errs, fmt.Errorf("embeddings.provider %q must be fastembed, tei or openai", c.Embeddings.Provider))
	}

	if c.Toxicity.Threshold <= 0 || c.Toxicity.Threshold > 1 {
		errs = append(errs, fmt.Errorf("toxicity.threshold %v must be in (0, 1]", c.Toxicity.Threshold))
	}

	if c.NATS.Embedded && (c.NATS.Port < -1 || c.NATS.Port > 65535) {
		errs = append(errs, fmt.Errorf("nats.port %d out of range", c.NATS.Port))
	}
	if c.NATS.Enabled() && c.NATS.SubjectPrefix == "" {
		errs = append(errs, errors.New("nats.subject_prefix required"))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	return errors.Join(errs...)
}
