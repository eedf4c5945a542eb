package embeddings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/moodwall/internal/httpclient"
)

// Provider generates embeddings.
type Provider interface {
	// EmbedDocuments embeds a batch of texts, preserving order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Dimension returns the embedding dimension for the current model.
	Dimension() int
	// Close releases resources held by the provider.
	Close() error
}

// ProviderConfig holds configuration for creating an embedding provider.
type ProviderConfig struct {
	// Provider is "fastembed", "tei" or "openai".
	Provider string
	// Model is the embedding model name.
	Model string
	// BaseURL is the service URL (tei and openai).
	BaseURL string
	// APIKey authenticates against OpenAI-compatible APIs.
	APIKey string
	// CacheDir is the model cache directory (fastembed).
	CacheDir string
	// MaxLength caps the input sequence length (fastembed).
	MaxLength int
	// Timeout bounds each HTTP request (tei and openai).
	Timeout time.Duration
}

// NewProvider creates the configured provider, instrumented with metrics.
func NewProvider(cfg ProviderConfig, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	httpCfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}

	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case "fastembed", "":
		p, err = NewFastEmbedProvider(FastEmbedConfig{
			Model:     cfg.Model,
			CacheDir:  cfg.CacheDir,
			MaxLength: cfg.MaxLength,
		})
	case "tei":
		p, err = NewTEIProvider(TEIConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}, httpclient.New(httpCfg, logger))
	case "openai":
		p, err = NewOpenAIProvider(OpenAIConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		}, httpclient.New(httpCfg, logger))
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return Instrument(p, cfg.Model, NewMetrics(logger)), nil
}

// detectDimensionFromModel returns the embedding dimension for a model name.
// Falls back to 384 if model is unknown.
func detectDimensionFromModel(model string) int {
	if dim, ok := knownDimensions[model]; ok {
		return dim
	}
	switch {
	case strings.Contains(model, "text-embedding-3-large"):
		return 3072
	case strings.Contains(model, "text-embedding"):
		return 1536
	case strings.Contains(model, "base"):
		return 768
	case strings.Contains(model, "large"):
		return 1024
	default:
		return 384
	}
}

// knownDimensions covers the FastEmbed catalogue under both naming schemes.
var knownDimensions = map[string]int{
	"BAAI/bge-small-en-v1.5":                 384,
	"BAAI/bge-small-en":                      384,
	"BAAI/bge-base-en-v1.5":                  768,
	"BAAI/bge-base-en":                       768,
	"BAAI/bge-small-zh-v1.5":                 512,
	"sentence-transformers/all-MiniLM-L6-v2": 384,
	"fast-bge-small-en-v1.5":                 384,
	"fast-bge-small-en":                      384,
	"fast-bge-base-en-v1.5":                  768,
	"fast-bge-base-en":                       768,
	"fast-bge-small-zh-v1.5":                 512,
	"fast-all-MiniLM-L6-v2":                  384,
}

// instrumented records metrics around every call of the wrapped provider.
type instrumented struct {
	Provider
	model   string
	metrics *Metrics
}

// Instrument wraps p so each call records latency and vector checks under model.
func Instrument(p Provider, model string, m *Metrics) Provider {
	return &instrumented{Provider: p, model: model, metrics: m}
}

func (i *instrumented) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := i.Provider.EmbedDocuments(ctx, texts)
	i.metrics.RecordEmbed(ctx, i.model, len(texts), time.Since(start), err)
	if err == nil {
		i.metrics.RecordVectors(ctx, i.model, i.Dimension(), vecs)
	}
	return vecs, err
}

func (i *instrumented) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, err := i.Provider.EmbedQuery(ctx, text)
	i.metrics.RecordEmbed(ctx, i.model, 1, time.Since(start), err)
	if err == nil {
		i.metrics.RecordVectors(ctx, i.model, i.Dimension(), [][]float32{vec})
	}
	return vec, err
}
