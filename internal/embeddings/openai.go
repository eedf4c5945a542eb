package embeddings

import (
	"context"
	"fmt"
	"net/http"

	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIConfig configures an OpenAI-compatible embeddings provider.
type OpenAIConfig struct {
	// BaseURL defaults to the OpenAI API.
	BaseURL string
	// Model defaults to text-embedding-3-small.
	Model  string
	APIKey string
}

// OpenAIProvider embeds text through langchaingo's OpenAI client.
type OpenAIProvider struct {
	embedder  *lcembeddings.EmbedderImpl
	model     string
	dimension int
}

// NewOpenAIProvider creates the provider. A nil client uses langchaingo's default.
func NewOpenAIProvider(cfg OpenAIConfig, client *http.Client) (*OpenAIProvider, error) {
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key required", ErrInvalidConfig)
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithEmbeddingModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if client != nil {
		opts = append(opts, openai.WithHTTPClient(client))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: creating openai client: %v", ErrInvalidConfig, err)
	}

	embedder, err := lcembeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("%w: creating embedder: %v", ErrInvalidConfig, err)
	}

	return &OpenAIProvider{
		embedder:  embedder,
		model:     cfg.Model,
		dimension: detectDimensionFromModel(cfg.Model),
	}, nil
}

// EmbedDocuments generates embeddings for multiple texts.
func (p *OpenAIProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	vecs, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return vecs, nil
}

// EmbedQuery generates an embedding for a single query.
func (p *OpenAIProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}

	vec, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return vec, nil
}

// Dimension returns the dimension inferred from the model name.
func (p *OpenAIProvider) Dimension() int {
	return p.dimension
}

// Close is a no-op; the HTTP client holds no per-provider resources.
func (p *OpenAIProvider) Close() error {
	return nil
}
