package embeddings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProviderConfig
		wantErr error
		wantDim int
	}{
		{
			name: "tei provider with valid config",
			cfg: ProviderConfig{
				Provider: "tei",
				BaseURL:  "http://localhost:8080",
				Model:    "BAAI/bge-small-en-v1.5",
			},
			wantDim: 384,
		},
		{
			name: "tei provider without base URL",
			cfg: ProviderConfig{
				Provider: "tei",
				Model:    "BAAI/bge-small-en-v1.5",
			},
			wantErr: ErrInvalidConfig,
		},
		{
			name: "openai provider",
			cfg: ProviderConfig{
				Provider: "openai",
				BaseURL:  "http://localhost:9999/v1",
				Model:    "text-embedding-3-small",
				APIKey:   "sk-test",
			},
			wantDim: 1536,
		},
		{
			name: "openai provider without key",
			cfg: ProviderConfig{
				Provider: "openai",
				Model:    "text-embedding-3-small",
			},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unknown provider",
			cfg:     ProviderConfig{Provider: "unknown"},
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.cfg, zaptest.NewLogger(t))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer provider.Close()
			assert.Equal(t, tt.wantDim, provider.Dimension())
		})
	}
}

func TestDetectDimensionFromModel(t *testing.T) {
	tests := map[string]int{
		"BAAI/bge-small-en-v1.5":                 384,
		"BAAI/bge-base-en-v1.5":                  768,
		"fast-bge-small-zh-v1.5":                 512,
		"sentence-transformers/all-MiniLM-L6-v2": 384,
		"text-embedding-3-small":                 1536,
		"text-embedding-3-large":                 3072,
		"intfloat/e5-large":                      1024,
		"something-unknown":                      384,
	}
	for model, want := range tests {
		assert.Equal(t, want, detectDimensionFromModel(model), model)
	}
}
