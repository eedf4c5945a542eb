package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teiServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req struct {
			Inputs   json.RawMessage `json:"inputs"`
			Truncate bool            `json:"truncate"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Truncate)

		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("model overloaded"))
			return
		}

		var batch []string
		if err := json.Unmarshal(req.Inputs, &batch); err != nil {
			batch = []string{"single"}
		}
		out := make([][]float32, len(batch))
		for i := range batch {
			out[i] = []float32{float32(i), 1}
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
}

func TestTEIProvider_EmbedDocuments(t *testing.T) {
	srv := teiServer(t, http.StatusOK)
	defer srv.Close()

	p, err := NewTEIProvider(TEIConfig{BaseURL: srv.URL + "/", Model: "BAAI/bge-small-en-v1.5"}, nil)
	require.NoError(t, err)

	vecs, err := p.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1}, {1, 1}}, vecs)

	vec, err := p.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, vec)
}

func TestTEIProvider_Errors(t *testing.T) {
	srv := teiServer(t, http.StatusBadRequest)
	defer srv.Close()

	p, err := NewTEIProvider(TEIConfig{BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = p.EmbedDocuments(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.ErrorContains(t, err, "model overloaded")

	_, err = p.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = p.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.EmbedQuery(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
}
