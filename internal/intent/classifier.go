package intent

import (
	"context"
	"errors"
	"fmt"
)

// Embedder turns texts into embeddings.
// Implemented by the providers in internal/embeddings.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Classifier embeds text and classifies it against a fixed table.
// Safe for concurrent use when the Embedder is.
type Classifier struct {
	embedder Embedder
	table    Table
}

// NewClassifier creates a Classifier. A nil embedder is allowed; every
// Classify call then fails with ErrProviderUnavailable.
func NewClassifier(embedder Embedder, table Table) (*Classifier, error) {
	if table.Len() == 0 {
		return nil, ErrEmptyReferenceTable
	}
	return &Classifier{embedder: embedder, table: table}, nil
}

// Table returns the classifier's reference table.
func (c *Classifier) Table() Table {
	return c.table
}

// Embed returns the embedding of text.
func (c *Classifier) Embed(ctx context.Context, text string) (Embedding, error) {
	if c.embedder == nil {
		return nil, ErrProviderUnavailable
	}

	vecs, err := c.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", ErrProviderUnavailable, len(vecs))
	}
	if err := checkFinite(vecs[0]); err != nil {
		return nil, err
	}
	return Embedding(vecs[0]), nil
}

// Classify embeds text and returns the closest intention.
func (c *Classifier) Classify(ctx context.Context, text string) (Result, error) {
	emb, err := c.Embed(ctx, text)
	if err != nil {
		return Result{}, err
	}
	return Classify(text, emb, c.table)
}

// ClassifyEmbedding classifies a precomputed embedding.
func (c *Classifier) ClassifyEmbedding(text string, emb Embedding) (Result, error) {
	return Classify(text, emb, c.table)
}
