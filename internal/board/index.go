package board

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fyrsmithlabs/moodwall/internal/intent"
)

var indexTracer = otel.Tracer("github.com/fyrsmithlabs/moodwall/internal/board")

const collectionName = "messages"

// errNoEmbeddingFunc is returned if chromem ever asks the index to embed
// text itself. Every document and query carries a precomputed embedding.
var errNoEmbeddingFunc = errors.New("board index requires precomputed embeddings")

// Hit is one similarity search result.
type Hit struct {
	ID         string
	Similarity float64
}

// Index is an in-memory chromem collection of message embeddings.
type Index struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
}

// NewIndex creates an empty index.
func NewIndex() (*Index, error) {
	idx := &Index{}
	if err := idx.reset(); err != nil {
		return nil, err
	}
	return idx, nil
}

func noEmbed(context.Context, string) ([]float32, error) {
	return nil, errNoEmbeddingFunc
}

func (i *Index) reset() error {
	db := chromem.NewDB()
	collection, err := db.CreateCollection(collectionName, nil, noEmbed)
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	i.db = db
	i.collection = collection
	return nil
}

// Add indexes a message embedding. Zero vectors are skipped since they
// have no direction to compare.
func (i *Index) Add(ctx context.Context, id, text string, emb intent.Embedding) error {
	if isZero(emb) {
		return nil
	}
	i.mu.RLock()
	defer i.mu.RUnlock()

	doc := chromem.Document{
		ID:        id,
		Content:   text,
		Embedding: append([]float32(nil), emb...),
	}
	if err := i.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("indexing message %s: %w", id, err)
	}
	return nil
}

// Remove drops a message from the index.
func (i *Index) Remove(ctx context.Context, id string) error {
	// Exclusive so a concurrent Similar never sees the count shrink.
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.collection.Delete(ctx, nil, nil, id)
}

// Similar returns up to k messages closest to emb, best first.
func (i *Index) Similar(ctx context.Context, emb intent.Embedding, k int) ([]Hit, error) {
	ctx, span := indexTracer.Start(ctx, "Index.Similar")
	defer span.End()
	span.SetAttributes(attribute.Int("k", k))

	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(emb) == 0 {
		return nil, intent.ErrEmptyEmbedding
	}
	if isZero(emb) {
		return []Hit{}, nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	// chromem requires nResults <= document count
	count := i.collection.Count()
	if count == 0 {
		return []Hit{}, nil
	}
	if k > count {
		k = count
	}

	results, err := i.collection.QueryEmbedding(ctx, append([]float32(nil), emb...), k, nil, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying index: %w", err)
	}

	hits := make([]Hit, len(results))
	for n, r := range results {
		hits[n] = Hit{ID: r.ID, Similarity: float64(r.Similarity)}
	}
	span.SetAttributes(attribute.Int("results_count", len(hits)))
	return hits, nil
}

// Count returns the number of indexed messages.
func (i *Index) Count() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.collection.Count()
}

// Reset empties the index.
func (i *Index) Reset() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.reset()
}

func isZero(emb intent.Embedding) bool {
	var sum float64
	for _, v := range emb {
		sum += float64(v) * float64(v)
	}
	return sum == 0 || math.IsNaN(sum)
}
