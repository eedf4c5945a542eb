package board

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/moodwall/internal/intent"
)

func TestIndex_SimilarOrdersBestFirst(t *testing.T) {
	ctx := context.Background()
	idx, err := NewIndex()
	require.NoError(t, err)

	require.NoError(t, idx.Add(ctx, "east", "east", intent.Embedding{1, 0}))
	require.NoError(t, idx.Add(ctx, "north", "north", intent.Embedding{0, 1}))
	require.NoError(t, idx.Add(ctx, "northeast", "northeast", intent.Embedding{1, 1}))
	assert.Equal(t, 3, idx.Count())

	hits, err := idx.Similar(ctx, intent.Embedding{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "east", hits[0].ID)
	assert.Equal(t, "northeast", hits[1].ID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestIndex_KCappedAtCount(t *testing.T) {
	ctx := context.Background()
	idx, err := NewIndex()
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, "a", "a", intent.Embedding{1, 0}))

	hits, err := idx.Similar(ctx, intent.Embedding{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIndex_EmptyAndZero(t *testing.T) {
	ctx := context.Background()
	idx, err := NewIndex()
	require.NoError(t, err)

	hits, err := idx.Similar(ctx, intent.Embedding{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, idx.Add(ctx, "zero", "zero", intent.Embedding{0, 0}))
	assert.Zero(t, idx.Count(), "zero vectors are not indexed")

	require.NoError(t, idx.Add(ctx, "a", "a", intent.Embedding{1, 0}))
	hits, err = idx.Similar(ctx, intent.Embedding{0, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = idx.Similar(ctx, nil, 3)
	assert.ErrorIs(t, err, intent.ErrEmptyEmbedding)

	_, err = idx.Similar(ctx, intent.Embedding{1, 0}, 0)
	assert.Error(t, err)
}

func TestIndex_RemoveAndReset(t *testing.T) {
	ctx := context.Background()
	idx, err := NewIndex()
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, "a", "a", intent.Embedding{1, 0}))
	require.NoError(t, idx.Add(ctx, "b", "b", intent.Embedding{0, 1}))

	require.NoError(t, idx.Remove(ctx, "a"))
	assert.Equal(t, 1, idx.Count())

	require.NoError(t, idx.Reset())
	assert.Zero(t, idx.Count())

	require.NoError(t, idx.Add(ctx, "c", "c", intent.Embedding{1, 0}))
	assert.Equal(t, 1, idx.Count())
}
