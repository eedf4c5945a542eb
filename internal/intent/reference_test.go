package intent

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLoadTable(t *testing.T) {
	table, err := NewTable(
		Reference{Label: Gratitude, Embedding: Embedding{0.5, -0.25, 1}},
		Reference{Label: Happiness, Embedding: Embedding{0, 1, 0.125}},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, table, "BAAI/bge-small-en-v1.5"))
	assert.Contains(t, buf.String(), "model: BAAI/bge-small-en-v1.5")
	assert.Contains(t, buf.String(), "dimension: 3")

	loaded, model, err := LoadTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, "BAAI/bge-small-en-v1.5", model)
	assert.Equal(t, table.References(), loaded.References())
}

func TestLoadTable_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "empty document",
			doc:     "",
			wantErr: ErrEmptyReferenceTable,
		},
		{
			name:    "no references",
			doc:     "references: []\n",
			wantErr: ErrEmptyReferenceTable,
		},
		{
			name: "unknown label",
			doc: `references:
  - label: grumpy
    embedding: [1, 0]
`,
			wantErr: ErrUnknownLabel,
		},
		{
			name: "dimension mismatch",
			doc: `references:
  - label: happiness
    embedding: [1, 0]
  - label: sadness
    embedding: [1, 0, 0]
`,
			wantErr: ErrDimensionMismatch,
		},
		{
			name: "declared dimension disagrees",
			doc: `dimension: 4
references:
  - label: happiness
    embedding: [1, 0]
`,
			wantErr: ErrDimensionMismatch,
		},
		{
			name: "nan component",
			doc: `references:
  - label: happiness
    embedding: [.nan, 1]
`,
			wantErr: ErrNonFiniteEmbedding,
		},
		{
			name: "infinite component",
			doc: `references:
  - label: happiness
    embedding: [1, 0]
  - label: sadness
    embedding: [-.inf, 0]
`,
			wantErr: ErrNonFiniteEmbedding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadTable(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("out of order", func(t *testing.T) {
		_, _, err := LoadTable(strings.NewReader(`references:
  - label: sadness
    embedding: [1, 0]
  - label: happiness
    embedding: [0, 1]
`))
		assert.ErrorContains(t, err, "out of order")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, _, err := LoadTable(strings.NewReader("references: ["))
		assert.Error(t, err)
	})
}

func TestBuildTable(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"yay":   {1, 0},
		"woo":   {0, 1},
		"sniff": {-1, 0},
	}}
	seeds := []Seed{
		{Label: Happiness, Phrases: []string{"yay", "woo"}},
		{Label: Sadness, Phrases: []string{"sniff"}},
	}

	table, err := BuildTable(context.Background(), emb, seeds)
	require.NoError(t, err)
	assert.Equal(t, 1, emb.calls, "seeds are embedded in one batch")

	refs := table.References()
	require.Len(t, refs, 2)
	assert.Equal(t, Happiness, refs[0].Label)
	assert.Equal(t, Embedding{0.5, 0.5}, refs[0].Embedding)
	assert.Equal(t, Sadness, refs[1].Label)
	assert.Equal(t, Embedding{-1, 0}, refs[1].Embedding)
}

func TestBuildTable_Errors(t *testing.T) {
	_, err := BuildTable(context.Background(), nil, DefaultSeeds())
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	_, err = BuildTable(context.Background(), &fakeEmbedder{}, nil)
	assert.ErrorIs(t, err, ErrEmptyReferenceTable)

	_, err = BuildTable(context.Background(), &fakeEmbedder{}, []Seed{{Label: Love}})
	assert.ErrorContains(t, err, "no phrases")

	_, err = BuildTable(context.Background(), &fakeEmbedder{vectors: map[string][]float32{}},
		[]Seed{{Label: Love, Phrases: []string{"missing"}}})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestDefaultSeeds(t *testing.T) {
	seeds := DefaultSeeds()
	require.Len(t, seeds, len(Labels()))
	for i, l := range Labels() {
		assert.Equal(t, l, seeds[i].Label)
		assert.NotEmpty(t, seeds[i].Phrases)
	}
}
