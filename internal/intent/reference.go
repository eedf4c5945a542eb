package intent

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// tableFile is the on-disk layout of a reference table.
type tableFile struct {
	Model      string          `yaml:"model,omitempty"`
	Dimension  int             `yaml:"dimension"`
	References []fileReference `yaml:"references"`
}

type fileReference struct {
	Label     Label     `yaml:"label"`
	Embedding []float32 `yaml:"embedding,flow"`
}

// LoadTable reads a YAML reference table and returns it together with the
// name of the model that produced it (empty if not recorded).
//
// Labels must belong to the intention set and appear in enumeration order.
func LoadTable(r io.Reader) (Table, string, error) {
	var f tableFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, "", ErrEmptyReferenceTable
		}
		return Table{}, "", fmt.Errorf("decoding reference table: %w", err)
	}
	if len(f.References) == 0 {
		return Table{}, "", ErrEmptyReferenceTable
	}

	refs := make([]Reference, 0, len(f.References))
	last := -1
	for i, fr := range f.References {
		pos := labelIndex(fr.Label)
		if pos < 0 {
			return Table{}, "", fmt.Errorf("reference %d: %w: %q", i, ErrUnknownLabel, fr.Label)
		}
		if pos <= last {
			return Table{}, "", fmt.Errorf("reference %d: label %q out of order", i, fr.Label)
		}
		last = pos
		refs = append(refs, Reference{Label: fr.Label, Embedding: fr.Embedding})
	}

	t, err := NewTable(refs...)
	if err != nil {
		return Table{}, "", err
	}
	if f.Dimension != 0 && f.Dimension != t.Dimension() {
		return Table{}, "", &DimensionMismatchError{Index: -1, Want: f.Dimension, Got: t.Dimension()}
	}
	return t, f.Model, nil
}

// WriteTable writes t in the format read by LoadTable.
func WriteTable(w io.Writer, t Table, model string) error {
	f := tableFile{
		Model:      model,
		Dimension:  t.Dimension(),
		References: make([]fileReference, 0, t.Len()),
	}
	for _, ref := range t.refs {
		f.References = append(f.References, fileReference{Label: ref.Label, Embedding: ref.Embedding})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("encoding reference table: %w", err)
	}
	return enc.Close()
}

// Seed lists example phrases for one intention.
type Seed struct {
	Label   Label
	Phrases []string
}

// BuildTable embeds every seed phrase in a single batch and uses the mean
// of each label's phrase embeddings as its centroid. Table order follows
// the order of seeds.
func BuildTable(ctx context.Context, embedder Embedder, seeds []Seed) (Table, error) {
	if embedder == nil {
		return Table{}, ErrProviderUnavailable
	}
	if len(seeds) == 0 {
		return Table{}, ErrEmptyReferenceTable
	}

	var texts []string
	for _, s := range seeds {
		if len(s.Phrases) == 0 {
			return Table{}, fmt.Errorf("seed %q has no phrases", s.Label)
		}
		texts = append(texts, s.Phrases...)
	}

	vecs, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return Table{}, fmt.Errorf("%w: embedding seeds: %w", ErrProviderUnavailable, err)
	}
	if len(vecs) != len(texts) {
		return Table{}, fmt.Errorf("%w: expected %d embeddings, got %d",
			ErrProviderUnavailable, len(texts), len(vecs))
	}

	refs := make([]Reference, 0, len(seeds))
	next := 0
	for _, s := range seeds {
		centroid, err := mean(vecs[next : next+len(s.Phrases)])
		if err != nil {
			return Table{}, fmt.Errorf("seed %q: %w", s.Label, err)
		}
		next += len(s.Phrases)
		refs = append(refs, Reference{Label: s.Label, Embedding: centroid})
	}

	return NewTable(refs...)
}

func mean(vecs [][]float32) (Embedding, error) {
	dim := len(vecs[0])
	if dim == 0 {
		return nil, ErrEmptyEmbedding
	}

	sum := make([]float64, dim)
	for _, v := range vecs {
		if len(v) != dim {
			return nil, &DimensionMismatchError{Index: -1, Want: dim, Got: len(v)}
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
	}

	out := make(Embedding, dim)
	n := float64(len(vecs))
	for i := range sum {
		out[i] = float32(sum[i] / n)
	}
	return out, nil
}

func labelIndex(l Label) int {
	for i, known := range labels {
		if known == l {
			return i
		}
	}
	return -1
}
