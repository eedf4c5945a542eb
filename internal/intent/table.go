package intent

import "fmt"

// Reference pairs an intention with its centroid embedding.
type Reference struct {
	Label     Label
	Embedding Embedding
}

// Table is an ordered, immutable set of references. Enumeration order
// decides ties during classification.
type Table struct {
	refs []Reference
}

// NewTable copies refs into a Table. Labels must be non-empty and unique,
// and all embeddings must share one non-zero dimension and be finite.
func NewTable(refs ...Reference) (Table, error) {
	seen := make(map[Label]struct{}, len(refs))
	out := make([]Reference, 0, len(refs))

	for i, ref := range refs {
		if ref.Label == "" {
			return Table{}, fmt.Errorf("reference %d: empty label", i)
		}
		if _, dup := seen[ref.Label]; dup {
			return Table{}, fmt.Errorf("reference %d: duplicate label %q", i, ref.Label)
		}
		if len(ref.Embedding) == 0 {
			return Table{}, fmt.Errorf("reference %q: %w", ref.Label, ErrEmptyEmbedding)
		}
		if err := checkFinite(ref.Embedding); err != nil {
			return Table{}, fmt.Errorf("reference %q: %w", ref.Label, err)
		}
		if i > 0 && len(ref.Embedding) != len(out[0].Embedding) {
			return Table{}, &DimensionMismatchError{
				Label: ref.Label,
				Index: i,
				Want:  len(out[0].Embedding),
				Got:   len(ref.Embedding),
			}
		}
		seen[ref.Label] = struct{}{}
		out = append(out, Reference{Label: ref.Label, Embedding: cloneEmbedding(ref.Embedding)})
	}

	return Table{refs: out}, nil
}

// Len returns the number of references.
func (t Table) Len() int { return len(t.refs) }

// Dimension returns the shared embedding length, or 0 for an empty table.
func (t Table) Dimension() int {
	if len(t.refs) == 0 {
		return 0
	}
	return len(t.refs[0].Embedding)
}

// Labels returns the table's labels in order.
func (t Table) Labels() []Label {
	out := make([]Label, len(t.refs))
	for i, ref := range t.refs {
		out[i] = ref.Label
	}
	return out
}

// References returns a deep copy of the table entries.
func (t Table) References() []Reference {
	out := make([]Reference, len(t.refs))
	for i, ref := range t.refs {
		out[i] = Reference{Label: ref.Label, Embedding: cloneEmbedding(ref.Embedding)}
	}
	return out
}

func cloneEmbedding(e Embedding) Embedding {
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}
