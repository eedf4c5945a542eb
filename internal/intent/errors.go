package intent

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch indicates two embeddings of different lengths were compared.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyReferenceTable indicates classification was attempted without references.
	ErrEmptyReferenceTable = errors.New("reference table is empty")

	// ErrEmptyEmbedding indicates a zero-length candidate embedding.
	ErrEmptyEmbedding = errors.New("embedding is empty")

	// ErrNonFiniteEmbedding indicates an embedding with a NaN or infinite component.
	ErrNonFiniteEmbedding = errors.New("embedding has non-finite component")

	// ErrProviderUnavailable indicates the embedding provider is missing or failing.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrUnknownLabel indicates a label outside the intention set.
	ErrUnknownLabel = errors.New("unknown intention label")
)

// DimensionMismatchError reports which reference disagreed with the candidate.
// Index is -1 when the comparison did not involve a table entry.
type DimensionMismatchError struct {
	Label Label
	Index int
	Want  int
	Got   int
}

func (e *DimensionMismatchError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("%s: %d != %d", ErrDimensionMismatch, e.Got, e.Want)
	}
	return fmt.Sprintf("%s: reference %q (index %d) has %d dimensions, embedding has %d",
		ErrDimensionMismatch, e.Label, e.Index, e.Want, e.Got)
}

// Is makes errors.Is(err, ErrDimensionMismatch) hold.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
