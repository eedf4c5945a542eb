package intent

import (
	"fmt"
	"math"
)

// Embedding is a dense vector produced by an embedding model.
type Embedding []float32

// DotProduct returns the sum of a[i]*b[i].
// Vectors of different length are rejected with a *DimensionMismatchError,
// and vectors holding NaN or Inf with ErrNonFiniteEmbedding.
func DotProduct(a, b Embedding) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{Index: -1, Want: len(b), Got: len(a)}
	}
	if err := checkFinite(a); err != nil {
		return 0, err
	}
	if err := checkFinite(b); err != nil {
		return 0, err
	}

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot, nil
}

// CosineSimilarity computes (a · b) / (||a|| * ||b||).
//
// Returns a value in [-1, 1]. A zero-magnitude operand has no direction, so
// its similarity to anything is defined as 0 rather than NaN.
func CosineSimilarity(a, b Embedding) (float64, error) {
	dot, err := DotProduct(a, b)
	if err != nil {
		return 0, err
	}

	magA := magnitude(a)
	magB := magnitude(b)
	if magA == 0 || magB == 0 {
		return 0, nil
	}

	sim := dot / (magA * magB)
	// Rounding can push parallel vectors a hair past the bounds.
	return math.Max(-1, math.Min(1, sim)), nil
}

func magnitude(v Embedding) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// checkFinite rejects vectors that would turn every score into NaN.
func checkFinite(v Embedding) error {
	for i, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Errorf("%w: component %d is %v", ErrNonFiniteEmbedding, i, x)
		}
	}
	return nil
}
