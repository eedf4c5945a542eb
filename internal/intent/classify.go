package intent

import "math"

// Score is one label's similarity to the candidate.
type Score struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}

// Result is the outcome of classifying one message.
type Result struct {
	Text   string  `json:"text"`
	Label  Label   `json:"label"`
	Score  float64 `json:"score"`
	Scores []Score `json:"scores"`
}

// Emoji returns the winning intention's emoji.
func (r Result) Emoji() string {
	return r.Label.Emoji()
}

// Distribution returns the scores keyed by label.
func (r Result) Distribution() map[Label]float64 {
	dist := make(map[Label]float64, len(r.Scores))
	for _, s := range r.Scores {
		dist[s.Label] = s.Score
	}
	return dist
}

// Classify picks the reference most similar to embedding.
//
// References are visited in table order and a later reference only replaces
// the current best when it scores strictly higher, so ties go to the earlier
// label. Every reference must match the embedding's dimension; the first that
// does not aborts classification with a *DimensionMismatchError. A NaN or
// infinite component fails with ErrNonFiniteEmbedding.
func Classify(text string, embedding Embedding, table Table) (Result, error) {
	if table.Len() == 0 {
		return Result{}, ErrEmptyReferenceTable
	}
	if len(embedding) == 0 {
		return Result{}, ErrEmptyEmbedding
	}
	if err := checkFinite(embedding); err != nil {
		return Result{}, err
	}

	res := Result{
		Text:   text,
		Score:  math.Inf(-1),
		Scores: make([]Score, 0, table.Len()),
	}

	for i, ref := range table.refs {
		if len(ref.Embedding) != len(embedding) {
			return Result{}, &DimensionMismatchError{
				Label: ref.Label,
				Index: i,
				Want:  len(ref.Embedding),
				Got:   len(embedding),
			}
		}

		score, err := CosineSimilarity(embedding, ref.Embedding)
		if err != nil {
			return Result{}, err
		}

		res.Scores = append(res.Scores, Score{Label: ref.Label, Score: score})
		if score > res.Score {
			res.Label = ref.Label
			res.Score = score
		}
	}

	return res, nil
}
