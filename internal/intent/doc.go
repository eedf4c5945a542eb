// Package intent classifies short messages into a closed set of intentions.
//
// Classification is nearest-centroid matching: the message embedding is
// compared by cosine similarity against one reference embedding per
// intention, and the best-scoring intention wins. References are held in an
// ordered Table so that ties always resolve to the label enumerated first.
//
// The pure functions (DotProduct, CosineSimilarity, Classify) carry no state
// and are safe for concurrent use. Classifier adds the embedding step on top.
package intent
