// Package embeddings turns message text into sentence embeddings.
//
// Three providers are supported: FastEmbed (local ONNX models, needs cgo),
// TEI (a HuggingFace Text Embeddings Inference server) and any
// OpenAI-compatible embeddings API. NewProvider selects one at runtime and
// wraps it with OTel metrics.
package embeddings
