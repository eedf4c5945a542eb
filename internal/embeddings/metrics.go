package embeddings

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const embeddingsInstrumentationName = "github.com/fyrsmithlabs/moodwall/internal/embeddings"

// Workload names what an embedding call was for. The wall embeds one
// message per post, classify or similar request and embeds the reference
// phrases in bulk once when the intent table is seeded.
type Workload string

const (
	WorkloadMessage   Workload = "message"
	WorkloadSeedTable Workload = "seed_table"
)

// workloadFor infers the workload from the batch size.
func workloadFor(texts int) Workload {
	if texts > 1 {
		return WorkloadSeedTable
	}
	return WorkloadMessage
}

// Reasons a returned vector is counted as invalid.
const (
	invalidNonFinite = "non_finite"
	invalidDimension = "dimension"
)

// Metrics holds the embedding instruments.
type Metrics struct {
	meter      metric.Meter
	logger     *zap.Logger
	duration   metric.Float64Histogram
	seedTexts  metric.Int64Histogram
	errors     metric.Int64Counter
	invalidVec metric.Int64Counter
}

// NewMetrics creates embedding metrics on the global meter provider.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{
		meter:  otel.Meter(embeddingsInstrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	// Message embeds sit on the request path, so the low buckets are fine grained.
	m.duration, err = m.meter.Float64Histogram(
		"moodwall.embedding.duration_seconds",
		metric.WithDescription("Embedding latency in seconds, by model and workload"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.25, 0.5, 1, 5, 30),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.seedTexts, err = m.meter.Int64Histogram(
		"moodwall.embedding.seed_table_texts",
		metric.WithDescription("Reference phrases embedded per intent table build"),
		metric.WithUnit("{text}"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000),
	)
	if err != nil {
		m.logger.Warn("failed to create seed table histogram", zap.Error(err))
	}

	m.errors, err = m.meter.Int64Counter(
		"moodwall.embedding.errors_total",
		metric.WithDescription("Failed embedding calls by model and workload"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.logger.Warn("failed to create errors counter", zap.Error(err))
	}

	m.invalidVec, err = m.meter.Int64Counter(
		"moodwall.embedding.invalid_vectors_total",
		metric.WithDescription("Vectors with NaN or Inf components or the wrong length, by reason"),
		metric.WithUnit("{vector}"),
	)
	if err != nil {
		m.logger.Warn("failed to create invalid vectors counter", zap.Error(err))
	}
}

// RecordEmbed records one provider call covering texts inputs.
func (m *Metrics) RecordEmbed(ctx context.Context, model string, texts int, duration time.Duration, err error) {
	workload := workloadFor(texts)
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("workload", string(workload)),
	)

	if m.duration != nil {
		m.duration.Record(ctx, duration.Seconds(), attrs)
	}

	if workload == WorkloadSeedTable && m.seedTexts != nil {
		m.seedTexts.Record(ctx, int64(texts), metric.WithAttributes(attribute.String("model", model)))
	}

	if err != nil && m.errors != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}

// RecordVectors counts returned vectors that no classifier can score.
// A dimension of zero or less skips the length check.
func (m *Metrics) RecordVectors(ctx context.Context, model string, dimension int, vecs [][]float32) {
	if m.invalidVec == nil {
		return
	}
	var nonFinite, wrongLen int64
	for _, v := range vecs {
		if dimension > 0 && len(v) != dimension {
			wrongLen++
			continue
		}
		for _, x := range v {
			if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
				nonFinite++
				break
			}
		}
	}
	if nonFinite > 0 {
		m.invalidVec.Add(ctx, nonFinite, metric.WithAttributes(
			attribute.String("model", model),
			attribute.String("reason", invalidNonFinite),
		))
	}
	if wrongLen > 0 {
		m.invalidVec.Add(ctx, wrongLen, metric.WithAttributes(
			attribute.String("model", model),
			attribute.String("reason", invalidDimension),
		))
	}
	if nonFinite+wrongLen > 0 {
		m.logger.Warn("provider returned invalid vectors",
			zap.String("model", model),
			zap.Int64("non_finite", nonFinite),
			zap.Int64("wrong_dimension", wrongLen),
		)
	}
}
