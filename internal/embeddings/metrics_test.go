package embeddings

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

// stubProvider returns fixed vectors or a fixed error.
type stubProvider struct {
	vec []float32
	dim int
	err error
}

func (s *stubProvider) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

func (s *stubProvider) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return s.vec, s.err
}

func (s *stubProvider) Dimension() int {
	if s.dim > 0 {
		return s.dim
	}
	return len(s.vec)
}

func (s *stubProvider) Close() error { return nil }

func testMetrics(t *testing.T) (*Metrics, *metric.ManualReader) {
	t.Helper()
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	m := &Metrics{
		meter:  mp.Meter(embeddingsInstrumentationName),
		logger: zap.NewNop(),
	}
	m.init()
	return m, reader
}

func collect(t *testing.T, reader *metric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestInstrument_RecordsCalls(t *testing.T) {
	m, reader := testMetrics(t)
	ctx := context.Background()

	ok := Instrument(&stubProvider{vec: []float32{1, 2}}, "BAAI/bge-small-en-v1.5", m)
	_, err := ok.EmbedDocuments(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	_, err = ok.EmbedDocuments(ctx, []string{"hello"})
	require.NoError(t, err)
	_, err = ok.EmbedQuery(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, 2, ok.Dimension())

	failing := Instrument(&stubProvider{err: errors.New("boom")}, "BAAI/bge-small-en-v1.5", m)
	_, err = failing.EmbedDocuments(ctx, []string{"a"})
	require.Error(t, err)

	got := collect(t, reader)

	hist, isHist := got["moodwall.embedding.duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, isHist)
	calls := make(map[string]uint64)
	for _, dp := range hist.DataPoints {
		calls[attr(dp.Attributes, "workload")] += dp.Count
	}
	assert.Equal(t, map[string]uint64{"message": 3, "seed_table": 1}, calls)

	seed, isSeed := got["moodwall.embedding.seed_table_texts"].Data.(metricdata.Histogram[int64])
	require.True(t, isSeed)
	require.Len(t, seed.DataPoints, 1, "single message embeds stay out of the seed histogram")
	assert.Equal(t, uint64(1), seed.DataPoints[0].Count)
	assert.Equal(t, int64(3), seed.DataPoints[0].Sum)

	errs, isSum := got["moodwall.embedding.errors_total"].Data.(metricdata.Sum[int64])
	require.True(t, isSum)
	require.Len(t, errs.DataPoints, 1)
	assert.Equal(t, int64(1), errs.DataPoints[0].Value)
	assert.Equal(t, "message", attr(errs.DataPoints[0].Attributes, "workload"))

	_, hasInvalid := got["moodwall.embedding.invalid_vectors_total"]
	assert.False(t, hasInvalid, "clean vectors are not counted")
}

func TestInstrument_InvalidVectors(t *testing.T) {
	m, reader := testMetrics(t)
	ctx := context.Background()

	nan := Instrument(&stubProvider{vec: []float32{float32(math.NaN()), 1}}, "m", m)
	_, err := nan.EmbedDocuments(ctx, []string{"a", "b"})
	require.NoError(t, err)
	_, err = nan.EmbedQuery(ctx, "q")
	require.NoError(t, err)

	short := Instrument(&stubProvider{vec: []float32{1, 2}, dim: 384}, "m", m)
	_, err = short.EmbedDocuments(ctx, []string{"a"})
	require.NoError(t, err)

	got := collect(t, reader)
	sum, isSum := got["moodwall.embedding.invalid_vectors_total"].Data.(metricdata.Sum[int64])
	require.True(t, isSum)

	byReason := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		byReason[attr(dp.Attributes, "reason")] += dp.Value
	}
	assert.Equal(t, map[string]int64{"non_finite": 3, "dimension": 1}, byReason)
}

func TestWorkloadFor(t *testing.T) {
	assert.Equal(t, WorkloadMessage, workloadFor(0))
	assert.Equal(t, WorkloadMessage, workloadFor(1))
	assert.Equal(t, WorkloadSeedTable, workloadFor(2))
	assert.Equal(t, WorkloadSeedTable, workloadFor(40))
}

func attr(set attribute.Set, key string) string {
	v, _ := set.Value(attribute.Key(key))
	return v.AsString()
}
