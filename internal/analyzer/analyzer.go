// Package analyzer turns raw board text into tagged content: a toxicity
// check first, then intention classification for clean text.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/moodwall/internal/intent"
	"github.com/fyrsmithlabs/moodwall/internal/logging"
	"github.com/fyrsmithlabs/moodwall/internal/toxicity"
)

const instrumentationName = "github.com/fyrsmithlabs/moodwall/internal/analyzer"

var (
	// ErrEmptyText is returned for text that is empty after trimming.
	ErrEmptyText = errors.New("content is required")

	// ErrTextTooLong is returned for text over the configured rune limit.
	ErrTextTooLong = errors.New("content too long")
)

// Classifier embeds text and classifies an embedding. *intent.Classifier
// satisfies it.
type Classifier interface {
	Embed(ctx context.Context, text string) (intent.Embedding, error)
	ClassifyEmbedding(text string, emb intent.Embedding) (intent.Result, error)
}

// ToxicityChecker scores text for toxicity. *toxicity.Client satisfies it.
type ToxicityChecker interface {
	Check(ctx context.Context, text string) (toxicity.Verdict, error)
}

// Options configures an Analyzer.
type Options struct {
	Classifier Classifier
	// Toxicity is optional; without it every message is treated as clean.
	Toxicity ToxicityChecker
	// MaxLength limits text length in runes. 0 means no limit.
	MaxLength int
	Logger    *logging.Logger
	Meter     metric.Meter
	Tracer    trace.Tracer
}

// Analysis is the outcome for one piece of text.
type Analysis struct {
	// Text is the trimmed input.
	Text string `json:"text"`
	// Content is what the board displays: emoji, separator, then the text
	// (masked when toxic).
	Content   string            `json:"content"`
	Toxicity  *toxicity.Verdict `json:"toxicity,omitempty"`
	Intention *intent.Result    `json:"intention,omitempty"`
	// Embedding is nil for toxic text, which is never classified.
	Embedding intent.Embedding `json:"-"`
}

// Toxic reports whether the text matched a toxicity category.
func (a Analysis) Toxic() bool {
	return a.Toxicity != nil && a.Toxicity.Toxic
}

// Emoji returns the tag shown in front of the content.
func (a Analysis) Emoji() string {
	if a.Toxic() {
		return a.Toxicity.Emoji()
	}
	if a.Intention != nil {
		return a.Intention.Emoji()
	}
	return ""
}

// Analyzer runs the analysis pipeline. It is safe for concurrent use.
type Analyzer struct {
	classifier Classifier
	toxicity   ToxicityChecker
	maxLength  int
	logger     *logging.Logger
	tracer     trace.Tracer

	duration metric.Float64Histogram
	analyzed metric.Int64Counter
}

// New creates an Analyzer. A classifier is required.
func New(opts Options) (*Analyzer, error) {
	if opts.Classifier == nil {
		return nil, fmt.Errorf("analyzer: %w", intent.ErrProviderUnavailable)
	}
	if opts.MaxLength < 0 {
		return nil, fmt.Errorf("analyzer: max length %d cannot be negative", opts.MaxLength)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Meter == nil {
		opts.Meter = otel.Meter(instrumentationName)
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(instrumentationName)
	}

	a := &Analyzer{
		classifier: opts.Classifier,
		toxicity:   opts.Toxicity,
		maxLength:  opts.MaxLength,
		logger:     opts.Logger.Named("analyzer"),
		tracer:     opts.Tracer,
	}

	var err error
	a.duration, err = opts.Meter.Float64Histogram(
		"moodwall.analysis.duration_seconds",
		metric.WithDescription("Time to analyze one message"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	a.analyzed, err = opts.Meter.Int64Counter(
		"moodwall.analysis.messages_total",
		metric.WithDescription("Analyzed messages by outcome"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating analyzed counter: %w", err)
	}
	return a, nil
}

// Analyze validates text, checks it for toxicity and, when clean,
// classifies its intention. A toxicity service failure is logged and the
// text treated as clean. Classifier errors are returned.
func (a *Analyzer) Analyze(ctx context.Context, text string) (Analysis, error) {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "analyzer.Analyze")
	defer span.End()

	analysis, err := a.analyze(ctx, text)

	outcome := outcomeOf(analysis, err)
	attrs := []attribute.KeyValue{attribute.String("outcome", outcome)}
	switch {
	case analysis.Toxic():
		attrs = append(attrs, attribute.String("category", string(analysis.Toxicity.Category)))
	case analysis.Intention != nil:
		attrs = append(attrs, attribute.String("intention", string(analysis.Intention.Label)))
	}
	span.SetAttributes(attrs...)
	a.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("outcome", outcome)))
	a.analyzed.Add(ctx, 1, metric.WithAttributes(attrs...))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Analysis{}, err
	}
	return analysis, nil
}

func (a *Analyzer) analyze(ctx context.Context, text string) (Analysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Analysis{}, ErrEmptyText
	}
	if n := utf8.RuneCountInString(text); a.maxLength > 0 && n > a.maxLength {
		return Analysis{}, fmt.Errorf("%w: %d characters (max %d)", ErrTextTooLong, n, a.maxLength)
	}

	analysis := Analysis{Text: text}

	if a.toxicity != nil {
		verdict, err := a.toxicity.Check(ctx, text)
		switch {
		case err != nil && ctx.Err() != nil:
			return Analysis{}, ctx.Err()
		case err != nil:
			a.logger.Warn(ctx, "toxicity check failed, treating message as clean", zap.Error(err))
		default:
			analysis.Toxicity = &verdict
		}
		if analysis.Toxic() {
			analysis.Content = analysis.Toxicity.Emoji() + " - " + Mask(text)
			a.logger.Debug(ctx, "message flagged toxic",
				zap.String("category", string(verdict.Category)))
			return analysis, nil
		}
	}

	emb, err := a.classifier.Embed(ctx, text)
	if err != nil {
		return Analysis{}, err
	}
	result, err := a.classifier.ClassifyEmbedding(text, emb)
	if err != nil {
		return Analysis{}, err
	}

	analysis.Intention = &result
	analysis.Embedding = emb
	analysis.Content = result.Emoji() + " - " + text
	a.logger.Debug(ctx, "message classified",
		zap.String("intention", string(result.Label)),
		zap.Float64("score", result.Score))
	return analysis, nil
}

// Mask replaces every rune except line terminators with '*'.
func Mask(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case '\n', '\r', '\u2028', '\u2029':
			b.WriteRune(r)
		default:
			b.WriteByte('*')
		}
	}
	return b.String()
}

func outcomeOf(analysis Analysis, err error) string {
	switch {
	case errors.Is(err, ErrEmptyText), errors.Is(err, ErrTextTooLong):
		return "rejected"
	case err != nil:
		return "error"
	case analysis.Toxic():
		return "toxic"
	default:
		return "clean"
	}
}
