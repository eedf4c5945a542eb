package main

import (
	"context"
	"fmt"
	"os"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/moodwall/internal/analyzer"
	"github.com/fyrsmithlabs/moodwall/internal/board"
	"github.com/fyrsmithlabs/moodwall/internal/config"
	"github.com/fyrsmithlabs/moodwall/internal/embeddings"
	"github.com/fyrsmithlabs/moodwall/internal/events"
	"github.com/fyrsmithlabs/moodwall/internal/httpclient"
	httpserver "github.com/fyrsmithlabs/moodwall/internal/http"
	"github.com/fyrsmithlabs/moodwall/internal/intent"
	"github.com/fyrsmithlabs/moodwall/internal/logging"
	"github.com/fyrsmithlabs/moodwall/internal/telemetry"
	"github.com/fyrsmithlabs/moodwall/internal/toxicity"
)

// dependencies holds everything the HTTP server needs, plus what must be
// closed on shutdown.
type dependencies struct {
	provider   embeddings.Provider
	classifier *intent.Classifier
	analyzer   *analyzer.Analyzer
	board      *board.Store
	registry   *prometheus.Registry
	nats       *natsserver.Server
	bus        *events.Bus
	logger     *logging.Logger
}

// subscriber returns the event stream source, or nil when events are off.
func (d *dependencies) subscriber() httpserver.Subscriber {
	if d.bus == nil {
		return nil
	}
	return d.bus
}

// Close releases all infrastructure resources.
func (d *dependencies) Close() {
	ctx := context.Background()
	if d.bus != nil {
		if err := d.bus.Close(); err != nil {
			d.logger.Warn(ctx, "failed to drain NATS connection", zap.Error(err))
		}
	}
	if d.nats != nil {
		d.nats.Shutdown()
		d.nats.WaitForShutdown()
	}
	if d.provider != nil {
		if err := d.provider.Close(); err != nil {
			d.logger.Warn(ctx, "failed to close embedding provider", zap.Error(err))
		}
	}
}

// initDependencies builds the object graph. On error everything created so
// far is closed.
func initDependencies(ctx context.Context, cfg *config.Config, tel *telemetry.Telemetry, logger *logging.Logger) (_ *dependencies, err error) {
	d := &dependencies{logger: logger}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	d.provider, err = newProvider(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "embedding provider initialized",
		zap.String("provider", cfg.Embeddings.Provider),
		zap.String("model", cfg.Embeddings.Model),
		zap.Int("dimension", d.provider.Dimension()))

	table, err := loadOrBuildTable(ctx, cfg, d.provider, logger)
	if err != nil {
		return nil, err
	}

	d.classifier, err = intent.NewClassifier(d.provider, table)
	if err != nil {
		return nil, err
	}

	opts := analyzer.Options{
		Classifier: d.classifier,
		MaxLength:  cfg.Board.MaxContentLength,
		Logger:     logger,
		Meter:      tel.Meter("github.com/fyrsmithlabs/moodwall/internal/analyzer"),
		Tracer:     tel.Tracer("github.com/fyrsmithlabs/moodwall/internal/analyzer"),
	}
	if cfg.Toxicity.Enabled() {
		httpCfg := httpclient.DefaultConfig()
		httpCfg.Timeout = cfg.Toxicity.Timeout.Duration()
		checker, err := toxicity.NewClient(toxicity.Config{
			BaseURL:   cfg.Toxicity.BaseURL,
			Threshold: cfg.Toxicity.Threshold,
		}, httpclient.New(httpCfg, logger.Underlying()))
		if err != nil {
			return nil, fmt.Errorf("toxicity client: %w", err)
		}
		opts.Toxicity = checker
		logger.Info(ctx, "toxicity check enabled", zap.String("base_url", cfg.Toxicity.BaseURL))
	}
	d.analyzer, err = analyzer.New(opts)
	if err != nil {
		return nil, err
	}

	if err := d.initEvents(ctx, cfg); err != nil {
		return nil, err
	}

	d.registry = prometheus.NewRegistry()
	d.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	idx, err := board.NewIndex()
	if err != nil {
		return nil, err
	}
	boardOpts := board.Options{
		MaxMessages: cfg.Board.MaxMessages,
		Index:       idx,
		Metrics:     board.NewMetrics(d.registry),
		Logger:      logger,
	}
	if d.bus != nil {
		boardOpts.Publisher = d.bus
	}
	d.board = board.NewStore(boardOpts)

	return d, nil
}

// initEvents starts the embedded broker when configured and connects.
func (d *dependencies) initEvents(ctx context.Context, cfg *config.Config) error {
	if !cfg.NATS.Enabled() {
		d.logger.Info(ctx, "board events disabled")
		return nil
	}

	url := cfg.NATS.URL
	if cfg.NATS.Embedded {
		srv, err := events.StartEmbedded(events.EmbeddedOptions{
			Host: cfg.NATS.Host,
			Port: cfg.NATS.Port,
		})
		if err != nil {
			return err
		}
		d.nats = srv
		url = srv.ClientURL()
		d.logger.Info(ctx, "embedded NATS server started", zap.String("url", url))
	}

	bus, err := events.Connect(url, cfg.NATS.SubjectPrefix, d.logger)
	if err != nil {
		return err
	}
	d.bus = bus
	d.logger.Info(ctx, "connected to NATS",
		zap.String("url", url),
		zap.String("subject_prefix", cfg.NATS.SubjectPrefix))
	return nil
}

func newProvider(cfg *config.Config, logger *logging.Logger) (embeddings.Provider, error) {
	p, err := embeddings.NewProvider(embeddings.ProviderConfig{
		Provider:  cfg.Embeddings.Provider,
		Model:     cfg.Embeddings.Model,
		BaseURL:   cfg.Embeddings.BaseURL,
		APIKey:    cfg.Embeddings.APIKey.Value(),
		CacheDir:  cfg.Embeddings.CacheDir,
		MaxLength: cfg.Embeddings.MaxLength,
		Timeout:   cfg.Embeddings.Timeout.Duration(),
	}, logger.Underlying())
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	return p, nil
}

// loadOrBuildTable reads intent.references_file, or embeds the default
// seeds when it is unset.
func loadOrBuildTable(ctx context.Context, cfg *config.Config, provider embeddings.Provider, logger *logging.Logger) (intent.Table, error) {
	if path := cfg.Intent.ReferencesFile; path != "" {
		f, err := openTableFile(path)
		if err != nil {
			return intent.Table{}, err
		}
		defer f.Close()

		table, model, err := intent.LoadTable(f)
		if err != nil {
			return intent.Table{}, fmt.Errorf("load reference table %s: %w", path, err)
		}
		if err := checkTableDimension(ctx, provider, table); err != nil {
			return intent.Table{}, fmt.Errorf("reference table %s: %w", path, err)
		}
		if model != "" && model != cfg.Embeddings.Model {
			logger.Warn(ctx, "reference table was built with a different model",
				zap.String("table_model", model),
				zap.String("embeddings_model", cfg.Embeddings.Model))
		}
		logger.Info(ctx, "reference table loaded", zap.String("path", path), zap.Int("labels", table.Len()))
		return table, nil
	}

	bctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	table, err := intent.BuildTable(bctx, provider, intent.DefaultSeeds())
	if err != nil {
		return intent.Table{}, fmt.Errorf("build reference table: %w", err)
	}
	logger.Info(ctx, "reference table built from default seeds", zap.Int("labels", table.Len()))
	return table, nil
}

// checkTableDimension embeds a sample phrase and compares its length with a
// table loaded from disk, which may come from a different model.
func checkTableDimension(ctx context.Context, provider embeddings.Provider, table intent.Table) error {
	vecs, err := provider.EmbedDocuments(ctx, []string{"hello"})
	if err != nil {
		return fmt.Errorf("%w: %w", intent.ErrProviderUnavailable, err)
	}
	if len(vecs) != 1 {
		return fmt.Errorf("%w: sample embed returned %d vectors", intent.ErrProviderUnavailable, len(vecs))
	}
	if got := len(vecs[0]); got != table.Dimension() {
		return &intent.DimensionMismatchError{Index: -1, Want: table.Dimension(), Got: got}
	}
	return nil
}

func openTableFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference table: %w", err)
	}
	return f, nil
}

// startupTimeout bounds building the reference table at startup.
const startupTimeout = 2 * time.Minute
