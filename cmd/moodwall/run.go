package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/moodwall/internal/config"
	httpserver "github.com/fyrsmithlabs/moodwall/internal/http"
	"github.com/fyrsmithlabs/moodwall/internal/logging"
	"github.com/fyrsmithlabs/moodwall/internal/telemetry"
)

// run starts the daemon and blocks until ctx is cancelled.
//
//  1. Loads and validates configuration
//  2. Initializes telemetry and logger
//  3. Creates the embedding provider and reference table
//  4. Starts or connects to NATS
//  5. Wires analyzer, board and HTTP server
//  6. Shuts everything down when ctx is cancelled
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	tel, err := telemetry.New(ctx, &cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.Shutdown.Timeout)
		defer cancel()
		_ = tel.Shutdown(sctx)
	}()

	logger, err := logging.NewLogger(&cfg.Logging, tel.LoggerProvider())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info(ctx, "starting moodwall",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("embeddings_provider", cfg.Embeddings.Provider),
		zap.Bool("toxicity_enabled", cfg.Toxicity.Enabled()),
		zap.Bool("events_enabled", cfg.NATS.Enabled()),
		zap.Bool("telemetry_enabled", tel.IsEnabled()))
	if h := tel.Health(); h.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.Strings("problems", h.Problems))
	}

	deps, err := initDependencies(ctx, cfg, tel, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	srv, err := httpserver.NewServer(httpserver.Deps{
		Analyzer: deps.analyzer,
		Board:    deps.board,
		Embedder: deps.classifier,
		Events:   deps.subscriber(),
		Gatherer: deps.registry,
		Meter:    tel.Meter("github.com/fyrsmithlabs/moodwall/internal/http"),
		Logger:   logger,
	}, &httpserver.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		CORSOrigins:  cfg.Server.CORSOrigins,
		RateLimit:    cfg.Server.RateLimit,
		RateBurst:    cfg.Server.RateBurst,
		SimilarLimit: cfg.Board.SimilarLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errCh; err != nil {
		return err
	}
	return nil
}
