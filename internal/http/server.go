// Package http provides the moodwall HTTP API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/moodwall/internal/analyzer"
	"github.com/fyrsmithlabs/moodwall/internal/board"
	"github.com/fyrsmithlabs/moodwall/internal/intent"
	"github.com/fyrsmithlabs/moodwall/internal/logging"
)

// Analyzer analyzes posted text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (analyzer.Analysis, error)
}

// Embedder embeds a similarity query.
type Embedder interface {
	Embed(ctx context.Context, text string) (intent.Embedding, error)
}

// Subscriber streams board events.
type Subscriber interface {
	Subscribe(ctx context.Context, handler func(board.Event)) (stop func(), err error)
}

// Config holds HTTP server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigins []string
	// RateLimit is write requests per second per client IP. 0 disables it.
	RateLimit float64
	RateBurst int
	// SimilarLimit caps k on the similar endpoint.
	SimilarLimit int
	// Heartbeat is the SSE keep-alive interval. Defaults to 30s.
	Heartbeat time.Duration
}

// Deps are the collaborators the handlers call.
type Deps struct {
	Analyzer Analyzer
	Board    *board.Store
	// Embedder serves the similar endpoint; optional.
	Embedder Embedder
	// Events serves the stream endpoint; optional.
	Events Subscriber
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	Meter    metric.Meter
	Logger   *logging.Logger
}

// Server provides HTTP endpoints for moodwall.
type Server struct {
	echo     *echo.Echo
	analyzer Analyzer
	board    *board.Store
	embedder Embedder
	events   Subscriber
	logger   *logging.Logger
	config   *Config
}

// NewServer creates a new HTTP server.
func NewServer(deps Deps, cfg *Config) (*Server, error) {
	if deps.Analyzer == nil {
		return nil, fmt.Errorf("analyzer cannot be nil")
	}
	if deps.Board == nil {
		return nil, fmt.Errorf("board cannot be nil")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:         "localhost",
			Port:         8080,
			CORSOrigins:  []string{"*"},
			SimilarLimit: 20,
		}
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 30 * time.Second
	}
	if cfg.SimilarLimit <= 0 {
		cfg.SimilarLimit = 20
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		analyzer: deps.Analyzer,
		board:    deps.Board,
		embedder: deps.Embedder,
		events:   deps.Events,
		logger:   deps.Logger.Named("http"),
		config:   cfg,
	}
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(requestID())
	e.Use(requestLog(s.logger))
	e.Use(NewHTTPMetrics(deps.Meter, s.logger.Underlying()).MetricsMiddleware())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(corsMiddleware(cfg.CORSOrigins))
	}

	var limit []echo.MiddlewareFunc
	if cfg.RateLimit > 0 {
		limit = append(limit, newClientLimiter(cfg.RateLimit, cfg.RateBurst).middleware())
	}

	s.registerRoutes(deps.Gatherer, limit)
	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes(gatherer prometheus.Gatherer, limit []echo.MiddlewareFunc) {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/intentions", s.handleIntentions)
	v1.POST("/classify", s.handleClassify, limit...)
	v1.GET("/messages", s.handleListMessages)
	v1.POST("/messages", s.handlePostMessage, limit...)
	v1.DELETE("/messages", s.handleClearMessages, limit...)
	v1.GET("/messages/similar", s.handleSimilar)
	v1.GET("/messages/stream", s.handleStream)
}

// ServeHTTP lets the server be mounted or tested without listening.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleIntentions(c echo.Context) error {
	labels := intent.Labels()
	resp := IntentionsResponse{Intentions: make([]Intention, len(labels))}
	for i, l := range labels {
		resp.Intentions[i] = Intention{Label: l, Emoji: l.Emoji()}
	}
	return c.JSON(http.StatusOK, resp)
}

// handleClassify analyzes text without storing it.
func (s *Server) handleClassify(c echo.Context) error {
	var req ClassifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}

	a, err := s.analyzer.Analyze(c.Request().Context(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ClassifyResponse{
		Text:      a.Text,
		Content:   a.Content,
		Emoji:     a.Emoji(),
		Toxic:     a.Toxic(),
		Toxicity:  a.Toxicity,
		Intention: a.Intention,
	})
}

func (s *Server) handleListMessages(c echo.Context) error {
	return c.JSON(http.StatusOK, MessagesResponse{Messages: s.board.List()})
}

// handlePostMessage analyzes and stores a message.
func (s *Server) handlePostMessage(c echo.Context) error {
	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}

	ctx := c.Request().Context()
	a, err := s.analyzer.Analyze(ctx, req.Content)
	if err != nil {
		return err
	}

	msg, err := s.board.Add(ctx, board.FromAnalysis(a), a.Embedding)
	if err != nil {
		return err
	}
	s.logger.Debug(ctx, "message posted",
		zap.String("id", msg.ID),
		zap.Bool("toxic", msg.Toxic),
		zap.String("intention", string(msg.Intention)))

	return c.JSON(http.StatusCreated, PostMessageResponse{
		Message: "Message added successfully",
		Data:    msg,
	})
}

func (s *Server) handleClearMessages(c echo.Context) error {
	n, err := s.board.Clear(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StatusMessage{Message: "All messages cleared", Cleared: n})
}

// handleSimilar embeds ?q= and returns the k nearest stored messages.
func (s *Server) handleSimilar(c echo.Context) error {
	if s.embedder == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "similarity search unavailable")
	}

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	k := 5
	if raw := c.QueryParam("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "k must be a positive integer")
		}
		k = n
	}
	if k > s.config.SimilarLimit {
		k = s.config.SimilarLimit
	}

	ctx := c.Request().Context()
	emb, err := s.embedder.Embed(ctx, q)
	if err != nil {
		return err
	}
	matches, err := s.board.Similar(ctx, emb, k)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SimilarResponse{Query: q, Matches: matches})
}

// Start starts the HTTP server. It returns nil after Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
