// Package httpclient builds the outbound HTTP client shared by the model
// service integrations: retries with backoff, OTel transport spans and zap
// logging of retry attempts.
package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Config controls retry behaviour.
type Config struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
}

// DefaultConfig returns three retries, waits capped at 5s and a 30s timeout.
func DefaultConfig() Config {
	return Config{
		RetryMax:     3,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		Timeout:      30 * time.Second,
	}
}

// New returns a standard *http.Client backed by a retrying transport.
// A nil logger disables retry logging.
func New(cfg Config, logger *zap.Logger) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	rc.CheckRetry = skipServerErrorPolicy(retryablehttp.ErrorPropagatedRetryPolicy)
	if logger != nil {
		rc.Logger = leveledLogger{logger.Sugar()}
	} else {
		rc.Logger = nil
	}

	std := rc.StandardClient()
	std.Timeout = cfg.Timeout
	std.Transport = otelhttp.NewTransport(std.Transport)
	return std
}

// skipServerErrorPolicy stops retrying on cancellation and on HTTP 500,
// which model servers return for inputs they will never accept.
func skipServerErrorPolicy(policy retryablehttp.CheckRetry) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if resp != nil && resp.StatusCode == http.StatusInternalServerError {
			return false, err
		}
		return policy(ctx, resp, err)
	}
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
