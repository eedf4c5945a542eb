package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/moodwall/internal/analyzer"
	"github.com/fyrsmithlabs/moodwall/internal/intent"
)

// statusFor maps domain errors to a status code and client message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, analyzer.ErrEmptyText):
		return http.StatusBadRequest, "Content is required"
	case errors.Is(err, analyzer.ErrTextTooLong):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, intent.ErrNonFiniteEmbedding):
		return http.StatusBadGateway, "embedding provider returned an invalid vector"
	case errors.Is(err, intent.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, "embedding provider unavailable"
	case errors.Is(err, intent.ErrDimensionMismatch),
		errors.Is(err, intent.ErrEmptyReferenceTable),
		errors.Is(err, intent.ErrEmptyEmbedding):
		return http.StatusInternalServerError, "intention classifier misconfigured"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// errorHandler writes every error as {"error": message}.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code int
		msg  string
		he   *echo.HTTPError
	)
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
		if he.Internal != nil {
			err = he.Internal
		}
	} else {
		code, msg = statusFor(err)
	}

	ctx := c.Request().Context()
	if code >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", zap.Int("status", code), zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, ErrorResponse{Error: msg})
	}
	if err != nil {
		s.logger.Warn(ctx, "failed to write error response", zap.Error(err))
	}
}
