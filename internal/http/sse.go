package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/moodwall/internal/board"
)

// handleStream streams board events as Server-Sent Events until the client
// disconnects.
//
//	GET /api/v1/messages/stream
//
//	event: created
//	data: {"type":"messages.created","message":{...},"at":"..."}
//
//	event: cleared
//	data: {"type":"messages.cleared","cleared":3,"at":"..."}
func (s *Server) handleStream(c echo.Context) error {
	if s.events == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "event stream unavailable")
	}

	ctx := c.Request().Context()
	events := make(chan board.Event, 16)
	stop, err := s.events.Subscribe(ctx, func(e board.Event) {
		select {
		case events <- e:
		default:
			s.logger.Warn(ctx, "slow stream client, dropping board event", zap.String("type", string(e.Type)))
		}
	})
	if err != nil {
		return err
	}
	defer stop()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	w.Flush()

	ticker := time.NewTicker(s.config.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case e := <-events:
			data, err := json.Marshal(e)
			if err != nil {
				s.logger.Warn(ctx, "failed to encode board event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\n", strings.TrimPrefix(string(e.Type), "messages."))
			fmt.Fprintf(w, "data: %s\n\n", data)
			w.Flush()

		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			w.Flush()

		case <-ctx.Done():
			return nil
		}
	}
}
