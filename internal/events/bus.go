// Package events carries board events over NATS.
//
// Subjects are <prefix>.messages.created and <prefix>.messages.cleared,
// each carrying a JSON encoded board.Event.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/moodwall/internal/board"
	"github.com/fyrsmithlabs/moodwall/internal/logging"
)

// ErrClosed is returned when publishing on a closed connection.
var ErrClosed = errors.New("event bus closed")

// Bus publishes and subscribes to board events.
type Bus struct {
	conn   *nats.Conn
	prefix string
	logger *logging.Logger
	owned  bool
}

// Connect dials NATS at url.
func Connect(url, prefix string, logger *logging.Logger) (*Bus, error) {
	nc, err := nats.Connect(url,
		nats.Name("moodwall"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	bus := NewBus(nc, prefix, logger)
	bus.owned = true
	return bus, nil
}

// NewBus wraps an existing connection. Close does not close nc.
func NewBus(nc *nats.Conn, prefix string, logger *logging.Logger) *Bus {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Bus{conn: nc, prefix: prefix, logger: logger.Named("events")}
}

// Subject returns the subject an event type is published on.
func (b *Bus) Subject(t board.EventType) string {
	return b.prefix + "." + string(t)
}

// Publish sends an event. It implements board.Publisher.
func (b *Bus) Publish(ctx context.Context, event board.Event) error {
	if b.conn.IsClosed() {
		return ErrClosed
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	if err := b.conn.Publish(b.Subject(event.Type), data); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	b.logger.Debug(ctx, "published board event", zap.String("type", string(event.Type)))
	return nil
}

// Subscribe calls handler for every board event until ctx is done or the
// returned stop function is called. Undecodable messages are logged and
// skipped. The handler runs on the NATS delivery goroutine and must not
// block for long.
func (b *Bus) Subscribe(ctx context.Context, handler func(board.Event)) (stop func(), err error) {
	sub, err := b.conn.Subscribe(b.prefix+".messages.*", func(msg *nats.Msg) {
		var event board.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			b.logger.Warn(ctx, "dropping undecodable board event",
				zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		handler(event)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	// Make sure the subscription is registered before returning so events
	// published right after Subscribe are delivered.
	if err := b.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("subscribe flush: %w", err)
	}

	release := context.AfterFunc(ctx, func() { _ = sub.Unsubscribe() })
	return func() {
		release()
		_ = sub.Unsubscribe()
	}, nil
}

// Connected reports whether the NATS connection is up.
func (b *Bus) Connected() bool {
	return b.conn.IsConnected()
}

// Close drains the connection if the bus opened it.
func (b *Bus) Close() error {
	if !b.owned {
		return nil
	}
	if err := b.conn.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return err
	}
	return nil
}
