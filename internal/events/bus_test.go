package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/moodwall/internal/board"
	"github.com/fyrsmithlabs/moodwall/internal/intent"
	"github.com/fyrsmithlabs/moodwall/internal/logging"
)

func startTestServer(t *testing.T) string {
	t.Helper()
	server, err := StartEmbedded(EmbeddedOptions{Host: "127.0.0.1", Port: -1})
	require.NoError(t, err)
	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})
	return server.ClientURL()
}

type collector struct {
	mu     sync.Mutex
	events []board.Event
	got    chan struct{}
}

func newCollector() *collector {
	return &collector{got: make(chan struct{}, 16)}
}

func (c *collector) handle(e board.Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
	c.got <- struct{}{}
}

func (c *collector) wait(t *testing.T, n int) []board.Event {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-c.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d of %d", i+1, n)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]board.Event(nil), c.events...)
}

func TestBus_PublishSubscribe(t *testing.T) {
	url := startTestServer(t)
	bus, err := Connect(url, "moodwall", nil)
	require.NoError(t, err)
	defer bus.Close()
	assert.True(t, bus.Connected())

	c := newCollector()
	stop, err := bus.Subscribe(context.Background(), c.handle)
	require.NoError(t, err)
	defer stop()

	msg := board.Message{ID: "m1", Content: "🎉 - yay", Intention: intent.Celebration}
	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, board.Event{Type: board.EventCreated, Message: &msg, At: time.Now()}))
	require.NoError(t, bus.Publish(ctx, board.Event{Type: board.EventCleared, Cleared: 1, At: time.Now()}))

	events := c.wait(t, 2)
	require.Len(t, events, 2)
	assert.Equal(t, board.EventCreated, events[0].Type)
	require.NotNil(t, events[0].Message)
	assert.Equal(t, "m1", events[0].Message.ID)
	assert.Equal(t, intent.Celebration, events[0].Message.Intention)
	assert.Equal(t, board.EventCleared, events[1].Type)
	assert.Equal(t, 1, events[1].Cleared)
}

func TestBus_Subjects(t *testing.T) {
	url := startTestServer(t)
	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()

	bus := NewBus(nc, "wall", nil)
	assert.Equal(t, "wall.messages.created", bus.Subject(board.EventCreated))

	sub, err := nc.SubscribeSync("wall.messages.cleared")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	require.NoError(t, bus.Publish(context.Background(), board.Event{Type: board.EventCleared, Cleared: 3}))
	raw, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"messages.cleared","cleared":3,"at":"0001-01-01T00:00:00Z"}`, string(raw.Data))

	require.NoError(t, bus.Close(), "closing a borrowed connection is a no-op")
	assert.False(t, nc.IsClosed())
}

func TestBus_SubscribeStopsWithContext(t *testing.T) {
	url := startTestServer(t)
	bus, err := Connect(url, "moodwall", nil)
	require.NoError(t, err)
	defer bus.Close()

	c := newCollector()
	ctx, cancel := context.WithCancel(context.Background())
	_, err = bus.Subscribe(ctx, c.handle)
	require.NoError(t, err)
	cancel()

	// AfterFunc runs asynchronously; give it a moment.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, bus.Publish(context.Background(), board.Event{Type: board.EventCleared}))
	require.NoError(t, bus.conn.Flush())

	select {
	case <-c.got:
		t.Fatal("event delivered after context cancellation")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestBus_UndecodableEventSkipped(t *testing.T) {
	url := startTestServer(t)
	logs := logging.NewTestLogger()
	bus, err := Connect(url, "moodwall", logs.Logger)
	require.NoError(t, err)
	defer bus.Close()

	c := newCollector()
	stop, err := bus.Subscribe(context.Background(), c.handle)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, bus.conn.Publish("moodwall.messages.created", []byte("not json")))
	require.NoError(t, bus.Publish(context.Background(), board.Event{Type: board.EventCleared}))

	events := c.wait(t, 1)
	assert.Equal(t, board.EventCleared, events[0].Type)
	logs.AssertLogged(t, zapcore.WarnLevel, "dropping undecodable board event")
}

func TestBus_PublishAfterClose(t *testing.T) {
	url := startTestServer(t)
	nc, err := nats.Connect(url)
	require.NoError(t, err)
	bus := NewBus(nc, "moodwall", nil)
	nc.Close()

	err = bus.Publish(context.Background(), board.Event{Type: board.EventCleared})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBus_WiresIntoStore(t *testing.T) {
	url := startTestServer(t)
	bus, err := Connect(url, "moodwall", nil)
	require.NoError(t, err)
	defer bus.Close()

	c := newCollector()
	stop, err := bus.Subscribe(context.Background(), c.handle)
	require.NoError(t, err)
	defer stop()

	store := board.NewStore(board.Options{Publisher: bus})
	added, err := store.Add(context.Background(), board.Message{Content: "👍 - nice", Intention: intent.Positivity}, nil)
	require.NoError(t, err)

	events := c.wait(t, 1)
	require.NotNil(t, events[0].Message)
	assert.Equal(t, added.ID, events[0].Message.ID)
}
