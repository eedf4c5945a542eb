package board

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/moodwall/internal/intent"
	"github.com/fyrsmithlabs/moodwall/internal/logging"
)

// ErrNotFound is returned when a message ID is not on the board.
var ErrNotFound = errors.New("message not found")

// Options configures a Store.
type Options struct {
	// MaxMessages caps the board; when exceeded the oldest message is
	// evicted. 0 means unbounded.
	MaxMessages int
	// Index is optional; without it Similar always returns no matches.
	Index     *Index
	Publisher Publisher
	Metrics   *Metrics
	Logger    *logging.Logger
}

// Match is a stored message with its similarity to a query.
type Match struct {
	Message    Message `json:"message"`
	Similarity float64 `json:"similarity"`
}

// Store is an insertion-ordered, mutex-guarded message board.
type Store struct {
	mu       sync.RWMutex
	messages []Message
	byID     map[string]int // ID -> position in messages

	max       int
	index     *Index
	publisher Publisher
	metrics   *Metrics
	logger    *logging.Logger
	now       func() time.Time
}

// NewStore creates an empty board.
func NewStore(opts Options) *Store {
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.MaxMessages < 0 {
		opts.MaxMessages = 0
	}
	return &Store{
		byID:      make(map[string]int),
		max:       opts.MaxMessages,
		index:     opts.Index,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		logger:    opts.Logger.Named("board"),
		now:       time.Now,
	}
}

// Add stores msg, assigning its ID and creation time, and indexes emb for
// similarity search when non-empty. It returns the stored message.
func (s *Store) Add(ctx context.Context, msg Message, emb intent.Embedding) (Message, error) {
	msg.ID = uuid.NewString()
	msg.CreatedAt = s.now().UTC()

	s.mu.Lock()
	if s.index != nil && len(emb) > 0 {
		if err := s.index.Add(ctx, msg.ID, msg.Text, emb); err != nil {
			s.mu.Unlock()
			return Message{}, err
		}
	}
	s.messages = append(s.messages, msg)
	s.byID[msg.ID] = len(s.messages) - 1
	evicted := s.evictLocked()
	count := len(s.messages)
	s.mu.Unlock()

	for _, old := range evicted {
		if s.index != nil {
			if err := s.index.Remove(ctx, old.ID); err != nil {
				s.logger.Warn(ctx, "failed to remove evicted message from index",
					zap.String("id", old.ID), zap.Error(err))
			}
		}
		s.metrics.Evictions.Inc()
	}
	s.metrics.StoredMessages.Set(float64(count))
	s.metrics.recordAdd(msg)

	s.publish(ctx, Event{Type: EventCreated, Message: &msg, At: msg.CreatedAt})
	return msg, nil
}

// evictLocked trims the board to the cap, oldest first.
func (s *Store) evictLocked() []Message {
	if s.max == 0 || len(s.messages) <= s.max {
		return nil
	}
	n := len(s.messages) - s.max
	evicted := append([]Message(nil), s.messages[:n]...)
	s.messages = append(s.messages[:0:0], s.messages[n:]...)

	s.byID = make(map[string]int, len(s.messages))
	for i, m := range s.messages {
		s.byID[m.ID] = i
	}
	return evicted
}

// List returns a copy of the board in insertion order.
func (s *Store) List() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Get returns the message with the given ID.
func (s *Store) Get(id string) (Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return Message{}, ErrNotFound
	}
	return s.messages[i], nil
}

// Count returns the number of stored messages.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Clear removes every message and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	n := len(s.messages)
	s.messages = nil
	s.byID = make(map[string]int)
	var err error
	if s.index != nil {
		err = s.index.Reset()
	}
	s.mu.Unlock()

	s.metrics.StoredMessages.Set(0)
	s.metrics.Clears.Inc()
	if err != nil {
		return n, err
	}

	s.publish(ctx, Event{Type: EventCleared, Cleared: n, At: s.now().UTC()})
	return n, nil
}

// Similar returns up to k stored messages nearest to emb, best first.
func (s *Store) Similar(ctx context.Context, emb intent.Embedding, k int) ([]Match, error) {
	if s.index == nil {
		return []Match{}, nil
	}
	hits, err := s.index.Similar(ctx, emb, k)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]Match, 0, len(hits))
	for _, h := range hits {
		// A message evicted after the query ran is skipped.
		i, ok := s.byID[h.ID]
		if !ok {
			continue
		}
		matches = append(matches, Match{Message: s.messages[i], Similarity: h.Similarity})
	}
	return matches, nil
}

func (s *Store) publish(ctx context.Context, event Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "failed to publish board event",
			zap.String("type", string(event.Type)), zap.Error(err))
	}
}
