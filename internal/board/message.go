// Package board holds the in-memory message board: an insertion-ordered
// store, a similarity index over clean messages and board events.
package board

import (
	"context"
	"time"

	"github.com/fyrsmithlabs/moodwall/internal/analyzer"
	"github.com/fyrsmithlabs/moodwall/internal/intent"
	"github.com/fyrsmithlabs/moodwall/internal/toxicity"
)

// Message is one entry on the board.
type Message struct {
	ID string `json:"id"`
	// Content is the displayed form: emoji, separator and (possibly masked) text.
	Content   string            `json:"content"`
	Text      string            `json:"text,omitempty"`
	Intention intent.Label      `json:"intention,omitempty"`
	Score     float64           `json:"score,omitempty"`
	Toxic     bool              `json:"toxic"`
	Category  toxicity.Category `json:"category,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// FromAnalysis builds an unsaved message from an analysis. Toxic messages
// keep only their masked content.
func FromAnalysis(a analyzer.Analysis) Message {
	msg := Message{Content: a.Content}
	if a.Toxic() {
		msg.Toxic = true
		msg.Category = a.Toxicity.Category
		return msg
	}
	msg.Text = a.Text
	if a.Intention != nil {
		msg.Intention = a.Intention.Label
		msg.Score = a.Intention.Score
	}
	return msg
}

// EventType names a board event.
type EventType string

const (
	EventCreated EventType = "messages.created"
	EventCleared EventType = "messages.cleared"
)

// Event describes a board change.
type Event struct {
	Type    EventType `json:"type"`
	Message *Message  `json:"message,omitempty"`
	// Cleared is the number of messages removed by a clear.
	Cleared int       `json:"cleared,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher receives board events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event Event) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}
