package http

import (
	"github.com/fyrsmithlabs/moodwall/internal/board"
	"github.com/fyrsmithlabs/moodwall/internal/intent"
	"github.com/fyrsmithlabs/moodwall/internal/toxicity"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Intention is one entry of GET /api/v1/intentions.
type Intention struct {
	Label intent.Label `json:"label"`
	Emoji string       `json:"emoji"`
}

// IntentionsResponse is the response body for GET /api/v1/intentions.
type IntentionsResponse struct {
	Intentions []Intention `json:"intentions"`
}

// ClassifyRequest is the request body for POST /api/v1/classify.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// ClassifyResponse is the response body for POST /api/v1/classify.
type ClassifyResponse struct {
	Text      string            `json:"text"`
	Content   string            `json:"content"`
	Emoji     string            `json:"emoji"`
	Toxic     bool              `json:"toxic"`
	Toxicity  *toxicity.Verdict `json:"toxicity,omitempty"`
	Intention *intent.Result    `json:"intention,omitempty"`
}

// PostMessageRequest is the request body for POST /api/v1/messages.
type PostMessageRequest struct {
	Content string `json:"content"`
}

// PostMessageResponse is the 201 body for POST /api/v1/messages.
type PostMessageResponse struct {
	Message string        `json:"message"`
	Data    board.Message `json:"data"`
}

// MessagesResponse is the response body for GET /api/v1/messages.
type MessagesResponse struct {
	Messages []board.Message `json:"messages"`
}

// StatusMessage is a plain acknowledgement, e.g. after DELETE.
type StatusMessage struct {
	Message string `json:"message"`
	Cleared int    `json:"cleared"`
}

// SimilarResponse is the response body for GET /api/v1/messages/similar.
type SimilarResponse struct {
	Query   string        `json:"query"`
	Matches []board.Match `json:"matches"`
}
