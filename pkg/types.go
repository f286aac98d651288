// Package pkg holds the wire types shared with external collaborators: the
// chat widget, the OAuth layer and the management dashboard all speak these
// shapes.
package pkg

import (
	"time"

	"carechat/internal/models"
)

// ChatRequest is the inbound message from the chat widget.
type ChatRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse carries the routed reply back to the widget.
type ChatResponse struct {
	Reply      string  `json:"reply"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	EntityID   string  `json:"entity_id,omitempty"`
	SessionID  string  `json:"session_id"`
}

// HistoryResponse is the conversation log for a session.
type HistoryResponse struct {
	SessionID string           `json:"session_id"`
	UserID    string           `json:"user_id"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Messages  []models.Message `json:"messages"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
