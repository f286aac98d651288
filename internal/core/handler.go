package core

import (
	"context"

	"carechat/internal/models"
)

// Metadata is the structured side data a handler returns with its reply.
type Metadata struct {
	// Source tags which backend produced the reply.
	Source models.HandlerSource

	// EntityID is the ticket or appointment ID created by the handler,
	// empty when nothing was created.
	EntityID string

	// Topic is the knowledge base topic that answered an information
	// request.  Empty means no entry scored above the threshold, which is
	// how a fallback reply is told apart from a genuine match.
	Topic string
}

// Handler is one of the four routing strategies.  Handlers recover their
// own local failures by returning a clarification reply; an error return is
// reserved for unreachable stores.
type Handler interface {
	Name() string
	Handle(ctx context.Context, userID, sessionID, text string, result models.IntentResult) (string, Metadata, error)
}
