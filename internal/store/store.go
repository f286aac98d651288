// Package store provides the persistence boundaries for conversations,
// tickets and appointments.  The chat engine only depends on the interfaces
// here; the in-memory implementation covers tests and local runs, the
// Postgres implementation covers deployments.
package store

import (
	"context"
	"errors"
	"time"

	"carechat/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ConversationStore manages the per-session message logs.
type ConversationStore interface {
	// GetOrCreate returns the conversation for (sessionID, userID),
	// creating it in the active state on first use.
	GetOrCreate(ctx context.Context, sessionID, userID string) (*models.Conversation, error)

	// AppendExchange atomically appends a user message and the assistant
	// reply to the conversation, in that order, and bumps updated_at.
	// Either both messages are recorded or neither is.
	AppendExchange(ctx context.Context, conversationID string, userMsg, assistantMsg models.Message) error

	// ListMessages returns all messages of a conversation in append order.
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)

	// GetBySession looks up an existing conversation without creating one.
	GetBySession(ctx context.Context, sessionID, userID string) (*models.Conversation, error)

	// CloseIdle marks conversations untouched since the cutoff as closed
	// and returns how many were affected.  Nothing is ever deleted.
	CloseIdle(ctx context.Context, cutoff time.Time) (int, error)
}

// TicketStore manages support tickets.  The chat pipeline only creates
// tickets; the management endpoints own the rest of the lifecycle.
type TicketStore interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	ListByUser(ctx context.Context, userID string) ([]models.Ticket, error)
}

// AppointmentStore manages scheduling records.
type AppointmentStore interface {
	// CreateOrUpdate inserts the appointment, or replaces the record with
	// the same ID when it already exists.
	CreateOrUpdate(ctx context.Context, appointment *models.Appointment) error

	// FindActiveForUser returns the most recent confirmed appointment for
	// the user, or ErrNotFound.
	FindActiveForUser(ctx context.Context, userID string) (*models.Appointment, error)

	// ListByUser returns all appointment records for the user.
	ListByUser(ctx context.Context, userID string) ([]models.Appointment, error)
}
