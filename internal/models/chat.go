package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole describes who authored a message.  There are only two
// roles: the site visitor and the assistant.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ConversationStatus tracks the lifecycle of a conversation.  Conversations
// are never deleted by the engine; an idle reaper may mark them closed.
type ConversationStatus string

const (
	ConversationActive ConversationStatus = "active"
	ConversationClosed ConversationStatus = "closed"
)

// Conversation is the per-session message log.  It is keyed by the
// (session_id, user_id) pair and created lazily on the first message.
type Conversation struct {
	ID        string             `json:"id"`
	SessionID string             `json:"session_id"`
	UserID    string             `json:"user_id"`
	Status    ConversationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewConversation creates an active conversation for a session.
func NewConversation(sessionID, userID string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		UserID:    userID,
		Status:    ConversationActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Message is a single entry in a conversation.  Messages are immutable once
// appended.  Intent and Handler are empty for user messages; Handler is set
// if and only if the role is assistant.
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	Intent         Intent      `json:"intent,omitempty"`
	Handler        string      `json:"handler,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// NewMessage builds a message for the given conversation.
func NewMessage(conversationID string, role MessageRole, content string) Message {
	return Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
}
