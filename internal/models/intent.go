package models

// Intent is the routing label assigned to a user message.
type Intent string

const (
	IntentAppointment Intent = "appointment"
	IntentInformation Intent = "information"
	IntentTicket      Intent = "ticket"
	IntentGeneral     Intent = "general"

	// IntentUnknown is reserved for diagnostics and tests.  The classifier
	// never returns it on the engine path; a message with no trigger matches
	// falls back to IntentGeneral with confidence 0.
	IntentUnknown Intent = "unknown"
)

// IntentResult is the transient output of classification.  Only the winning
// label is persisted (on the assistant message); the matched trigger terms
// are kept for explainability in API responses and logs.
type IntentResult struct {
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Matched    []string `json:"matched,omitempty"`
}

// HandlerSource identifies which backend produced a reply.
type HandlerSource string

const (
	SourceMockAPI       HandlerSource = "mock_api"
	SourceKnowledgeBase HandlerSource = "knowledge_base"
	SourceTicketSystem  HandlerSource = "ticket_system"
	SourceGeneralKB     HandlerSource = "general_kb"
)
