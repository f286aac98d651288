package core

import (
	"context"
	"fmt"
	"strings"

	"carechat/internal/guardrail"
	"carechat/internal/intent"
	"carechat/internal/kb"
	"carechat/internal/logging"
	"carechat/internal/models"
	"carechat/internal/store"
)

// MaxMessageLength bounds inbound message size.  Anything longer is
// rejected as invalid input before classification.
const MaxMessageLength = 2000

// ApologyReply is returned when a store is unreachable.  The user never
// sees a reply that was not durably recorded, so on persistence failure
// nothing is appended and this text is surfaced instead.
const ApologyReply = "I'm sorry, something went wrong on our side. Please try again in a moment."

// Response is the boundary result of processing one message.
type Response struct {
	Reply      string               `json:"reply"`
	Intent     models.Intent        `json:"intent"`
	Confidence float64              `json:"confidence"`
	Source     models.HandlerSource `json:"source"`
	EntityID   string               `json:"entity_id,omitempty"`
}

// Engine orchestrates the routing pipeline: load conversation state,
// classify, dispatch to a handler, filter the draft reply, persist the
// exchange.  All collaborators are injected at construction so tests can
// run each piece against fresh in-memory stores.
type Engine struct {
	classifier    *intent.Classifier
	handlers      map[models.Intent]Handler
	conversations store.ConversationStore
	filter        *guardrail.Filter
}

// NewEngine wires the engine from its collaborators.  Every intent must
// have a registered handler; the four standard ones come from NewHandlers.
func NewEngine(classifier *intent.Classifier, handlers map[models.Intent]Handler, conversations store.ConversationStore, filter *guardrail.Filter) *Engine {
	return &Engine{
		classifier:    classifier,
		handlers:      handlers,
		conversations: conversations,
		filter:        filter,
	}
}

// NewHandlers builds the standard handler set over the given stores and
// knowledge base.
func NewHandlers(appointments store.AppointmentStore, tickets store.TicketStore, knowledgeBase *kb.KnowledgeBase) map[models.Intent]Handler {
	return map[models.Intent]Handler{
		models.IntentAppointment: NewAppointmentHandler(appointments),
		models.IntentInformation: NewInformationHandler(knowledgeBase),
		models.IntentTicket:      NewTicketHandler(tickets),
		models.IntentGeneral:     NewGeneralHandler(),
	}
}

// ProcessMessage runs one message through the full pipeline.  The caller's
// context deadline bounds classification, dispatch and filtering as one
// unit; if it expires the exchange is not persisted at all.
func (e *Engine) ProcessMessage(ctx context.Context, userID, sessionID, text string) (*Response, error) {
	state := StateReceived
	log := logging.WithRequest(sessionID, userID)

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, invalidInput("message is empty")
	}
	if len(trimmed) > MaxMessageLength {
		return nil, invalidInput(fmt.Sprintf("message exceeds %d characters", MaxMessageLength))
	}

	conversation, err := e.conversations.GetOrCreate(ctx, sessionID, userID)
	if err != nil {
		return nil, persistenceFailure("load conversation", err)
	}

	result := e.classifier.Classify(trimmed)
	state = transition(state, StateClassified)
	if result.Confidence == 0 {
		// No trigger matched anywhere; the general handler's fallback
		// covers it, this is not an error.
		log.Debug("classification ambiguous, routed to general", "text_len", len(trimmed))
	}

	handler, ok := e.handlers[result.Intent]
	if !ok {
		return nil, &EngineError{Kind: KindHandlerFailure, Message: fmt.Sprintf("no handler for intent %q", result.Intent)}
	}
	draft, meta, err := handler.Handle(ctx, userID, sessionID, trimmed, result)
	if err != nil {
		// Handlers recover their own slot failures; an error here means a
		// store was unreachable, which is fatal for the request.
		return nil, persistenceFailure(handler.Name()+" handler", err)
	}
	state = transition(state, StateDispatched)

	reply := e.filter.Apply(draft, meta.Source)
	state = transition(state, StateFiltered)

	// A knowledge base miss reports zero confidence so callers can tell the
	// canned fallback apart from a genuine match.
	confidence := result.Confidence
	if meta.Source == models.SourceKnowledgeBase && meta.Topic == "" {
		confidence = 0
	}

	// The append happens only after the filtered reply is ready, and the
	// deadline is re-checked first: a timed-out request must not leave a
	// partial exchange behind.
	if err := ctx.Err(); err != nil {
		return nil, persistenceFailure("deadline exceeded before persist", err)
	}

	userMsg := models.NewMessage(conversation.ID, models.RoleUser, trimmed)
	userMsg.Intent = result.Intent
	assistantMsg := models.NewMessage(conversation.ID, models.RoleAssistant, reply)
	assistantMsg.Intent = result.Intent
	assistantMsg.Handler = handler.Name()

	if err := e.conversations.AppendExchange(ctx, conversation.ID, userMsg, assistantMsg); err != nil {
		return nil, persistenceFailure("append exchange", err)
	}
	state = transition(state, StatePersisted)

	state = transition(state, StateResponded)
	log.Info("message processed",
		"intent", result.Intent,
		"confidence", confidence,
		"source", meta.Source,
		"entity_id", meta.EntityID,
		"state", state,
	)

	return &Response{
		Reply:      reply,
		Intent:     result.Intent,
		Confidence: confidence,
		Source:     meta.Source,
		EntityID:   meta.EntityID,
	}, nil
}

// History returns the message log for a session, for the external
// get-history collaborator.  It never creates a conversation.
func (e *Engine) History(ctx context.Context, sessionID, userID string) (*models.Conversation, []models.Message, error) {
	conversation, err := e.conversations.GetBySession(ctx, sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := e.conversations.ListMessages(ctx, conversation.ID)
	if err != nil {
		return nil, nil, err
	}
	return conversation, messages, nil
}
