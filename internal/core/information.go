package core

import (
	"context"

	"carechat/internal/kb"
	"carechat/internal/models"
)

// NoInformationReply is returned when no knowledge base entry scores above
// the threshold.  Tests rely on this being distinguishable from a match, so
// the metadata Topic stays empty alongside it.
const NoInformationReply = "I don't have that information on hand. " +
	"Please call our front desk and they'll be happy to help."

// InformationHandler answers questions from the static knowledge base.
type InformationHandler struct {
	kb *kb.KnowledgeBase
}

// NewInformationHandler constructs the handler around a loaded knowledge base.
func NewInformationHandler(knowledgeBase *kb.KnowledgeBase) *InformationHandler {
	return &InformationHandler{kb: knowledgeBase}
}

func (h *InformationHandler) Name() string { return "information" }

// Handle returns the best-matching entry's canonical answer, or the
// no-information fallback when nothing scores above kb.MinScore.
func (h *InformationHandler) Handle(ctx context.Context, userID, sessionID, text string, result models.IntentResult) (string, Metadata, error) {
	meta := Metadata{Source: models.SourceKnowledgeBase}

	match, ok := h.kb.Search(text)
	if !ok {
		return NoInformationReply, meta, nil
	}
	meta.Topic = match.Entry.Topic
	return match.Entry.Answer, meta, nil
}
