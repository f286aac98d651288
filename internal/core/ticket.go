package core

import (
	"context"
	"fmt"
	"strings"

	"carechat/internal/models"
	"carechat/internal/store"
)

// ticketRule maps trigger keywords to a category.  The slice order is the
// documented matching priority: the first rule with any keyword present in
// the message wins.
type ticketRule struct {
	category models.TicketCategory
	subject  string
	keywords []string
}

var ticketRules = []ticketRule{
	{models.CategoryPrescriptionRefill, "Prescription refill request",
		[]string{"refill", "prescription", "medication", "pharmacy"}},
	{models.CategoryTestResults, "Test results inquiry",
		[]string{"test results", "lab results", "lab work", "blood work", "results"}},
	{models.CategoryBilling, "Billing inquiry",
		[]string{"billing", "bill", "invoice", "charge", "payment", "insurance claim"}},
	{models.CategoryReferral, "Referral request",
		[]string{"referral", "specialist", "refer me"}},
}

// maxDescriptionLength bounds how much of the raw message is stored on the
// ticket.
const maxDescriptionLength = 500

// TicketHandler creates support tickets from chat messages.
type TicketHandler struct {
	tickets store.TicketStore
}

// NewTicketHandler constructs the handler around a ticket store.
func NewTicketHandler(tickets store.TicketStore) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

func (h *TicketHandler) Name() string { return "ticket" }

// Handle categorizes the request, creates the ticket and replies with the
// ticket ID and the response-time estimate for its priority.
func (h *TicketHandler) Handle(ctx context.Context, userID, sessionID, text string, result models.IntentResult) (string, Metadata, error) {
	meta := Metadata{Source: models.SourceTicketSystem}

	category, subject := categorize(text)
	description := text
	if len(description) > maxDescriptionLength {
		description = description[:maxDescriptionLength]
	}

	ticket := models.NewTicket(userID, category, subject, description)
	if err := h.tickets.Create(ctx, ticket); err != nil {
		return "", meta, fmt.Errorf("create ticket: %w", err)
	}
	meta.EntityID = ticket.ID

	reply := fmt.Sprintf("I've created support ticket %s for your %s. Our team typically responds %s. You can check on it any time through the patient portal.",
		ticket.ID, subjectPhrase(category), models.ResponseEstimate(ticket.Priority))
	return reply, meta, nil
}

// categorize returns the first matching category in priority order, falling
// back to the general inquiry bucket.
func categorize(text string) (models.TicketCategory, string) {
	lowered := strings.ToLower(text)
	for _, rule := range ticketRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.category, rule.subject
			}
		}
	}
	return models.CategoryGeneralInquiry, "General inquiry"
}

func subjectPhrase(category models.TicketCategory) string {
	switch category {
	case models.CategoryPrescriptionRefill:
		return "prescription refill"
	case models.CategoryTestResults:
		return "test results inquiry"
	case models.CategoryBilling:
		return "billing question"
	case models.CategoryReferral:
		return "referral request"
	default:
		return "inquiry"
	}
}
