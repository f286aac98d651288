package models

import (
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// TicketCategory enumerates the fixed support categories.
type TicketCategory string

const (
	CategoryPrescriptionRefill TicketCategory = "prescription_refill"
	CategoryBilling            TicketCategory = "billing"
	CategoryTestResults        TicketCategory = "test_results"
	CategoryReferral           TicketCategory = "referral"
	CategoryGeneralInquiry     TicketCategory = "general_inquiry"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	PriorityHigh   TicketPriority = "high"
	PriorityMedium TicketPriority = "medium"
	PriorityLow    TicketPriority = "low"
)

// TicketStatus tracks the ticket lifecycle.  The chat pipeline only ever
// creates tickets as open; the management endpoints own the rest.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
)

// categoryPriorities derives priority deterministically from category.
var categoryPriorities = map[TicketCategory]TicketPriority{
	CategoryPrescriptionRefill: PriorityHigh,
	CategoryTestResults:        PriorityHigh,
	CategoryBilling:            PriorityMedium,
	CategoryReferral:           PriorityMedium,
	CategoryGeneralInquiry:     PriorityLow,
}

// PriorityFor returns the fixed priority for a category.
func PriorityFor(category TicketCategory) TicketPriority {
	if p, ok := categoryPriorities[category]; ok {
		return p
	}
	return PriorityLow
}

// ResponseEstimate returns the advertised response window for a priority.
func ResponseEstimate(p TicketPriority) string {
	switch p {
	case PriorityHigh:
		return "same-day"
	case PriorityMedium:
		return "1-2 business days"
	default:
		return "3-5 business days"
	}
}

// Ticket is a support request created by the ticket handler.
type Ticket struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Category    TicketCategory `json:"category"`
	Subject     string         `json:"subject"`
	Description string         `json:"description"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewTicket creates an open ticket with its priority derived from the
// category.  IDs use a short uuid so they are readable in chat replies.
func NewTicket(userID string, category TicketCategory, subject, description string) *Ticket {
	return &Ticket{
		ID:          "TCK-" + shortuuid.New(),
		UserID:      userID,
		Category:    category,
		Subject:     subject,
		Description: description,
		Priority:    PriorityFor(category),
		Status:      TicketOpen,
		CreatedAt:   time.Now().UTC(),
	}
}
