package core

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"carechat/internal/models"
	"carechat/internal/store"
)

// appointmentAction is the sub-action detected inside an appointment
// intent.
type appointmentAction string

const (
	actionBook       appointmentAction = "book"
	actionCancel     appointmentAction = "cancel"
	actionReschedule appointmentAction = "reschedule"
	actionInfo       appointmentAction = "info"
)

const (
	defaultDoctor = "our next available doctor"
	defaultSlot   = "the next available slot"
)

// doctorPattern extracts a doctor name from phrases like "Dr. Smith",
// "dr smith" or "doctor smith".
var doctorPattern = regexp.MustCompile(`(?i)\b(?:dr\.?|doctor)\s+([a-z]+)`)

// datePhrases are the recognized scheduling phrases, checked in order.
var datePhrases = []string{
	"tomorrow morning", "tomorrow afternoon", "tomorrow",
	"today", "tonight", "next week", "this week",
	"next monday", "next tuesday", "next wednesday", "next thursday",
	"next friday", "next saturday", "next sunday",
	"monday", "tuesday", "wednesday", "thursday", "friday",
	"saturday", "sunday",
}

// AppointmentHandler books, reschedules and cancels appointments.  It is a
// stand-in for a real scheduling backend: records are internally consistent
// but never checked against a calendar.
type AppointmentHandler struct {
	appointments store.AppointmentStore
}

// NewAppointmentHandler constructs the handler around an appointment store.
func NewAppointmentHandler(appointments store.AppointmentStore) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

func (h *AppointmentHandler) Name() string { return "appointment" }

// Handle detects the scheduling sub-action and performs it.
func (h *AppointmentHandler) Handle(ctx context.Context, userID, sessionID, text string, result models.IntentResult) (string, Metadata, error) {
	meta := Metadata{Source: models.SourceMockAPI}

	switch detectAction(text) {
	case actionCancel:
		return h.cancel(ctx, userID, meta)
	case actionReschedule:
		return h.reschedule(ctx, userID, text, meta)
	case actionBook:
		return h.book(ctx, userID, text, meta)
	default:
		reply := "I can help you book, reschedule or cancel an appointment. " +
			"Just tell me what you'd like to do, and feel free to mention a doctor and a day that suits you."
		return reply, meta, nil
	}
}

func (h *AppointmentHandler) book(ctx context.Context, userID, text string, meta Metadata) (string, Metadata, error) {
	doctor := extractDoctor(text)
	when := extractDatePhrase(text)

	appointment := models.NewAppointment(userID, doctor, when, models.ActionBooked)
	if err := h.appointments.CreateOrUpdate(ctx, appointment); err != nil {
		return "", meta, fmt.Errorf("book appointment: %w", err)
	}
	meta.EntityID = appointment.ID

	reply := fmt.Sprintf("You're all set! I've booked an appointment with %s for %s. Your confirmation ID is %s. We'll send a reminder before your visit.",
		doctor, when, appointment.ID)
	return reply, meta, nil
}

func (h *AppointmentHandler) reschedule(ctx context.Context, userID, text string, meta Metadata) (string, Metadata, error) {
	when := extractDatePhrase(text)

	existing, err := h.appointments.FindActiveForUser(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Nothing on file: treat the request as a fresh booking for the
		// requested time rather than bouncing the user.
		appointment := models.NewAppointment(userID, extractDoctor(text), when, models.ActionRescheduled)
		if err := h.appointments.CreateOrUpdate(ctx, appointment); err != nil {
			return "", meta, fmt.Errorf("reschedule appointment: %w", err)
		}
		meta.EntityID = appointment.ID
		reply := fmt.Sprintf("I couldn't find an existing appointment, so I've scheduled you with %s for %s instead. Your confirmation ID is %s.",
			appointment.Doctor, when, appointment.ID)
		return reply, meta, nil
	case err != nil:
		return "", meta, fmt.Errorf("look up appointment: %w", err)
	}

	existing.When = when
	existing.Action = models.ActionRescheduled
	if err := h.appointments.CreateOrUpdate(ctx, existing); err != nil {
		return "", meta, fmt.Errorf("reschedule appointment: %w", err)
	}
	meta.EntityID = existing.ID

	reply := fmt.Sprintf("Done — I've moved your appointment with %s to %s. Your confirmation ID is still %s.",
		existing.Doctor, when, existing.ID)
	return reply, meta, nil
}

func (h *AppointmentHandler) cancel(ctx context.Context, userID string, meta Metadata) (string, Metadata, error) {
	existing, err := h.appointments.FindActiveForUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		// Recoverable: ask for details instead of failing the request.
		reply := "I couldn't find an upcoming appointment under your account. " +
			"Could you share your confirmation ID, or the doctor and date of the visit you'd like to cancel?"
		return reply, meta, nil
	}
	if err != nil {
		return "", meta, fmt.Errorf("look up appointment: %w", err)
	}

	existing.Action = models.ActionCancelled
	existing.Status = models.AppointmentCancelled
	if err := h.appointments.CreateOrUpdate(ctx, existing); err != nil {
		return "", meta, fmt.Errorf("cancel appointment: %w", err)
	}
	meta.EntityID = existing.ID

	reply := fmt.Sprintf("Your appointment with %s for %s has been cancelled (confirmation %s). Let me know if you'd like to book a new time.",
		existing.Doctor, existing.When, existing.ID)
	return reply, meta, nil
}

// detectAction picks the scheduling sub-action by secondary keyword match.
// Cancel and reschedule are checked before book so "cancel my booking"
// routes correctly.
func detectAction(text string) appointmentAction {
	lowered := strings.ToLower(text)
	switch {
	case strings.Contains(lowered, "cancel"):
		return actionCancel
	case strings.Contains(lowered, "reschedule") || strings.Contains(lowered, "move my"):
		return actionReschedule
	case strings.Contains(lowered, "book") || strings.Contains(lowered, "schedule") ||
		strings.Contains(lowered, "make an appointment") || strings.Contains(lowered, "see a doctor") ||
		strings.Contains(lowered, "see the doctor"):
		return actionBook
	default:
		return actionInfo
	}
}

// extractDoctor returns "Dr. <Name>" from the message, or the default.
func extractDoctor(text string) string {
	m := doctorPattern.FindStringSubmatch(text)
	if m == nil {
		return defaultDoctor
	}
	name := strings.ToLower(m[1])
	return "Dr. " + strings.ToUpper(name[:1]) + name[1:]
}

// extractDatePhrase returns the first recognized scheduling phrase, or the
// default slot.
func extractDatePhrase(text string) string {
	lowered := strings.ToLower(text)
	for _, phrase := range datePhrases {
		if strings.Contains(lowered, phrase) {
			return phrase
		}
	}
	return defaultSlot
}
