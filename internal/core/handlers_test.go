package core

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carechat/internal/kb"
	"carechat/internal/models"
	"carechat/internal/store"
)

func intentResult(i models.Intent) models.IntentResult {
	return models.IntentResult{Intent: i, Confidence: 0.5}
}

func TestAppointmentCancelWithoutRecordAsksForDetails(t *testing.T) {
	h := NewAppointmentHandler(store.NewMemoryAppointmentStore())

	reply, meta, err := h.Handle(context.Background(), "user-1", "sess-1",
		"please cancel my appointment", intentResult(models.IntentAppointment))
	require.NoError(t, err)
	assert.Empty(t, meta.EntityID)
	assert.Contains(t, reply, "couldn't find")
}

func TestAppointmentCancelExistingRecord(t *testing.T) {
	appointments := store.NewMemoryAppointmentStore()
	h := NewAppointmentHandler(appointments)
	ctx := context.Background()

	_, meta, err := h.Handle(ctx, "user-1", "sess-1",
		"book me with Dr. Jones on friday", intentResult(models.IntentAppointment))
	require.NoError(t, err)
	require.NotEmpty(t, meta.EntityID)

	reply, meta, err := h.Handle(ctx, "user-1", "sess-1",
		"cancel my appointment", intentResult(models.IntentAppointment))
	require.NoError(t, err)
	assert.Contains(t, reply, "cancelled")
	assert.Contains(t, reply, "Dr. Jones")

	_, err = appointments.FindActiveForUser(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAppointmentRescheduleWithoutRecordBooksFresh(t *testing.T) {
	appointments := store.NewMemoryAppointmentStore()
	h := NewAppointmentHandler(appointments)

	reply, meta, err := h.Handle(context.Background(), "user-1", "sess-1",
		"reschedule my visit to next week", intentResult(models.IntentAppointment))
	require.NoError(t, err)
	require.NotEmpty(t, meta.EntityID)
	assert.Contains(t, reply, "couldn't find an existing appointment")
	assert.Contains(t, reply, "next week")

	appt, err := appointments.FindActiveForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ActionRescheduled, appt.Action)
	assert.Equal(t, "next week", appt.When)
}

func TestAppointmentRescheduleMovesExisting(t *testing.T) {
	appointments := store.NewMemoryAppointmentStore()
	h := NewAppointmentHandler(appointments)
	ctx := context.Background()

	_, first, err := h.Handle(ctx, "user-1", "sess-1",
		"book an appointment with Dr. Lee tomorrow", intentResult(models.IntentAppointment))
	require.NoError(t, err)

	reply, second, err := h.Handle(ctx, "user-1", "sess-1",
		"reschedule to next friday please", intentResult(models.IntentAppointment))
	require.NoError(t, err)
	assert.Equal(t, first.EntityID, second.EntityID, "reschedule keeps the confirmation ID")
	assert.Contains(t, reply, "Dr. Lee")
	assert.Contains(t, reply, "next friday")

	appt, err := appointments.FindActiveForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ActionRescheduled, appt.Action)
	assert.Equal(t, "next friday", appt.When)
}

func TestDetectActionOrdering(t *testing.T) {
	// "cancel my booking" mentions both; cancel wins.
	assert.Equal(t, actionCancel, detectAction("cancel my booking"))
	assert.Equal(t, actionReschedule, detectAction("can you move my appointment"))
	assert.Equal(t, actionBook, detectAction("I'd like to see a doctor"))
	assert.Equal(t, actionInfo, detectAction("what availability do you have"))
}

func TestExtractDoctor(t *testing.T) {
	assert.Equal(t, "Dr. Smith", extractDoctor("book with Dr. Smith"))
	assert.Equal(t, "Dr. Smith", extractDoctor("book with doctor smith"))
	assert.Equal(t, defaultDoctor, extractDoctor("book me in tomorrow"))
}

func TestTicketCategorizationPriorityOrder(t *testing.T) {
	tests := []struct {
		text string
		want models.TicketCategory
	}{
		{"I need a prescription refill", models.CategoryPrescriptionRefill},
		{"where are my lab results", models.CategoryTestResults},
		{"question about my bill", models.CategoryBilling},
		{"I need a referral to a specialist", models.CategoryReferral},
		{"something else entirely", models.CategoryGeneralInquiry},
		// Refill outranks billing when both appear.
		{"billing question about my prescription refill", models.CategoryPrescriptionRefill},
	}
	for _, tt := range tests {
		got, _ := categorize(tt.text)
		assert.Equal(t, tt.want, got, "text: %q", tt.text)
	}
}

func TestTicketHandlerTruncatesDescription(t *testing.T) {
	tickets := store.NewMemoryTicketStore()
	h := NewTicketHandler(tickets)

	long := "refill " + strings.Repeat("x", maxDescriptionLength*2)
	_, _, err := h.Handle(context.Background(), "user-1", "sess-1",
		long, intentResult(models.IntentTicket))
	require.NoError(t, err)

	created, err := tickets.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Len(t, created[0].Description, maxDescriptionLength)
}

func TestTicketReplyNamesEstimate(t *testing.T) {
	h := NewTicketHandler(store.NewMemoryTicketStore())

	tests := []struct {
		text     string
		estimate string
	}{
		{"prescription refill please", "same-day"},
		{"billing question", "1-2 business days"},
		{"just a general question about paperwork", "3-5 business days"},
	}
	for _, tt := range tests {
		reply, _, err := h.Handle(context.Background(), "user-1", "sess-1",
			tt.text, intentResult(models.IntentTicket))
		require.NoError(t, err)
		assert.Contains(t, reply, tt.estimate, "text: %q", tt.text)
	}
}

func TestInformationHandlerMissKeepsTopicEmpty(t *testing.T) {
	knowledgeBase, err := kb.Load("")
	require.NoError(t, err)
	h := NewInformationHandler(knowledgeBase)

	reply, meta, err := h.Handle(context.Background(), "user-1", "sess-1",
		"tell me about quantum chromodynamics", intentResult(models.IntentInformation))
	require.NoError(t, err)
	assert.Equal(t, NoInformationReply, reply)
	assert.Empty(t, meta.Topic)

	reply, meta, err = h.Handle(context.Background(), "user-1", "sess-1",
		"what are your office hours", intentResult(models.IntentInformation))
	require.NoError(t, err)
	assert.Equal(t, "hours", meta.Topic)
	assert.Contains(t, reply, "Monday through Friday")
}

func TestGeneralHandlerCannedAdvice(t *testing.T) {
	h := NewGeneralHandler()

	reply, meta, err := h.Handle(context.Background(), "user-1", "sess-1",
		"I have a terrible migraine", intentResult(models.IntentGeneral))
	require.NoError(t, err)
	assert.Equal(t, "headache", meta.Topic)
	assert.Contains(t, reply, "dark room")

	reply, meta, err = h.Handle(context.Background(), "user-1", "sess-1",
		"should I be worried in general", intentResult(models.IntentGeneral))
	require.NoError(t, err)
	assert.Equal(t, ConsultReply, reply)
	assert.Empty(t, meta.Topic)
}
