package core

import (
	"context"
	"strings"

	"carechat/internal/models"
)

// adviceEntry is a pre-authored self-care text for a common complaint.
// The general handler only ever returns text from this table or the
// consult fallback; it never composes medical claims of its own.
type adviceEntry struct {
	keywords []string
	text     string
}

var adviceEntries = []adviceEntry{
	{[]string{"headache", "migraine"},
		"For a mild headache, rest in a quiet dark room, stay hydrated, and consider an over-the-counter pain reliever as directed on the label. If the headache is sudden and severe, lasts more than a couple of days, or comes with fever, stiff neck or vision changes, please seek medical care promptly."},
	{[]string{"fever", "temperature"},
		"For a mild fever, rest and drink plenty of fluids. An over-the-counter fever reducer can help with comfort. Seek care if the fever is above 39.4C (103F), lasts more than three days, or is accompanied by a rash, stiff neck or trouble breathing."},
	{[]string{"cold", "congestion", "runny nose", "sore throat"},
		"Most colds resolve on their own within a week to ten days. Rest, fluids, and saline rinses can ease symptoms. If symptoms worsen after a week, or you develop a high fever or trouble breathing, please book a visit."},
	{[]string{"flu", "influenza", "body aches", "chills"},
		"Flu usually needs rest, fluids and time. Antiviral medication can help if started early, so contact us within the first 48 hours of symptoms if you are at higher risk. Seek urgent care for chest pain, shortness of breath or confusion."},
	{[]string{"cough"},
		"A cough from a cold usually clears within a few weeks. Honey (for adults and children over one year), fluids and a humidifier can help. See a doctor if the cough lasts over three weeks, brings up blood, or comes with fever or breathlessness."},
	{[]string{"allergy", "allergies", "hay fever", "sneezing"},
		"Seasonal allergies often respond to over-the-counter antihistamines and avoiding peak pollen times. If symptoms interfere with sleep or daily life, we can discuss prescription options at a visit."},
}

// ConsultReply is the fallback when no canned entry matches.
const ConsultReply = "I can share general wellness information, but for anything specific to your health it's best to speak with a professional. Would you like me to help you book an appointment?"

// GeneralHandler answers health questions with pre-authored advice.  The
// guardrail filter appends the medical disclaimer to everything it returns.
type GeneralHandler struct{}

// NewGeneralHandler constructs the handler.
func NewGeneralHandler() *GeneralHandler { return &GeneralHandler{} }

func (h *GeneralHandler) Name() string { return "general" }

// Handle matches the message against the canned advice table.
func (h *GeneralHandler) Handle(ctx context.Context, userID, sessionID, text string, result models.IntentResult) (string, Metadata, error) {
	meta := Metadata{Source: models.SourceGeneralKB}

	lowered := strings.ToLower(text)
	for _, entry := range adviceEntries {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				meta.Topic = entry.keywords[0]
				return entry.text, meta, nil
			}
		}
	}
	return ConsultReply, meta, nil
}
