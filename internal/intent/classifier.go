package intent

import (
	"strings"

	"carechat/internal/models"
)

// category pairs an intent with its trigger vocabulary.  The slice order is
// the tie-break order: when two categories score equal and nonzero, the one
// listed first wins.  Scheduling and care-continuity requests outrank
// generic Q&A because mis-routing them is the costlier mistake.
type category struct {
	intent   models.Intent
	triggers []string
}

var categories = []category{
	{models.IntentAppointment, []string{
		"appointment", "book", "schedule", "reschedule", "cancel",
		"visit", "see a doctor", "see the doctor", "availability",
	}},
	{models.IntentTicket, []string{
		"refill", "prescription", "medication", "billing", "bill",
		"invoice", "insurance claim", "referral", "test results",
		"lab results", "portal", "login", "password", "website",
	}},
	{models.IntentInformation, []string{
		"hours", "location", "address", "directions", "services",
		"doctors", "staff", "insurance accepted", "accept insurance",
		"policies", "parking", "phone number",
	}},
	{models.IntentGeneral, []string{
		"headache", "fever", "cold", "flu", "cough", "pain", "symptom",
		"symptoms", "advice", "should i", "what causes", "is it serious",
		"feel", "sick", "hurt",
	}},
}

// Classifier maps raw message text to a ranked intent with a confidence
// score.  It is purely rule based: each category is scored by counting its
// trigger phrases present in the normalized text, and
//
//	confidence = matched triggers / total triggers for that category
//
// so confidence is always in [0,1] and deterministic for a given input.
type Classifier struct{}

// NewClassifier constructs a Classifier.
func NewClassifier() *Classifier { return &Classifier{} }

// Classify scores the message against every category and returns the
// winner.  If no trigger matches at all it falls back to the general intent
// with confidence 0; it never returns models.IntentUnknown.
func (c *Classifier) Classify(text string) models.IntentResult {
	normalized := normalize(text)

	best := models.IntentResult{Intent: models.IntentGeneral, Confidence: 0}
	for _, cat := range categories {
		var matched []string
		for _, trigger := range cat.triggers {
			if containsPhrase(normalized, trigger) {
				matched = append(matched, trigger)
			}
		}
		if len(matched) == 0 {
			continue
		}
		score := float64(len(matched)) / float64(len(cat.triggers))
		// Strictly greater keeps the first (highest urgency) category on ties.
		if score > best.Confidence {
			best = models.IntentResult{Intent: cat.intent, Confidence: score, Matched: matched}
		}
	}
	return best
}

// normalize case-folds the text and strips punctuation so trigger phrases
// match regardless of surface form.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// containsPhrase reports whether the phrase occurs on word boundaries in
// the normalized text.  Plain substring matching would let "cold" match
// "coldwell" and skew scores.
func containsPhrase(normalized, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(normalized[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || normalized[start-1] == ' '
		afterOK := end == len(normalized) || normalized[end] == ' '
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}
