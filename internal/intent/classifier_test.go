package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carechat/internal/models"
)

func TestClassifyRoutesGoldenMessages(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		text string
		want models.Intent
	}{
		{"I want to book an appointment with Dr. Smith tomorrow", models.IntentAppointment},
		{"Can you reschedule my visit to next week?", models.IntentAppointment},
		{"What are your office hours?", models.IntentInformation},
		{"Where are you located and is there parking?", models.IntentInformation},
		{"I need a prescription refill", models.IntentTicket},
		{"Question about my billing statement", models.IntentTicket},
		{"I have a headache, what should I do?", models.IntentGeneral},
		{"Is a low fever serious?", models.IntentGeneral},
	}
	for _, tt := range tests {
		result := c.Classify(tt.text)
		assert.Equal(t, tt.want, result.Intent, "text: %q", tt.text)
		assert.Greater(t, result.Confidence, 0.0, "text: %q", tt.text)
		assert.NotEmpty(t, result.Matched, "text: %q", tt.text)
	}
}

func TestClassifyConfidenceInRange(t *testing.T) {
	c := NewClassifier()

	for _, text := range []string{
		"book schedule cancel reschedule appointment visit availability",
		"hello there",
		"refill",
		"???!!!",
		"The quick brown fox jumps over the lazy dog",
	} {
		result := c.Classify(text)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 1.0)
		assert.NotEqual(t, models.IntentUnknown, result.Intent)
	}
}

func TestClassifyNoMatchFallsBackToGeneral(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("xyzzy plugh")
	require.Equal(t, models.IntentGeneral, result.Intent)
	assert.Zero(t, result.Confidence)
	assert.Empty(t, result.Matched)
}

func TestClassifyTieBreakPrefersUrgency(t *testing.T) {
	c := NewClassifier()

	// Every appointment trigger and every ticket trigger present: both
	// categories score 1.0 and the tie must resolve to appointment.
	text := "appointment book schedule reschedule cancel visit see a doctor see the doctor availability " +
		"refill prescription medication billing bill invoice insurance claim referral " +
		"test results lab results portal login password website"
	result := c.Classify(text)
	assert.Equal(t, models.IntentAppointment, result.Intent)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestClassifyNormalizationIgnoresCaseAndPunctuation(t *testing.T) {
	c := NewClassifier()

	upper := c.Classify("BOOK AN APPOINTMENT!!!")
	lower := c.Classify("book an appointment")
	assert.Equal(t, lower.Intent, upper.Intent)
	assert.Equal(t, lower.Confidence, upper.Confidence)
}

func TestClassifyMatchesOnWordBoundaries(t *testing.T) {
	c := NewClassifier()

	// "coldwell" must not count as the symptom "cold".
	result := c.Classify("tell me about coldwell banker")
	assert.Zero(t, result.Confidence)
	assert.Equal(t, models.IntentGeneral, result.Intent)
}
