// Package guardrail post-processes every draft reply before it is shown to
// a user or persisted.  The filter is a pure function and idempotent:
// applying it to an already-filtered reply returns the same text, so the
// engine may chain it with other post-processing safely.
package guardrail

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"carechat/internal/models"
)

const (
	// MaxReplyLength bounds reply size, counting the truncation marker.
	MaxReplyLength = 1200

	// TruncationMarker is appended when a reply is cut.
	TruncationMarker = "…"

	// RedactionPlaceholder replaces sensitive identifier patterns.
	RedactionPlaceholder = "[REDACTED]"

	// Disclaimer is appended exactly once to health-advice replies.
	Disclaimer = "This is general information, not medical advice. Please consult a healthcare professional for guidance specific to you."

	// FallbackReply replaces replies that are empty or blocked after
	// filtering.
	FallbackReply = "I'm sorry, I can't help with that. Please contact our office directly and a member of staff will assist you."
)

var (
	// ssnPattern matches SSN-like digit groupings: 9 digits, optionally
	// grouped 3-2-4 with dashes or spaces.
	ssnPattern = regexp.MustCompile(`\b\d{3}[- ]?\d{2}[- ]?\d{4}\b`)

	// cardPattern matches payment-card-like groupings: 13 to 16 digits,
	// optionally separated into groups of 4.
	cardPattern = regexp.MustCompile(`\b(?:\d{4}[- ]?){3}\d{1,4}\b|\b\d{13,16}\b`)

	// blocklist holds terms that must never appear in an outgoing reply.
	blocklist = []string{
		"guaranteed cure",
		"stop taking your medication",
		"no need to see a doctor",
		"ignore your symptoms",
	}
)

// Filter sanitizes draft replies.  It holds no state; the zero value is
// usable but NewFilter is provided for symmetry with the other components.
type Filter struct{}

// NewFilter constructs a Filter.
func NewFilter() *Filter { return &Filter{} }

// Apply runs the full transform pipeline on a draft reply:
// redaction, truncation, disclaimer (general handler only), and the
// blocklist/empty rejection.  The result is a fixed point of Apply.
func (f *Filter) Apply(reply string, source models.HandlerSource) string {
	text := strings.TrimSpace(reply)

	// Strip a previously appended disclaimer so redaction and truncation
	// operate on the body alone; it is re-appended below.  This is what
	// keeps re-application from truncating its own suffix.
	hadDisclaimer := false
	if stripped, ok := strings.CutSuffix(text, Disclaimer); ok {
		text = strings.TrimSpace(stripped)
		hadDisclaimer = true
	}

	// Truncation can expose a fresh bounded digit run at the cut, and
	// redacting that run can push the text back over the limit, so the two
	// steps run to a fixed point. Each redaction removes at least nine
	// digits and truncation never adds any, so the loop converges.
	for {
		prev := text
		text = redact(text)
		text = truncate(text)
		if text == prev {
			break
		}
	}

	if f.blocked(text) || text == "" {
		text = FallbackReply
	}

	if source == models.SourceGeneralKB || hadDisclaimer {
		text = text + " " + Disclaimer
	}
	return text
}

func redact(text string) string {
	text = ssnPattern.ReplaceAllString(text, RedactionPlaceholder)
	return cardPattern.ReplaceAllString(text, RedactionPlaceholder)
}

// truncate cuts the text to MaxReplyLength, marker included, backing the cut
// up to a rune boundary so the result stays valid UTF-8.
func truncate(text string) string {
	if len(text) <= MaxReplyLength {
		return text
	}
	cut := MaxReplyLength - len(TruncationMarker)
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + TruncationMarker
}

func (f *Filter) blocked(text string) bool {
	lowered := strings.ToLower(text)
	for _, term := range blocklist {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
