package jobs

import (
	"context"
	"log/slog"
	"time"

	"carechat/internal/store"
)

// SessionReaper closes conversations that have been idle longer than the
// TTL.  Conversations are only ever marked closed, never deleted; retention
// belongs to the operators, not the pipeline.
type SessionReaper struct {
	conversations store.ConversationStore
	idleTTL       time.Duration
}

// NewSessionReaper constructs the reaper.
func NewSessionReaper(conversations store.ConversationStore, idleTTL time.Duration) *SessionReaper {
	return &SessionReaper{conversations: conversations, idleTTL: idleTTL}
}

func (r *SessionReaper) Name() string { return "session_reaper" }

// Interval runs the reaper at a quarter of the TTL so sessions close
// reasonably soon after going stale.
func (r *SessionReaper) Interval() time.Duration {
	interval := r.idleTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

// Run closes everything idle since the cutoff.
func (r *SessionReaper) Run(ctx context.Context) error {
	closed, err := r.conversations.CloseIdle(ctx, time.Now().UTC().Add(-r.idleTTL))
	if err != nil {
		return err
	}
	if closed > 0 {
		slog.Info("closed idle conversations", "count", closed)
	}
	return nil
}
