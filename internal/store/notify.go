package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// Notifier wraps the Postgres LISTEN/NOTIFY mechanism.  Ticket creations
// are published on a channel so the external management dashboard can react
// without polling.
type Notifier struct {
	db      *sql.DB
	dsn     string
	channel string
}

// NewNotifier constructs a Notifier.  The channel should match the
// TICKET_NOTIFY_CHANNEL environment variable on the consumer side.
func NewNotifier(db *sql.DB, dsn, channel string) *Notifier {
	return &Notifier{db: db, dsn: dsn, channel: channel}
}

// Notify publishes a ticket ID on the channel.
func (n *Notifier) Notify(ctx context.Context, ticketID string) error {
	_, err := n.db.ExecContext(ctx,
		fmt.Sprintf("NOTIFY %s, %s", pq.QuoteIdentifier(n.channel), pq.QuoteLiteral(ticketID)))
	return err
}

// Listen yields ticket IDs as they are published on the channel until the
// context is cancelled.  It uses a dedicated pq listener connection so it
// does not interfere with the pooled queries.
func (n *Notifier) Listen(ctx context.Context) (<-chan string, error) {
	listener := pq.NewListener(n.dsn, 10*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			slog.Warn("ticket listener event", "event", event, "error", err)
		}
	})
	if err := listener.Listen(n.channel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("listen on %s: %w", n.channel, err)
	}

	ch := make(chan string)
	go func() {
		defer func() {
			listener.Close()
			close(ch)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case notification := <-listener.Notify:
				if notification == nil {
					continue // reconnect event
				}
				select {
				case ch <- notification.Extra:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
