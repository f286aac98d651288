package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"

	"carechat/internal/models"
)

// conversationCacheTTL bounds how long a conversation row is served from
// the in-process cache before being re-read from Postgres.
const conversationCacheTTL = 30 * time.Minute

// PostgresConversationStore persists conversations and messages in
// Postgres.  Lookups are fronted by a TTL cache keyed by (session, user);
// per-session append ordering is enforced with a row lock on the
// conversation inside the exchange transaction.
type PostgresConversationStore struct {
	db    *sql.DB
	cache *cache.Cache
}

// NewPostgresConversationStore constructs a conversation store from an
// existing sql.DB.  The caller manages the connection lifecycle.
func NewPostgresConversationStore(db *sql.DB) *PostgresConversationStore {
	return &PostgresConversationStore{
		db:    db,
		cache: cache.New(conversationCacheTTL, 10*time.Minute),
	}
}

// GetOrCreate returns the conversation for (sessionID, userID), inserting
// it on first use.  The upsert keeps concurrent first messages for the same
// session from racing into two rows.
func (s *PostgresConversationStore) GetOrCreate(ctx context.Context, sessionID, userID string) (*models.Conversation, error) {
	key := sessionKey(sessionID, userID)
	if cached, ok := s.cache.Get(key); ok {
		conv := cached.(models.Conversation)
		return &conv, nil
	}

	candidate := models.NewConversation(sessionID, userID)
	var conv models.Conversation
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO conversations (id, session_id, user_id, status, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6)
         ON CONFLICT (session_id, user_id) DO UPDATE SET updated_at = conversations.updated_at
         RETURNING id, session_id, user_id, status, created_at, updated_at`,
		candidate.ID, sessionID, userID, candidate.Status, candidate.CreatedAt, candidate.UpdatedAt,
	).Scan(&conv.ID, &conv.SessionID, &conv.UserID, &conv.Status, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create conversation: %w", err)
	}

	s.cache.Set(key, conv, cache.DefaultExpiration)
	return &conv, nil
}

// GetBySession looks up an existing conversation without creating one.
func (s *PostgresConversationStore) GetBySession(ctx context.Context, sessionID, userID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, user_id, status, created_at, updated_at
         FROM conversations
         WHERE session_id = $1 AND user_id = $2`,
		sessionID, userID,
	).Scan(&conv.ID, &conv.SessionID, &conv.UserID, &conv.Status, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// AppendExchange inserts both messages and bumps updated_at in a single
// transaction.  The SELECT ... FOR UPDATE on the conversation row
// serializes exchanges per session; either both inserts commit or neither
// does.
func (s *PostgresConversationStore) AppendExchange(ctx context.Context, conversationID string, userMsg, assistantMsg models.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin exchange: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM conversations WHERE id = $1 FOR UPDATE`, conversationID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	for _, m := range []models.Message{userMsg, assistantMsg} {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO messages (id, conversation_id, role, content, intent, handler, created_at)
             VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)`,
			m.ID, conversationID, m.Role, m.Content, string(m.Intent), m.Handler, m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = NOW() WHERE id = $1`, conversationID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit exchange: %w", err)
	}
	return nil
}

// ListMessages returns the conversation log in append order.
func (s *PostgresConversationStore) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, COALESCE(intent, ''), COALESCE(handler, ''), created_at
         FROM messages
         WHERE conversation_id = $1
         ORDER BY seq ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var log []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Intent, &m.Handler, &m.CreatedAt); err != nil {
			return nil, err
		}
		log = append(log, m)
	}
	return log, rows.Err()
}

// CloseIdle marks conversations untouched since the cutoff as closed.
func (s *PostgresConversationStore) CloseIdle(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET status = $1 WHERE status = $2 AND updated_at < $3`,
		models.ConversationClosed, models.ConversationActive, cutoff)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.cache.Flush()
	}
	return int(affected), nil
}

// PostgresTicketStore persists tickets in Postgres and publishes a
// ticket-created notification for the management dashboard.
type PostgresTicketStore struct {
	db       *sql.DB
	notifier *Notifier
}

// NewPostgresTicketStore constructs a ticket store.  The notifier may be
// nil, in which case creations are silent.
func NewPostgresTicketStore(db *sql.DB, notifier *Notifier) *PostgresTicketStore {
	return &PostgresTicketStore{db: db, notifier: notifier}
}

// Create inserts the ticket and notifies the ticket channel.
func (s *PostgresTicketStore) Create(ctx context.Context, ticket *models.Ticket) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tickets (id, user_id, category, subject, description, priority, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ticket.ID, ticket.UserID, ticket.Category, ticket.Subject,
		ticket.Description, ticket.Priority, ticket.Status, ticket.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	if s.notifier != nil {
		// Notification failures must not fail the request; the dashboard
		// catches up from the table on its next poll.
		_ = s.notifier.Notify(ctx, ticket.ID)
	}
	return nil
}

// ListByUser returns the user's tickets, newest first.
func (s *PostgresTicketStore) ListByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, category, subject, description, priority, status, created_at
         FROM tickets
         WHERE user_id = $1
         ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var t models.Ticket
		if err := rows.Scan(&t.ID, &t.UserID, &t.Category, &t.Subject, &t.Description, &t.Priority, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// PostgresAppointmentStore persists appointment records in Postgres.
type PostgresAppointmentStore struct {
	db *sql.DB
}

// NewPostgresAppointmentStore constructs an appointment store.
func NewPostgresAppointmentStore(db *sql.DB) *PostgresAppointmentStore {
	return &PostgresAppointmentStore{db: db}
}

// CreateOrUpdate upserts the appointment record by ID.
func (s *PostgresAppointmentStore) CreateOrUpdate(ctx context.Context, a *models.Appointment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments (id, user_id, doctor, when_phrase, action, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         ON CONFLICT (id) DO UPDATE
         SET doctor = EXCLUDED.doctor, when_phrase = EXCLUDED.when_phrase,
             action = EXCLUDED.action, status = EXCLUDED.status`,
		a.ID, a.UserID, a.Doctor, a.When, a.Action, a.Status, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert appointment: %w", err)
	}
	return nil
}

// FindActiveForUser returns the most recent confirmed appointment.
func (s *PostgresAppointmentStore) FindActiveForUser(ctx context.Context, userID string) (*models.Appointment, error) {
	var a models.Appointment
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, doctor, when_phrase, action, status, created_at
         FROM appointments
         WHERE user_id = $1 AND status = $2
         ORDER BY created_at DESC
         LIMIT 1`, userID, models.AppointmentConfirmed,
	).Scan(&a.ID, &a.UserID, &a.Doctor, &a.When, &a.Action, &a.Status, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByUser returns the user's appointment records, newest first.
func (s *PostgresAppointmentStore) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, doctor, when_phrase, action, status, created_at
         FROM appointments
         WHERE user_id = $1
         ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Appointment
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Doctor, &a.When, &a.Action, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
