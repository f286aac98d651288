package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"carechat/internal/models"
)

// conversationState is one conversation with its log, guarded by its own
// lock so appends on different sessions never contend.
type conversationState struct {
	mu   sync.Mutex
	conv models.Conversation
	log  []models.Message
}

// MemoryConversationStore keeps conversation logs in process memory with
// lifetime equal to the process.  The store-level lock only guards the
// lookup maps; all per-conversation state is serialized by the
// conversation's own lock.
type MemoryConversationStore struct {
	mu        sync.RWMutex
	bySession map[string]*conversationState // session|user -> state
	byID      map[string]*conversationState
}

// NewMemoryConversationStore constructs an empty conversation store.
func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{
		bySession: make(map[string]*conversationState),
		byID:      make(map[string]*conversationState),
	}
}

func sessionKey(sessionID, userID string) string {
	return sessionID + "|" + userID
}

func (s *MemoryConversationStore) lookup(conversationID string) (*conversationState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.byID[conversationID]
	return state, ok
}

// GetOrCreate returns the conversation for the session, creating it lazily.
func (s *MemoryConversationStore) GetOrCreate(ctx context.Context, sessionID, userID string) (*models.Conversation, error) {
	key := sessionKey(sessionID, userID)

	s.mu.Lock()
	state, ok := s.bySession[key]
	if !ok {
		state = &conversationState{conv: *models.NewConversation(sessionID, userID)}
		s.bySession[key] = state
		s.byID[state.conv.ID] = state
	}
	s.mu.Unlock()

	state.mu.Lock()
	defer state.mu.Unlock()
	copied := state.conv
	return &copied, nil
}

// GetBySession looks up an existing conversation without creating one.
func (s *MemoryConversationStore) GetBySession(ctx context.Context, sessionID, userID string) (*models.Conversation, error) {
	s.mu.RLock()
	state, ok := s.bySession[sessionKey(sessionID, userID)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	copied := state.conv
	return &copied, nil
}

// AppendExchange appends the user and assistant messages under the
// conversation's own lock.  The lock covers both appends, so an exchange is
// never interleaved with another request on the same session while other
// sessions append in parallel.
func (s *MemoryConversationStore) AppendExchange(ctx context.Context, conversationID string, userMsg, assistantMsg models.Message) error {
	state, ok := s.lookup(conversationID)
	if !ok {
		return ErrNotFound
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	state.log = append(state.log, userMsg, assistantMsg)
	state.conv.UpdatedAt = time.Now().UTC()
	return nil
}

// ListMessages returns the conversation log in append order.
func (s *MemoryConversationStore) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	state, ok := s.lookup(conversationID)
	if !ok {
		return nil, ErrNotFound
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	out := make([]models.Message, len(state.log))
	copy(out, state.log)
	return out, nil
}

// CloseIdle marks conversations untouched since the cutoff as closed.
// Nothing is ever deleted.
func (s *MemoryConversationStore) CloseIdle(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.RLock()
	states := make([]*conversationState, 0, len(s.byID))
	for _, state := range s.byID {
		states = append(states, state)
	}
	s.mu.RUnlock()

	closed := 0
	for _, state := range states {
		state.mu.Lock()
		if state.conv.Status == models.ConversationActive && state.conv.UpdatedAt.Before(cutoff) {
			state.conv.Status = models.ConversationClosed
			closed++
		}
		state.mu.Unlock()
	}
	return closed, nil
}

// MemoryTicketStore keeps tickets in process memory.
type MemoryTicketStore struct {
	mu      sync.RWMutex
	tickets map[string][]models.Ticket // user ID -> tickets
}

// NewMemoryTicketStore constructs an empty ticket store.
func NewMemoryTicketStore() *MemoryTicketStore {
	return &MemoryTicketStore{tickets: make(map[string][]models.Ticket)}
}

// Create stores a new ticket for its user.
func (s *MemoryTicketStore) Create(ctx context.Context, ticket *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickets[ticket.UserID] = append(s.tickets[ticket.UserID], *ticket)
	return nil
}

// ListByUser returns the user's tickets, newest first.
func (s *MemoryTicketStore) ListByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Ticket, len(s.tickets[userID]))
	copy(out, s.tickets[userID])
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MemoryAppointmentStore keeps appointment records in process memory.
type MemoryAppointmentStore struct {
	mu           sync.RWMutex
	appointments map[string][]models.Appointment // user ID -> records
}

// NewMemoryAppointmentStore constructs an empty appointment store.
func NewMemoryAppointmentStore() *MemoryAppointmentStore {
	return &MemoryAppointmentStore{appointments: make(map[string][]models.Appointment)}
}

// CreateOrUpdate inserts the appointment or replaces the record with the
// same ID.
func (s *MemoryAppointmentStore) CreateOrUpdate(ctx context.Context, appointment *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.appointments[appointment.UserID]
	for i := range records {
		if records[i].ID == appointment.ID {
			records[i] = *appointment
			return nil
		}
	}
	s.appointments[appointment.UserID] = append(records, *appointment)
	return nil
}

// FindActiveForUser returns the most recent confirmed appointment.
func (s *MemoryAppointmentStore) FindActiveForUser(ctx context.Context, userID string) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active *models.Appointment
	for i := range s.appointments[userID] {
		a := s.appointments[userID][i]
		if a.Status != models.AppointmentConfirmed {
			continue
		}
		if active == nil || a.CreatedAt.After(active.CreatedAt) {
			copied := a
			active = &copied
		}
	}
	if active == nil {
		return nil, ErrNotFound
	}
	return active, nil
}

// ListByUser returns the user's appointment records, newest first.
func (s *MemoryAppointmentStore) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Appointment, len(s.appointments[userID]))
	copy(out, s.appointments[userID])
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
