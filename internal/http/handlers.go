// Package http exposes the chat pipeline to the outside world.  Transport
// stays thin: every route validates input, calls into internal/core or a
// store, and serializes the result.
package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"carechat/internal/core"
	"carechat/internal/models"
	"carechat/internal/store"
	"carechat/pkg"
)

// ChatHandler serves the message and history endpoints.
type ChatHandler struct {
	engine  *core.Engine
	timeout time.Duration
}

// NewChatHandler constructs a chat handler.  The timeout bounds one full
// classify-dispatch-filter round trip.
func NewChatHandler(engine *core.Engine, timeout time.Duration) *ChatHandler {
	return &ChatHandler{engine: engine, timeout: timeout}
}

// PostMessage handles POST /api/chat/message.
func (h *ChatHandler) PostMessage(c *fiber.Ctx) error {
	var req pkg.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(pkg.ErrorResponse{Error: "invalid request body"})
	}
	if req.UserID == "" || req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(pkg.ErrorResponse{Error: "user_id and session_id are required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	resp, err := h.engine.ProcessMessage(ctx, req.UserID, req.SessionID, req.Message)
	if err != nil {
		var engineErr *core.EngineError
		if errors.As(err, &engineErr) && engineErr.Kind == core.KindInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(pkg.ErrorResponse{
				Error: engineErr.Message,
				Kind:  string(engineErr.Kind),
			})
		}
		// Store unavailability: nothing was persisted, surface the apology.
		return c.Status(fiber.StatusServiceUnavailable).JSON(pkg.ChatResponse{
			Reply:     core.ApologyReply,
			SessionID: req.SessionID,
		})
	}

	return c.JSON(pkg.ChatResponse{
		Reply:      resp.Reply,
		Intent:     string(resp.Intent),
		Confidence: resp.Confidence,
		Source:     string(resp.Source),
		EntityID:   resp.EntityID,
		SessionID:  req.SessionID,
	})
}

// GetHistory handles GET /api/chat/history/:sessionID?user_id=...
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	sessionID := c.Params("sessionID")
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(pkg.ErrorResponse{Error: "user_id is required"})
	}

	conversation, messages, err := h.engine.History(c.Context(), sessionID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(pkg.ErrorResponse{Error: "no conversation for this session"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(pkg.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(pkg.HistoryResponse{
		SessionID: conversation.SessionID,
		UserID:    conversation.UserID,
		Status:    string(conversation.Status),
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
		Messages:  messages,
	})
}

// TicketHandler serves the ticket management read path.
type TicketHandler struct {
	tickets store.TicketStore
}

// NewTicketHandler constructs a ticket handler.
func NewTicketHandler(tickets store.TicketStore) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// ListByUser handles GET /api/tickets/:userID.
func (h *TicketHandler) ListByUser(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListByUser(c.Context(), c.Params("userID"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(pkg.ErrorResponse{Error: err.Error()})
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return c.JSON(tickets)
}

// AppointmentHandler serves the appointment read path.
type AppointmentHandler struct {
	appointments store.AppointmentStore
}

// NewAppointmentHandler constructs an appointment handler.
func NewAppointmentHandler(appointments store.AppointmentStore) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

// ListByUser handles GET /api/appointments/:userID.
func (h *AppointmentHandler) ListByUser(c *fiber.Ctx) error {
	appointments, err := h.appointments.ListByUser(c.Context(), c.Params("userID"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(pkg.ErrorResponse{Error: err.Error()})
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return c.JSON(appointments)
}

// HealthHandler responds with server health status.
type HealthHandler struct{}

// NewHealthHandler constructs a health handler.
func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// Handle responds with server health status.
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
