package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carechat/internal/core"
	"carechat/internal/guardrail"
	"carechat/internal/intent"
	"carechat/internal/kb"
	"carechat/internal/store"
	"carechat/pkg"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	knowledgeBase, err := kb.Load("")
	require.NoError(t, err)

	conversations := store.NewMemoryConversationStore()
	tickets := store.NewMemoryTicketStore()
	appointments := store.NewMemoryAppointmentStore()

	engine := core.NewEngine(
		intent.NewClassifier(),
		core.NewHandlers(appointments, tickets, knowledgeBase),
		conversations,
		guardrail.NewFilter(),
	)

	app := fiber.New()
	chat := NewChatHandler(engine, 5*time.Second)
	app.Get("/health", NewHealthHandler().Handle)
	app.Post("/api/chat/message", chat.PostMessage)
	app.Get("/api/chat/history/:sessionID", chat.GetHistory)
	app.Get("/api/tickets/:userID", NewTicketHandler(tickets).ListByUser)
	app.Get("/api/appointments/:userID", NewAppointmentHandler(appointments).ListByUser)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, []byte) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestPostMessageRoundTrip(t *testing.T) {
	app := newTestApp(t)

	status, raw := postJSON(t, app, "/api/chat/message", pkg.ChatRequest{
		UserID:    "user-1",
		SessionID: "sess-1",
		Message:   "What are your office hours?",
	})
	require.Equal(t, fiber.StatusOK, status)

	var resp pkg.ChatResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, "information", resp.Intent)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Contains(t, resp.Reply, "Monday through Friday")
}

func TestPostMessageRequiresIdentifiers(t *testing.T) {
	app := newTestApp(t)

	status, _ := postJSON(t, app, "/api/chat/message", pkg.ChatRequest{
		Message: "hello",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestPostMessageEmptyTextIsBadRequest(t *testing.T) {
	app := newTestApp(t)

	status, raw := postJSON(t, app, "/api/chat/message", pkg.ChatRequest{
		UserID:    "user-1",
		SessionID: "sess-1",
		Message:   "   ",
	})
	require.Equal(t, fiber.StatusBadRequest, status)

	var resp pkg.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, string(core.KindInvalidInput), resp.Kind)
}

func TestGetHistoryAfterChat(t *testing.T) {
	app := newTestApp(t)

	status, _ := postJSON(t, app, "/api/chat/message", pkg.ChatRequest{
		UserID:    "user-1",
		SessionID: "sess-1",
		Message:   "I need a prescription refill",
	})
	require.Equal(t, fiber.StatusOK, status)

	req := httptest.NewRequest(fiber.MethodGet, "/api/chat/history/sess-1?user_id=user-1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var history pkg.HistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	assert.Equal(t, "sess-1", history.SessionID)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "user", string(history.Messages[0].Role))
	assert.Equal(t, "assistant", string(history.Messages[1].Role))
}

func TestGetHistoryUnknownSessionIs404(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/api/chat/history/nope?user_id=user-1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetHistoryRequiresUserID(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/api/chat/history/sess-1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListEndpointsReturnEmptySlices(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/tickets/nobody", "/api/appointments/nobody"} {
		req := httptest.NewRequest(fiber.MethodGet, path, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		assert.JSONEq(t, "[]", string(raw), path)
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
