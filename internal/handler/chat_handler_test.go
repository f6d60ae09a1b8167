package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

type chatServiceMock struct {
	lastReq models.ChatRequest
	err     error
}

func (m *chatServiceMock) Reply(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	session := req.SessionID
	if session == "" {
		session = "generated"
	}
	return &models.ChatResponse{
		Choices:   []models.ChatChoice{{Message: models.ChatMessage{Role: models.ChatRoleAssistant, Content: "Hello!"}}},
		Intent:    "greeting",
		SessionID: session,
	}, nil
}

type clockMock struct{}

func (clockMock) Info() models.TimeInfo {
	return models.TimeInfo{CurrentTime: "2024-05-01T10:30:00Z", TimeZone: "UTC"}
}

func TestChatHandlerUsesHeaderSession(t *testing.T) {
	svc := &chatServiceMock{}
	handler := NewChatHandler(svc, clockMock{})

	c, w := newJSONContext(http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hi"}]}`)
	c.Request.Header.Set(SessionHeader, "sess-1")
	handler.Chat(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-1", svc.lastReq.SessionID)
	assert.Equal(t, "sess-1", w.Header().Get(SessionHeader))
	assert.Contains(t, w.Body.String(), `"intent":"greeting"`)
	assert.Contains(t, w.Body.String(), `"content":"Hello!"`)
}

func TestChatHandlerBodySessionWins(t *testing.T) {
	svc := &chatServiceMock{}
	handler := NewChatHandler(svc, clockMock{})

	c, w := newJSONContext(http.MethodPost, "/api/chat", `{"sessionId":"body","messages":[{"role":"user","content":"hi"}]}`)
	c.Request.Header.Set(SessionHeader, "header")
	handler.Chat(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body", svc.lastReq.SessionID)
}

func TestChatHandlerRejectsBadTranscript(t *testing.T) {
	handler := NewChatHandler(&chatServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "messages are required")}, clockMock{})

	c, w := newJSONContext(http.MethodPost, "/api/chat", `{"messages":[]}`)
	handler.Chat(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "messages are required", decodeError(t, w))
}

func TestChatHandlerTime(t *testing.T) {
	handler := NewChatHandler(&chatServiceMock{}, clockMock{})

	c, w := newJSONContext(http.MethodGet, "/api/time", "")
	handler.Time(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"currentTime":"2024-05-01T10:30:00Z","timeZone":"UTC"}`, w.Body.String())
}
