package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
	"github.com/noah-isme/admissions-crm-api/pkg/response"
)

// SessionHeader carries the chat session id when the body does not.
const SessionHeader = "X-Session-ID"

type chatService interface {
	Reply(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

type timeService interface {
	Info() models.TimeInfo
}

// ChatHandler serves the assistant and clock endpoints.
type ChatHandler struct {
	chat  chatService
	clock timeService
}

// NewChatHandler constructs ChatHandler.
func NewChatHandler(chat chatService, clock timeService) *ChatHandler {
	return &ChatHandler{chat: chat, clock: clock}
}

// Chat godoc
// @Summary Ask the admissions assistant
// @Description Classifies the last user message and returns one assistant reply. Reuse sessionId to keep scraped page context between turns.
// @Tags Chat
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Chat session"
// @Param payload body models.ChatRequest true "Chat transcript"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} response.ErrorBody
// @Router /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chat payload"))
		return
	}
	if req.SessionID == "" {
		req.SessionID = c.GetHeader(SessionHeader)
	}

	res, err := h.chat.Reply(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header(SessionHeader, res.SessionID)
	response.OK(c, res)
}

// Time godoc
// @Summary Current server time
// @Tags Chat
// @Produce json
// @Success 200 {object} models.TimeInfo
// @Router /time [get]
func (h *ChatHandler) Time(c *gin.Context) {
	response.OK(c, h.clock.Info())
}
