package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/hybridtechie/roundtable-ai/internal/adapter/dto"
	"github.com/hybridtechie/roundtable-ai/internal/usecase/chat"
)

// ChatHandler serves the chat strategy and stored session retrieval.
type ChatHandler struct {
	service *chat.Service
	logger  *zap.Logger
}

func NewChatHandler(service *chat.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

// Send handles POST /v1/chat.
func (h *ChatHandler) Send(c echo.Context) error {
	var req dto.ChatRequest
	if err := BindAndValidate(c, &req); err != nil {
		return HandleError(c, h.logger, err)
	}

	reply, err := h.service.Send(c.Request().Context(), req.MeetingID, req.UserID, req.UserName, req.SessionID, req.Message)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	return HandleSuccess(c, http.StatusOK, dto.ChatResponse{
		SessionID: reply.SessionID,
		Answer:    reply.Answer,
		Timestamp: reply.Timestamp,
	})
}

// GetSession handles GET /v1/chat-sessions/:id.
func (h *ChatHandler) GetSession(c echo.Context) error {
	session, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(c, h.logger, err)
	}
	return HandleSuccess(c, http.StatusOK, dto.NewChatSessionResponse(session))
}

// DeleteSession handles DELETE /v1/chat-sessions/:id.
func (h *ChatHandler) DeleteSession(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return HandleError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
