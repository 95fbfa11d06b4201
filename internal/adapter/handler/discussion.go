package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/hybridtechie/roundtable-ai/errors"
	"github.com/hybridtechie/roundtable-ai/internal/adapter/dto"
	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
	"github.com/hybridtechie/roundtable-ai/internal/domain/repositories"
	"github.com/hybridtechie/roundtable-ai/internal/usecase/discussion"
)

// DiscussionHandler streams discussion runs over server-sent events.
type DiscussionHandler struct {
	service  *discussion.Service
	meetings repositories.MeetingResolver
	logger   *zap.Logger
}

func NewDiscussionHandler(service *discussion.Service, meetings repositories.MeetingResolver, logger *zap.Logger) *DiscussionHandler {
	return &DiscussionHandler{service: service, meetings: meetings, logger: logger}
}

// Discuss handles POST /v1/meetings/:id/discuss. The meeting is resolved and
// validated before any stream bytes are written, so client errors still
// arrive as ordinary JSON responses.
func (h *DiscussionHandler) Discuss(c echo.Context) error {
	var req dto.DiscussRequest
	if err := BindAndValidate(c, &req); err != nil {
		return HandleError(c, h.logger, err)
	}

	meetingID := c.Param("id")
	meeting, err := h.meetings.Resolve(c.Request().Context(), meetingID, req.UserID)
	if err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return HandleError(c, h.logger, apperrors.ErrMeetingNotFound(meetingID))
		}
		return HandleError(c, h.logger, apperrors.ErrInternal(err))
	}
	if meeting.Strategy == entities.StrategyChat {
		return HandleError(c, h.logger,
			apperrors.ErrInvalidArgument("chat meetings are served by POST /v1/chat, not the discussion stream"))
	}
	if len(meeting.Participants) == 0 {
		return HandleError(c, h.logger, apperrors.ErrInvalidArgument("meeting has no participants"))
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)

	emitter := newSSEEmitter(resp)
	if err := h.service.Run(c.Request().Context(), meeting, emitter); err != nil {
		// The terminal error event has already been pushed to the stream.
		h.logger.Error("discussion stream ended with error",
			zap.String("meeting_id", meetingID),
			zap.Error(err),
		)
	}
	return nil
}

// sseEmitter writes events in SSE wire framing and flushes after each one so
// the client observes turns as they happen.
type sseEmitter struct {
	resp *echo.Response
}

func newSSEEmitter(resp *echo.Response) *sseEmitter {
	return &sseEmitter{resp: resp}
}

func (e *sseEmitter) Emit(event discussion.Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	if _, err := fmt.Fprintf(e.resp, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return fmt.Errorf("failed to write %s event: %w", event.Type, err)
	}
	e.resp.Flush()
	return nil
}
