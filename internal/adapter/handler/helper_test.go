package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/hybridtechie/roundtable-ai/errors"
)

func TestHandleErrorMapsAppErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "invalid strategy", err: apperrors.ErrInvalidStrategy("debate"), wantStatus: http.StatusBadRequest, wantCode: "INVALID_STRATEGY"},
		{name: "cardinality", err: apperrors.ErrChatCardinality(3), wantStatus: http.StatusBadRequest, wantCode: "CHAT_CARDINALITY"},
		{name: "session not found", err: apperrors.ErrSessionNotFound("s1"), wantStatus: http.StatusNotFound, wantCode: "SESSION_NOT_FOUND"},
		{name: "meeting not found", err: apperrors.ErrMeetingNotFound("m1"), wantStatus: http.StatusNotFound, wantCode: "MEETING_NOT_FOUND"},
		{name: "llm failure", err: apperrors.ErrLLMFailed(errors.New("down")), wantStatus: http.StatusBadGateway, wantCode: "LLM_FAILED"},
		{name: "unknown error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := HandleError(c, zap.NewNop(), tt.err); err != nil {
				t.Fatalf("HandleError: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}
