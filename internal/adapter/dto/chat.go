package dto

import (
	"time"

	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
)

// ChatRequest is one user message into a chat meeting. SessionID is empty on
// the first message of a conversation.
type ChatRequest struct {
	MeetingID string `json:"meeting_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	UserName  string `json:"user_name" validate:"required"`
	SessionID string `json:"session_id,omitempty" validate:"omitempty,uuid"`
	Message   string `json:"message" validate:"required"`
}

type ChatResponse struct {
	SessionID string    `json:"session_id"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatSessionResponse struct {
	ID              string                    `json:"id"`
	MeetingID       string                    `json:"meeting_id"`
	UserID          string                    `json:"user_id"`
	DisplayMessages []entities.DisplayMessage `json:"display_messages"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

func NewChatSessionResponse(session *entities.ChatSession) ChatSessionResponse {
	return ChatSessionResponse{
		ID:              session.ID.String(),
		MeetingID:       session.MeetingID,
		UserID:          session.UserID,
		DisplayMessages: session.DisplayMessages,
		CreatedAt:       session.CreatedAt,
		UpdatedAt:       session.UpdatedAt,
	}
}
