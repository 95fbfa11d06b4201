package entities

import (
	"time"

	"github.com/google/uuid"
)

// TurnMessage is the exact unit exchanged with the language model.
type TurnMessage struct {
	Role    string `json:"role"` // system | user | assistant
	Content string `json:"content"`
}

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Display message types. These carry presentation metadata for the UI and are
// never sent to the model.
const (
	DisplayTypeParticipant   = "participant"
	DisplayTypeUser          = "user"
	DisplayTypeSummary       = "summary"
	DisplayTypeFinalResponse = "final_response"
	DisplayTypeSystem        = "system"
)

// DisplayMessage is the UI-facing counterpart of a TurnMessage.
type DisplayMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Name      string    `json:"name,omitempty"`
	Step      string    `json:"step,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession is the durable transcript of a discussion or chat. Messages is
// the model-facing log whose first element is the live system prompt;
// DisplayMessages is the UI-facing log. Both are append-only apart from the
// in-place system prompt at Messages[0].
type ChatSession struct {
	ID              uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID       string           `json:"meeting_id" gorm:"type:varchar(255);not null;index"`
	UserID          string           `json:"user_id" gorm:"type:varchar(255);not null;index"`
	Messages        []TurnMessage    `json:"messages" gorm:"type:jsonb;serializer:json"`
	DisplayMessages []DisplayMessage `json:"display_messages" gorm:"type:jsonb;serializer:json"`
	CreatedAt       time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// NewChatSession creates an empty session for a meeting and user.
func NewChatSession(meetingID, userID string) *ChatSession {
	return &ChatSession{
		ID:        uuid.New(),
		MeetingID: meetingID,
		UserID:    userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// SetSystemPrompt establishes or refreshes the system prompt at Messages[0].
// When a system message already exists it is overwritten only if the content
// differs, so unchanged context never triggers a redundant persistence write.
// Reports whether the session was modified.
func (s *ChatSession) SetSystemPrompt(prompt string) bool {
	if len(s.Messages) > 0 && s.Messages[0].Role == RoleSystem {
		if s.Messages[0].Content == prompt {
			return false
		}
		s.Messages[0].Content = prompt
		return true
	}
	s.Messages = append([]TurnMessage{{Role: RoleSystem, Content: prompt}}, s.Messages...)
	return true
}

// SystemPrompt returns the current system prompt, or "" if none is set.
func (s *ChatSession) SystemPrompt() string {
	if len(s.Messages) > 0 && s.Messages[0].Role == RoleSystem {
		return s.Messages[0].Content
	}
	return ""
}

// AppendMessage appends to the model-facing log.
func (s *ChatSession) AppendMessage(role, content string) {
	s.Messages = append(s.Messages, TurnMessage{Role: role, Content: content})
}

// AppendDisplay appends to the UI-facing log and returns the stored entry.
func (s *ChatSession) AppendDisplay(role, content, msgType, name, step string) DisplayMessage {
	dm := DisplayMessage{
		Role:      role,
		Content:   content,
		Type:      msgType,
		Name:      name,
		Step:      step,
		Timestamp: time.Now(),
	}
	s.DisplayMessages = append(s.DisplayMessages, dm)
	return dm
}

// LastDisplayTimestamp returns the timestamp of the newest display message.
func (s *ChatSession) LastDisplayTimestamp() time.Time {
	if len(s.DisplayMessages) == 0 {
		return time.Time{}
	}
	return s.DisplayMessages[len(s.DisplayMessages)-1].Timestamp
}
