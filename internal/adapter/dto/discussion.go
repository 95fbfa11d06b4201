package dto

// DiscussRequest starts a streamed discussion run for a meeting.
type DiscussRequest struct {
	UserID string `json:"user_id" validate:"required"`
}
