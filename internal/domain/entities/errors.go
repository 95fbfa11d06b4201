package entities

import "errors"

// Domain errors
var (
	// Strategy / meeting errors
	ErrInvalidStrategy = errors.New("invalid strategy")
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrEmptyRoster     = errors.New("meeting has no participants")

	// Chat errors
	ErrChatCardinality = errors.New("chat strategy requires exactly one participant")

	// Session errors
	ErrSessionNotFound = errors.New("chat session not found")

	// Generic errors
	ErrInvalidRequest = errors.New("invalid request")
)
