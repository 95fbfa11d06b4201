package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies an application error class independent of HTTP status.
type ErrorCode int

const (
	ErrorCode_INTERNAL ErrorCode = iota + 1
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_INVALID_STRATEGY
	ErrorCode_CHAT_CARDINALITY
	ErrorCode_SESSION_NOT_FOUND
	ErrorCode_MEETING_NOT_FOUND
	ErrorCode_LLM_FAILED
	ErrorCode_PERSISTENCE_FAILED
	ErrorCode_HTTP_OK
)

// String implements fmt.Stringer
func (c ErrorCode) String() string {
	switch c {
	case ErrorCode_INTERNAL:
		return "INTERNAL"
	case ErrorCode_INVALID_ARGUMENT:
		return "INVALID_ARGUMENT"
	case ErrorCode_NOT_FOUND:
		return "NOT_FOUND"
	case ErrorCode_INVALID_STRATEGY:
		return "INVALID_STRATEGY"
	case ErrorCode_CHAT_CARDINALITY:
		return "CHAT_CARDINALITY"
	case ErrorCode_SESSION_NOT_FOUND:
		return "SESSION_NOT_FOUND"
	case ErrorCode_MEETING_NOT_FOUND:
		return "MEETING_NOT_FOUND"
	case ErrorCode_LLM_FAILED:
		return "LLM_FAILED"
	case ErrorCode_PERSISTENCE_FAILED:
		return "PERSISTENCE_FAILED"
	case ErrorCode_HTTP_OK:
		return "OK"
	}
	return "UNKNOWN"
}

// AppError is the custom error type for the application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

// Discussion Errors

// ErrInvalidStrategy rejects unknown strategy names before any turn runs.
func ErrInvalidStrategy(strategy string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_STRATEGY,
		Message:  "Invalid discussion strategy",
	}.WithDetail("strategy", strategy)
}

// ErrChatCardinality rejects chat meetings whose roster is not exactly one persona.
func ErrChatCardinality(count int) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_CHAT_CARDINALITY,
		Message:  "Chat strategy requires exactly one participant",
	}.WithDetail("participant_count", fmt.Sprintf("%d", count))
}

func ErrSessionNotFound(sessionID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_SESSION_NOT_FOUND,
		Message:  "Chat session not found",
	}.WithDetail("session_id", sessionID)
}

func ErrMeetingNotFound(meetingID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_MEETING_NOT_FOUND,
		Message:  "Meeting not found",
	}.WithDetail("meeting_id", meetingID)
}

// Dependency Errors

// ErrLLMFailed marks an unrecoverable language-model call failure.
func ErrLLMFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_LLM_FAILED,
		Message:  "Language model call failed",
	}
}

// ErrPersistenceFailed marks an unrecoverable session store write failure.
func ErrPersistenceFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_PERSISTENCE_FAILED,
		Message:  "Failed to persist chat session",
	}
}
