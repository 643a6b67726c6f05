package peerchat

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota

	// User-facing operation failures
	ErrorCatalogUnavailable
	ErrorJoinFailed
	ErrorSendFailed
	ErrorModerationFailed

	// Background failures, recovered locally and never fatal
	ErrorPollFailed
	ErrorPresenceFailed

	// Client-side usage errors
	ErrorInvalidConfig
	ErrorEngineClosed
	ErrorJoinInProgress
	ErrorAlreadyJoined
	ErrorJoinSuperseded
	ErrorNotActive
	ErrorMessageNotFound
	ErrorMessageReported
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorCatalogUnavailable:
		return "catalog_unavailable"
	case ErrorJoinFailed:
		return "join_failed"
	case ErrorSendFailed:
		return "send_failed"
	case ErrorModerationFailed:
		return "moderation_failed"
	case ErrorPollFailed:
		return "poll_failed"
	case ErrorPresenceFailed:
		return "presence_failed"
	case ErrorInvalidConfig:
		return "invalid_config"
	case ErrorEngineClosed:
		return "engine_closed"
	case ErrorJoinInProgress:
		return "join_in_progress"
	case ErrorAlreadyJoined:
		return "already_joined"
	case ErrorJoinSuperseded:
		return "join_superseded"
	case ErrorNotActive:
		return "not_active"
	case ErrorMessageNotFound:
		return "message_not_found"
	case ErrorMessageReported:
		return "message_reported"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// EngineError is a structured error with code and context.
type EngineError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s (wrapped: %v)", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *EngineError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface for error comparison.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new EngineError with the given code and message.
func NewError(code ErrorCode, message string) *EngineError {
	return &EngineError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with an EngineError.
func WrapError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:    code,
		Message: message,
		Wrapped: err,
	}
}

// CodeOf extracts the ErrorCode from an error, or ErrorUnknown if the error
// is not an EngineError.
func CodeOf(err error) ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ErrorUnknown
}

// IsUsageError checks whether an error reflects incorrect use of the engine
// rather than a transport failure.
func IsUsageError(err error) bool {
	switch CodeOf(err) {
	case ErrorInvalidConfig, ErrorEngineClosed, ErrorJoinInProgress,
		ErrorAlreadyJoined, ErrorNotActive, ErrorMessageNotFound, ErrorMessageReported:
		return true
	default:
		return false
	}
}
