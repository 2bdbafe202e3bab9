package provider

import (
	"errors"
	"fmt"
)

// Common error codes
const (
	ErrCodeNotFound         = "not_found"
	ErrCodeInvalidData      = "invalid_data"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNetworkError     = "network_error"
	ErrCodeServerError      = "server_error"
	ErrCodeEmptyBody        = "empty_body"
	ErrCodeRetriesExhausted = "retries_exhausted"
)

// Sentinel errors matched with errors.Is
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// FetchError describes why an event produced no normalized record
type FetchError struct {
	EventID string // Provider event id
	Code    string // Error code (e.g., "not_found")
	Message string // Error message
	Err     error  // Underlying error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("event %s: %s: %s (%s)", e.EventID, e.Code, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("event %s: %s: %s", e.EventID, e.Code, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Terminal reports whether retrying the request cannot change the outcome
func (e *FetchError) Terminal() bool {
	return e.Code == ErrCodeNotFound || e.Code == ErrCodeInvalidData
}

func newFetchError(eventID, code, message string, err error) *FetchError {
	return &FetchError{
		EventID: eventID,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
