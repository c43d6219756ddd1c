package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these are business logic errors that should be translated
// to appropriate HTTP status codes by the handler layer

var (
	// Input errors
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrLimitExceeded = errors.New("platform limit reached for current plan")

	// Platform link errors
	ErrUsernameNotFound = errors.New("username not found on platform")
	ErrNotLinked        = errors.New("platform is not linked")
	ErrAlreadyLinked    = errors.New("platform is already linked")
	ErrNoPlatformData   = errors.New("no data returned from platform")
	ErrSyncFailed       = errors.New("platform sync failed")

	// Adapter errors, never surfaced past the platform service
	ErrProfileNotFound = errors.New("profile not found")
	ErrScrapeFailed    = errors.New("could not extract statistics from page")

	// Catalog errors
	ErrCourseNotFound   = errors.New("course not found")
	ErrQuestionNotFound = errors.New("question not found")

	// General errors
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("admin access required")
)

// DomainError wraps an error with additional context
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with the given error and message
func NewDomainError(err error, message string) *DomainError {
	return &DomainError{
		Err:     err,
		Message: message,
	}
}

// LimitError reports a plan limit violation together with the counts the
// caller needs to render it.
type LimitError struct {
	Current int
	Limit   int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("platform limit reached: %d of %d linked", e.Current, e.Limit)
}

func (e *LimitError) Unwrap() error {
	return ErrLimitExceeded
}
