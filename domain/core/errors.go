package core

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrIntervalNotFound = fmt.Errorf("%w: activity interval", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("%w: user", ErrNotFound)
	ErrClientNotFound   = fmt.Errorf("%w: client", ErrNotFound)

	// Validation errors (user-correctable manual-entry input)
	ErrValidation      = errors.New("validation failed")
	ErrMissingField    = fmt.Errorf("%w: missing field", ErrValidation)
	ErrInvalidDuration = fmt.Errorf("%w: invalid duration", ErrValidation)
	ErrInvalidDate     = fmt.Errorf("%w: invalid date", ErrValidation)

	// Conflict errors (overlapping manual entry)
	ErrConflict = errors.New("time conflict")

	// Recovered locally via the fallback path; never surfaced to callers.
	ErrClassificationUnavailable = errors.New("classification unavailable")

	// Persistence failures
	ErrStorage = errors.New("storage failure")

	// Tracking session transitions
	ErrSessionRunning    = errors.New("tracking session already running")
	ErrSessionNotRunning = errors.New("no tracking session running")
)

// Error constructors with context
func NewMissingFieldError(field string) error {
	return fmt.Errorf("%w: %s is required", ErrMissingField, field)
}

func NewInvalidDurationError(minutes float64) error {
	return fmt.Errorf("%w: %.2f minutes (must be > 0 and <= 1440)", ErrInvalidDuration, minutes)
}

func NewConflictError(start, end time.Time) error {
	return fmt.Errorf("%w: overlaps with an existing task from %s to %s",
		ErrConflict, start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04"))
}

func NewStorageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}
