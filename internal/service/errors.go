package service

import (
	"errors"
	"fmt"

	"devnotes/internal/notes"
)

// Sentinels handlers map onto statuses: ErrInvalidInput 400, ErrUnauthorized
// 401, ErrNotFound 404, ErrConflict 409. Anything else is a 500.
var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound also covers notes owned by another user.
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict is a taken email.
	ErrConflict = errors.New("conflict")
)

// ValidationError rejects one request field. Field is the JSON name the
// client sent, e.g. "title" or "currentPassword".
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// unauthorized keeps reason for the logs; clients only see a 401.
func unauthorized(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrUnauthorized)
}

func noteNotFound(id string) error {
	return fmt.Errorf("note %s: %w", id, ErrNotFound)
}

// fromDraftError lifts a notes.Draft validation failure into this package's
// taxonomy so handlers report the offending field.
func fromDraftError(err error) error {
	var ve *notes.ValidationError
	if errors.As(err, &ve) {
		return invalid(ve.Field, ve.Message)
	}
	return fmt.Errorf("%v: %w", err, ErrInvalidInput)
}
