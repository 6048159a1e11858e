package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no usable link exists for the short code.
	ErrNotFound = errors.New("short code not found")

	// ErrExpired indicates the link exists but its expiry has passed.
	ErrExpired = errors.New("short link expired")

	// ErrAliasConflict indicates the requested custom alias is already taken,
	// including by an inactive or soft-deleted link. Codes are never recycled.
	ErrAliasConflict = errors.New("custom alias already exists")

	// ErrCodeGenerationExhausted indicates every random candidate collided.
	// Collisions this persistent signal a near-full keyspace or a generator
	// defect, so the create fails instead of retrying further.
	ErrCodeGenerationExhausted = errors.New("failed to generate unique short code")

	// ErrDuplicateCode is returned by repositories when the short_code unique
	// constraint is violated on insert.
	ErrDuplicateCode = errors.New("short code already exists")
)

// ValidationError reports a malformed input with field-level detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-level validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
