// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Model errors.
	ErrModelNotReady  = errors.New("model not fitted or loaded")
	ErrModelCorrupted = errors.New("model artifacts corrupted")
	ErrNoSources      = errors.New("no prediction sources available")

	// Training errors.
	ErrNoSamples            = errors.New("no training samples")
	ErrNoFeatures           = errors.New("training samples contain no usable tokens")
	ErrMissingDataset       = errors.New("base dataset not found")
	ErrLabelMismatch        = errors.New("label set mismatch after save/load")
	ErrTooFewClasses        = errors.New("at least two classes are required")
	ErrSampleLengthMismatch = errors.New("texts and labels must have the same length")

	// Database errors.
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error represents a transient condition the
// caller may retry, as opposed to a permanent failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrModelNotReady)
}
