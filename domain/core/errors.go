package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrLabelNotFound   = fmt.Errorf("%w: parameter label", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)
	ErrOutcomeNotFound = fmt.Errorf("%w: outcome", ErrNotFound)
	ErrRunNotFound     = fmt.Errorf("%w: run", ErrNotFound)

	// Input errors
	ErrEmptyTable       = errors.New("table has no data rows")
	ErrLengthMismatch   = errors.New("value and weight vectors differ in length")
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewLabelNotFoundError(label string) error {
	return fmt.Errorf("%w %q", ErrLabelNotFound, label)
}

func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w %q", ErrColumnNotFound, column)
}

func NewRunNotFoundError(runID string) error {
	return fmt.Errorf("%w %q", ErrRunNotFound, runID)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyTable) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrInsufficientData)
}
