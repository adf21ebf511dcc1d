package domain

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidID is returned by stores when an identifier is not in the
	// store's identifier format.
	ErrInvalidID = errors.New("malformed identifier")

	ErrMissingID      = errors.New("missing _id")
	ErrNoUpdateFields = errors.New("no update field(s) sent")
)

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
