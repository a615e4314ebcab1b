// Package validation holds the error returned when user input is rejected
// locally, before any request is issued.
package validation

import (
	"errors"
	"fmt"
)

// Error describes a rejected input. Message is suitable for showing to the user.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// New returns a validation error for field.
func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// Is reports whether err is, or wraps, a validation error.
func Is(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

// Message returns the user-facing message of a validation error, or "" when err
// is not one.
func Message(err error) string {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Message
	}
	return ""
}
