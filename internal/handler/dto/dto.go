// Package dto provides Data Transfer Objects for API requests and responses.
//
// Requests carry a Validate method for structural checks; responses are
// built from model structs by the ToXResponse converters so the wire shape
// never depends on persistence types.
package dto

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ValidationError describes a structurally invalid request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ParseID checks that value is a UUID and returns it in canonical form.
func ParseID(field, value string) (string, error) {
	if value == "" {
		return "", invalid(field, "is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return "", invalid(field, "must be a UUID")
	}
	return id.String(), nil
}
