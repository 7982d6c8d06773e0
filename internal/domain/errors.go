package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when no live session backs the request.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrSearchDisabled is returned by search when no index is configured.
	ErrSearchDisabled = errors.New("search is not configured")
)

// ValidationError reports a single invalid input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
