package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation indicates the caller supplied an unusable payload.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates the actor does not own the resource.
	ErrUnauthorized = errors.New("not authorized")
	// ErrForbidden indicates the actor lacks the admin role.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError with a formatted message.
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
