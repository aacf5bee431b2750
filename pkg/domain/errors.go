package domain

import (
	"errors"
	"fmt"
)

// ValidationError is returned when input fails a business validation rule.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// NotFoundError is returned when an entity does not exist.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

// InvalidStateError is returned when a state transition is not allowed.
type InvalidStateError struct {
	From string
	To   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state transition from %q to %q", e.From, e.To)
}

// NewInvalidStateError creates a new InvalidStateError.
func NewInvalidStateError(from, to string) error {
	return &InvalidStateError{From: from, To: to}
}

// ConflictError is returned when a concurrent modification or uniqueness rule is violated.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflictError creates a new ConflictError.
func NewConflictError(message string) error {
	return &ConflictError{Message: message}
}

// UnauthorizedError is returned when a caller cannot be authenticated.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// NewUnauthorizedError creates a new UnauthorizedError.
func NewUnauthorizedError(message string) error {
	return &UnauthorizedError{Message: message}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsInvalidState reports whether err is (or wraps) an InvalidStateError.
func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
