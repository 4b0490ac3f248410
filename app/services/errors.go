package services

import (
	"errors"
	"fmt"
)

// Base error kinds. Controllers branch on these with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrRender       = errors.New("render failed")
	ErrValidation   = errors.New("validation failed")
)

var (
	ErrCustomerNotFound   = fmt.Errorf("customer %w", ErrNotFound)
	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrCustomerExists     = fmt.Errorf("customer already exists: %w", ErrConflict)
	ErrUsernameTaken      = fmt.Errorf("username already exists: %w", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrNotOwner           = fmt.Errorf("not the order owner: %w", ErrUnauthorized)
)

// ValidationError carries field-level messages and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
