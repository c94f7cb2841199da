package models

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match on these with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")
)

var (
	// Validation errors
	ErrInvalidBet        = fmt.Errorf("%w: bet must be a non-negative number of points", ErrValidation)
	ErrInvalidDate       = fmt.Errorf("%w: date must be in YYYY-MM-DD form", ErrValidation)
	ErrDuplicateUsername = fmt.Errorf("%w: username already exists", ErrValidation)
	ErrInvalidField      = fmt.Errorf("%w: invalid record field", ErrValidation)

	// Lookup errors
	ErrPlayerNotFound = fmt.Errorf("player %w", ErrNotFound)

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid or expired session token")

	// Game errors
	ErrNotDealt = errors.New("cards have not been dealt")
)

// Persistence wraps an underlying storage failure so that it matches both
// ErrPersistence and the original cause.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
