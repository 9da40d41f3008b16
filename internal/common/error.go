// Package common defines shared constants and sentinel errors used across
// the relay server and its terminal client. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Relay pipeline errors.
	ErrorPersistence = errors.New("message could not be stored")
	ErrorGeneration  = errors.New("reply generation failed")

	// Auth errors (invalid or malformed token). Both wrap ErrorUnauthorized.
	ErrInvalidToken = fmt.Errorf("invalid token: %w", ErrorUnauthorized)
	ErrTokenExpired = fmt.Errorf("token expired: %w", ErrorUnauthorized)
)
