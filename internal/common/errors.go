// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrValidation = errors.New("validation error")

	// Account lifecycle errors.
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrAlreadyVerified    = errors.New("user already verified")
	ErrInvalidCode        = errors.New("invalid otp")
	ErrCodeExpired        = errors.New("otp expired")
	ErrUnverified         = errors.New("email not verified")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Notification errors.
	ErrEmailDelivery = errors.New("failed to send otp email")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
