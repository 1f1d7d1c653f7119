package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Transport errors returned by the remote key-value client.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrInvalidKey     = errors.New("invalid key")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrInvalidDate    = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidTheme   = errors.New("invalid theme")

	// Profile lifecycle errors.
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrDefaultProfile  = errors.New("default profile cannot be deleted")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
