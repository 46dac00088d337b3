package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidFormat    = errors.New("invalid format")
)
