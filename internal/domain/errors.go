package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Task errors
	ErrTaskNotFound        = errors.New("task not found")
	ErrConcurrencyConflict = errors.New("task was modified by another request")
	ErrInvalidOperation    = errors.New("invalid operation")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already registered")

	// Version token errors
	ErrMissingVersion   = errors.New("version token is required")
	ErrMalformedVersion = errors.New("version token is malformed")

	// Validation errors
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
)
