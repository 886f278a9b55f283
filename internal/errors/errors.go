package errors

import "errors"

// Common errors used throughout the application
var (
	// Store errors
	ErrMemoNotFound        = errors.New("memo not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrDatabaseQuery       = errors.New("database query failed")

	// Validation errors
	ErrInvalidMemoID    = errors.New("invalid memo ID")
	ErrEmptyMemo        = errors.New("memo has no title or content")
	ErrEmptyQuery       = errors.New("search query cannot be empty")
	ErrInvalidBoolean   = errors.New("invalid boolean value (use true/false)")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
)
