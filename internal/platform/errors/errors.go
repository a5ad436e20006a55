package apperrors

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrStorage       = errors.New("storage failure")
	ErrForeignData   = errors.New("data belongs to another user")
	ErrNotConfigured = errors.New("not configured")
)
