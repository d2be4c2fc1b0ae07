package service

import "errors"

// Sentinel errors for the user-facing failure taxonomy. Controllers map
// these onto HTTP statuses; background jobs only ever log them.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidRange    = errors.New("invalid date range")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyRefunded = errors.New("expense already refunded")
)
