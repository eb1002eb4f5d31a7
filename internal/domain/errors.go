package domain

import "errors"

var (
	// ErrInvalidInput marks input that violates the engine's input contract
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a missing owner or account
	ErrNotFound = errors.New("not found")
)
