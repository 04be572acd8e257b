package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Query errors
	ErrEmptyQuery  = errors.New("query is empty")
	ErrInvalidRole = errors.New("invalid history role")

	// Document errors
	ErrEmptyDocument = errors.New("document has no extractable text")
	ErrEmptyContent  = errors.New("chunk content is empty")

	// Store errors
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrMalformedRecord   = errors.New("malformed store record")

	// File errors
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("invalid file extension")

	// Validation errors
	ErrMissingField = errors.New("required field is missing")
)

// GenerationError marks a completion-provider failure. The chat usecase
// converts it to the configured fallback answer at its boundary, so tests
// can still distinguish a failed provider from one that answered with an
// empty string.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
