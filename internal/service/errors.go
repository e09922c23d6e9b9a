package service

import (
	"errors"

	"accessapi/internal/repository"
)

var (
	// ErrValidation marks input rejected before any store access.
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = repository.ErrNotFound
	ErrDuplicate  = repository.ErrDuplicate
)

// ValidationError carries a client-facing message. errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
