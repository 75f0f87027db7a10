package service

import (
	"errors"

	"ammotrack/internal/repository"
)

// Error taxonomy. NotFound and InsufficientStock share identity with the
// repository sentinels so errors.Is works whether the condition was caught
// pre-flight in the service or at write time inside the transaction.
var (
	// ErrValidation: bad or missing input, caught before any storage access.
	ErrValidation = errors.New("validation error")

	ErrNotFound          = repository.ErrNotFound
	ErrInsufficientStock = repository.ErrInsufficientStock
	ErrLotReferenced     = repository.ErrLotReferenced

	// ErrInvalidCredentials deliberately does not say whether the username
	// or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
