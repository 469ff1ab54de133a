package store

import "errors"

var (
	// ErrBadRequest is returned when the caller supplied invalid pagination parameters.
	ErrBadRequest = errors.New("valnk: bad request")

	// ErrInvalidInputData is returned for a malformed cursor or a record whose
	// attributes cannot be stored.
	ErrInvalidInputData = errors.New("valnk: invalid input data")

	// ErrInvalidOutputData is returned when a stored item does not decode into
	// the expected entity shape. It signals schema drift or external mutation.
	ErrInvalidOutputData = errors.New("valnk: invalid output data")

	// ErrServerError is returned when the storage service request fails.
	// The underlying error is wrapped alongside it.
	ErrServerError = errors.New("valnk: upstream server error")

	// ErrUnknown is returned for failures that fit no other category.
	ErrUnknown = errors.New("valnk: unknown error")

	// ErrNotFound is returned when an entity doesn't exist or is deleted (has TTL <= now).
	ErrNotFound = errors.New("valnk: entity not found")

	// ErrAlreadyExists is returned when attempting to create an entity with an existing ID.
	ErrAlreadyExists = errors.New("valnk: entity already exists")
)
