package repository

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("repository: not found")

	// ErrAlreadyConsumed indicates a compare-and-set update matched no rows
	// because the record was already verified, used, or revoked.
	ErrAlreadyConsumed = errors.New("repository: record already consumed")
)
