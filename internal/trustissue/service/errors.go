package service

import "errors"

// Service error taxonomy. Handlers map these onto HTTP status codes.
var (
	// ErrNotFound covers both absent entities and ownership mismatches,
	// which are deliberately indistinguishable to the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict covers duplicates and guarded transitions attempted on
	// an already-decided record.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput covers missing fields, non-positive amounts and
	// malformed action enums.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientBalance is returned when a withdrawal exceeds the
	// seller's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrUnauthorized covers unknown accounts and bad credentials.
	ErrUnauthorized = errors.New("invalid credentials")
)
