package types

import "errors"

// Entity errors.
var (
	ErrNotFound         = errors.New("entity not found")
	ErrInvalidID        = errors.New("invalid entity ID")
	ErrInvalidName      = errors.New("invalid name")
	ErrUnknownField     = errors.New("unknown ingredient field")
	ErrUnknownParameter = errors.New("unknown cost parameter")
	ErrInvalidData      = errors.New("invalid entity data")
)

// Storage errors. Durable store failures wrap one of these so callers can
// branch with errors.Is.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrTransactionFailed  = errors.New("storage transaction failed")
	ErrAlreadyAttached    = errors.New("store is already attached")
)
