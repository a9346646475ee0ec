package services

import (
	"errors"
	"fmt"
)

// Error taxonomy for the experience store. Routes translate these once at the
// call site; nothing propagates to a global handler and nothing is retried.
var (
	ErrNotFound              = errors.New("experience not found")
	ErrUnauthorized          = errors.New("experience does not belong to this user")
	ErrInvalidState          = errors.New("only pending experiences can be modified")
	ErrAuthRequired          = errors.New("authentication required")
	ErrAccommodationRequired = errors.New("hotel itineraries require an accommodation section")
)

// StoreReadError wraps a failed read against the database.
type StoreReadError struct {
	Err error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("store read failed: %v", e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

// StoreWriteError wraps a failed write against the database.
type StoreWriteError struct {
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store write failed: %v", e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }
