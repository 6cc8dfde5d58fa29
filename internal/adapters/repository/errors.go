package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound           = errors.New("lead not found")
	ErrListingNotFound    = errors.New("listing not found")
	ErrSpotNotFound       = errors.New("sunset spot not found")
	ErrDuplicateRequestID = errors.New("duplicate request id")
	ErrInvalidTransition  = errors.New("invalid status transition")
)
