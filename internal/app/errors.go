// Package service provides the intake pipeline behind the HTTP API.
package service

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrStore       = errors.New("store failure")
)
