package domain

import "errors"

// Sentinel errors for the engine's failure taxonomy. Expected conditions
// (quota, access, duplicates) are returned as values, never panics.
var (
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrAccessDenied     = errors.New("access denied")
	ErrDuplicateRequest = errors.New("friend request already pending")
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
)
