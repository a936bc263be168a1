// Package common defines shared constants and sentinel errors used across
// the pagekeeper client layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Auth errors (malformed key, failed sign/exchange, rejected token).
	ErrAuth = errors.New("authentication error")

	// ErrConflict signals a non-fast-forward ref update: another writer
	// moved the branch tip between ref fetch and ref update.
	ErrConflict = errors.New("ref update conflict")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Caller-side precondition failures (empty file selection, missing
	// required field).
	ErrValidation = errors.New("validation error")

	// Local state errors.
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)
