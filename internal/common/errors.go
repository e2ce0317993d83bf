// Package common defines shared constants and sentinel errors used across
// the launcher's authentication components. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Credential store errors.
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrStorageUnavailable = errors.New("account storage unavailable")

	// Session store errors. Both are handled internally by the session
	// store (treat as absent, clear the record); they never cross the
	// restore boundary.
	ErrSessionExpired = errors.New("session expired")
	ErrSessionCorrupt = errors.New("session corrupt")
)
