package models

import "time"

// Credential is a row of the local credential store. The plaintext password
// is never stored; PasswordHash is an argon2id digest computed with the
// per-record random Salt.
type Credential struct {
	ID           int64
	Username     string
	PasswordHash []byte
	Salt         []byte
	Email        string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}
