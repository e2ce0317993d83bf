// Package models holds the identity data model shared by the credential
// store, the identity providers, and the session store.
package models

import "github.com/google/uuid"

// AccountKind distinguishes how an identity was verified. It is set exactly
// once at profile creation and never mutated.
type AccountKind string

const (
	// AccountLocal is an account stored and verified entirely by the
	// launcher's own credential store.
	AccountLocal AccountKind = "local"
	// AccountOAuth is a premium account verified through the OAuth-style
	// device flow.
	AccountOAuth AccountKind = "oauth"
	// AccountLegacy is a premium account verified through the legacy
	// direct-credential API.
	AccountLegacy AccountKind = "legacy"
)

// Valid reports whether k is one of the known account kinds.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountLocal, AccountOAuth, AccountLegacy:
		return true
	}
	return false
}

// Premium reports whether the account was verified by a remote authority.
func (k AccountKind) Premium() bool {
	return k == AccountOAuth || k == AccountLegacy
}

// localIDNamespace seeds the deterministic derivation of local account ids.
// Changing it would change every local account's id, so it is fixed forever.
var localIDNamespace = uuid.MustParse("8e02c356-8f96-4d0c-9c30-95e7a3c7f2d1")

// LocalUserID returns the stable id for a local account. The same username
// always yields the same id, which keeps local identity consistent across
// sessions without a central registry.
func LocalUserID(username string) string {
	return uuid.NewSHA1(localIDNamespace, []byte(username)).String()
}

// UserProfile is an immutable identity record.
type UserProfile struct {
	ID       string
	Username string
	Email    string
	Kind     AccountKind
}

// NewLocalProfile builds a profile for a locally verified account, deriving
// the id from the username.
func NewLocalProfile(username, email string) *UserProfile {
	return &UserProfile{
		ID:       LocalUserID(username),
		Username: username,
		Email:    email,
		Kind:     AccountLocal,
	}
}

// NewPremiumProfile builds a profile for a remotely verified account, using
// the id issued by the remote authority.
func NewPremiumProfile(id, username string, kind AccountKind) *UserProfile {
	return &UserProfile{
		ID:       id,
		Username: username,
		Kind:     kind,
	}
}
