package auth

import (
	"context"
	"errors"

	"github.com/minestat/launcher/internal/common"
	"github.com/minestat/launcher/internal/credstore"
	"github.com/minestat/launcher/internal/logging"
	"github.com/minestat/launcher/internal/models"
	"github.com/minestat/launcher/internal/token"
)

// LocalProvider authenticates against the launcher's own credential store
// and mints an access token for each successful login. The token is not
// persisted anywhere; it is purely a client-held capability marker.
type LocalProvider struct {
	store  *credstore.Store
	tokens *token.Issuer
	log    logging.Logger
}

func NewLocalProvider(store *credstore.Store, tokens *token.Issuer, log logging.Logger) *LocalProvider {
	return &LocalProvider{store: store, tokens: tokens, log: log}
}

// Authenticate verifies a username/password pair. "User not found" and
// "Invalid password" stay distinguishable on purpose.
func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) *models.Result {
	cred, err := p.store.Verify(ctx, username, password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return models.NewFailure("User not found")
		case errors.Is(err, common.ErrInvalidPassword):
			return models.NewFailure("Invalid password")
		}
		return models.NewFailure("Database error: " + err.Error())
	}

	profile := models.NewLocalProfile(cred.Username, cred.Email)

	tok, err := p.tokens.New(profile.ID)
	if err != nil {
		p.log.Error(ctx, "token minting failed", "user", username, "error", err)
		return models.NewFailure("Authentication failed: " + err.Error())
	}

	p.log.Info(ctx, "local authentication successful", "user", username)
	return models.NewSuccess(profile, tok, "")
}

// RegisterAndLogin creates a new account and immediately authenticates with
// the same credentials. A duplicate username fails without touching the
// existing record.
func (p *LocalProvider) RegisterAndLogin(ctx context.Context, username, password, email string) *models.Result {
	if _, err := p.store.Register(ctx, username, password, email); err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return models.NewFailure("Username already exists")
		}
		return models.NewFailure("Registration failed: " + err.Error())
	}

	p.log.Info(ctx, "user registered", "user", username)
	return p.Authenticate(ctx, username, password)
}

// Close releases the credential store handle. Idempotent.
func (p *LocalProvider) Close() error {
	return p.store.Close()
}
