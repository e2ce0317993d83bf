// Package auth contains the identity providers and the authentication
// manager that coordinates them.
//
// Two providers exist: LocalProvider verifies accounts against the
// launcher's own credential store, RemoteProvider obtains a verified
// identity from an external authority. Both convert every storage and
// transport failure into a models.Result failure at their boundary; nothing
// below them panics past it.
package auth

import (
	"context"

	"github.com/minestat/launcher/internal/models"
)

// LocalAuthenticator is the capability of the locally backed provider.
type LocalAuthenticator interface {
	Authenticate(ctx context.Context, username, password string) *models.Result
	RegisterAndLogin(ctx context.Context, username, password, email string) *models.Result
	Close() error
}

// RemoteAuthenticator is the capability of the remotely backed provider.
type RemoteAuthenticator interface {
	AuthenticateDeviceFlow(ctx context.Context) *models.Result
	AuthenticateCredentials(ctx context.Context, identifier, secret string) *models.Result
}

// DeviceGrant is the artifact the interactive device-flow step hands back:
// the token pair issued by the remote authority.
type DeviceGrant struct {
	AccessToken  string
	RefreshToken string
}

// DeviceAuthorizer drives the user-facing part of the OAuth device flow
// (opening a browser, waiting for the user, collecting the issued tokens).
// It is an external collaborator: the provider only consumes its result.
type DeviceAuthorizer interface {
	Authorize(ctx context.Context) (*DeviceGrant, error)
}
