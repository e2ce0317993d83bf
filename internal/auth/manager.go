package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/minestat/launcher/internal/logging"
	"github.com/minestat/launcher/internal/models"
	"github.com/minestat/launcher/internal/session"
)

// Mode selects which identity provider handles a login attempt.
type Mode string

const (
	// ModeLocal verifies username/password against the credential store.
	ModeLocal Mode = "local"
	// ModeOAuth runs the interactive device flow.
	ModeOAuth Mode = "oauth"
	// ModeLegacy submits identifier/secret to the legacy remote API.
	ModeLegacy Mode = "legacy"
)

// Credentials carries the user-supplied secret pair. Unused by ModeOAuth.
type Credentials struct {
	Username string
	Password string
}

// Preferences is the configuration collaborator the manager consults at
// startup and writes back to after a successful remembered login. It is
// owned by the caller; the manager never reads configuration on its own.
type Preferences interface {
	// AutoRestore reports whether "remember me" was enabled last run.
	AutoRestore() bool
	// RememberLogin persists the remember-me flag and last username.
	RememberLogin(username string) error
}

// Manager coordinates the identity providers and owns the current identity.
// It serializes all mutations behind a mutex: concurrent logins racing to
// set the current identity would be a correctness hazard. Remote calls may
// block the calling goroutine; callers wanting responsiveness invoke the
// manager off their event loop.
type Manager struct {
	mu       sync.Mutex
	local    LocalAuthenticator
	remote   RemoteAuthenticator
	sessions *session.Store
	prefs    Preferences
	log      logging.Logger

	// current is nil or a successful result; failures never overwrite it.
	current *models.Result
}

// NewManager wires the providers and the session store. When the remembered
// preference is set, the previous session is restored immediately; an
// expired or absent session simply leaves the manager unauthenticated.
func NewManager(local LocalAuthenticator, remote RemoteAuthenticator, sessions *session.Store, prefs Preferences, log logging.Logger) *Manager {
	m := &Manager{
		local:    local,
		remote:   remote,
		sessions: sessions,
		prefs:    prefs,
		log:      log,
	}
	if prefs != nil && prefs.AutoRestore() {
		m.log.Info(context.Background(), "attempting to restore previous session")
		m.current = sessions.Restore()
	}
	return m
}

// Login routes to the provider selected by mode. On success the current
// identity is replaced and, when rememberMe is set, the session is saved and
// the preference written back. On failure the current identity is left
// unchanged. The outcome is returned either way.
func (m *Manager) Login(ctx context.Context, mode Mode, creds Credentials, rememberMe bool) *models.Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res *models.Result
	switch mode {
	case ModeLocal:
		res = m.local.Authenticate(ctx, creds.Username, creds.Password)
	case ModeOAuth:
		res = m.remote.AuthenticateDeviceFlow(ctx)
	case ModeLegacy:
		res = m.remote.AuthenticateCredentials(ctx, creds.Username, creds.Password)
	default:
		return models.NewFailure(fmt.Sprintf("Unknown login mode %q", mode))
	}

	if res.Success {
		m.current = res
		if rememberMe {
			m.persist(ctx, res)
		}
	}
	return res
}

// persist saves the session and writes the preference back. Failures here
// must not fail the login itself; they are logged and swallowed.
func (m *Manager) persist(ctx context.Context, res *models.Result) {
	if err := m.sessions.Save(res.Profile, res.AccessToken, res.RefreshToken); err != nil {
		m.log.Error(ctx, "failed to save session", "error", err)
	}
	if m.prefs != nil {
		if err := m.prefs.RememberLogin(res.Profile.Username); err != nil {
			m.log.Error(ctx, "failed to persist login preference", "error", err)
		}
	}
}

// Register creates a local account and auto-logs it in. Registration never
// persists a session and never touches the current identity; callers that
// want a remembered login call Login afterwards.
func (m *Manager) Register(ctx context.Context, username, password, email string) *models.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.local.RegisterAndLogin(ctx, username, password, email)
}

// Logout clears the saved session and drops the current identity. It always
// appears to succeed: a store error is logged and swallowed.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.sessions.Clear(); err != nil {
		m.log.Error(context.Background(), "failed to clear session", "error", err)
	}
	m.current = nil
}

// IsAuthenticated reports whether a successful identity is currently held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil && m.current.Success
}

// CurrentProfile returns the authenticated profile, or nil.
func (m *Manager) CurrentProfile() *models.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || !m.current.Success {
		return nil
	}
	return m.current.Profile
}

// Shutdown releases the local provider's storage handle. The saved session
// is deliberately kept: sessions survive process restarts.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.local.Close(); err != nil {
		m.log.Error(context.Background(), "failed to close credential store", "error", err)
	}
}
