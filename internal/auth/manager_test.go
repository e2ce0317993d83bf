package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minestat/launcher/internal/credstore"
	"github.com/minestat/launcher/internal/models"
	"github.com/minestat/launcher/internal/session"
	"github.com/minestat/launcher/internal/token"
)

// fakePrefs implements Preferences in memory.
type fakePrefs struct {
	auto       bool
	remembered []string
	err        error
}

func (f *fakePrefs) AutoRestore() bool { return f.auto }

func (f *fakePrefs) RememberLogin(username string) error {
	f.remembered = append(f.remembered, username)
	return f.err
}

// fakeRemote implements RemoteAuthenticator with canned results.
type fakeRemote struct {
	device *models.Result
	legacy *models.Result
}

func (f *fakeRemote) AuthenticateDeviceFlow(ctx context.Context) *models.Result {
	return f.device
}

func (f *fakeRemote) AuthenticateCredentials(ctx context.Context, identifier, secret string) *models.Result {
	return f.legacy
}

// env bundles the pieces a manager test needs, sharing the credential DB
// and session file across "restarts".
type env struct {
	dbPath      string
	sessionPath string
	remote      *fakeRemote
	prefs       *fakePrefs
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	return &env{
		dbPath:      filepath.Join(dir, "users.db"),
		sessionPath: filepath.Join(dir, "session.json"),
		remote:      &fakeRemote{},
		prefs:       &fakePrefs{},
	}
}

// start builds a manager as a fresh process would, reusing the same files.
func (e *env) start(t *testing.T) *Manager {
	t.Helper()
	store := credstore.Open(context.Background(), e.dbPath, testLogger())
	local := NewLocalProvider(store, token.NewIssuer(nil, time.Hour), testLogger())
	sessions := session.NewStore(e.sessionPath, testLogger())
	m := NewManager(local, e.remote, sessions, e.prefs, testLogger())
	t.Cleanup(m.Shutdown)
	return m
}

func TestLogin_LocalSuccessSetsIdentity(t *testing.T) {
	e := newEnv(t)
	m := e.start(t)
	ctx := context.Background()

	require.True(t, m.Register(ctx, "alice", "pw123", "a@x.com").Success)

	res := m.Login(ctx, ModeLocal, Credentials{Username: "alice", Password: "pw123"}, false)
	require.True(t, res.Success, res.Message)

	assert.True(t, m.IsAuthenticated())
	require.NotNil(t, m.CurrentProfile())
	assert.Equal(t, "alice", m.CurrentProfile().Username)
	assert.Empty(t, e.prefs.remembered, "no remember-me, nothing written back")
}

func TestLogin_FailureLeavesIdentityUnchanged(t *testing.T) {
	e := newEnv(t)
	m := e.start(t)
	ctx := context.Background()

	require.True(t, m.Register(ctx, "bob", "right", "").Success)
	require.True(t, m.Login(ctx, ModeLocal, Credentials{Username: "bob", Password: "right"}, false).Success)

	res := m.Login(ctx, ModeLocal, Credentials{Username: "bob", Password: "wrong"}, false)
	require.False(t, res.Success)
	assert.Equal(t, "Invalid password", res.Message)

	// the earlier successful identity is still current
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, "bob", m.CurrentProfile().Username)
}

func TestLogin_WrongPasswordWhileLoggedOut(t *testing.T) {
	e := newEnv(t)
	m := e.start(t)
	ctx := context.Background()

	require.True(t, m.Register(ctx, "bob", "right", "").Success)

	res := m.Login(ctx, ModeLocal, Credentials{Username: "bob", Password: "wrong"}, false)
	require.False(t, res.Success)
	assert.Equal(t, "Invalid password", res.Message)
	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.CurrentProfile())
}

func TestRegister_DoesNotPersistSession(t *testing.T) {
	e := newEnv(t)
	m := e.start(t)

	res := m.Register(context.Background(), "alice", "pw123", "a@x.com")
	require.True(t, res.Success)
	assert.Equal(t, models.AccountLocal, res.Profile.Kind)

	// a restart with remember-me enabled finds nothing to restore
	e.prefs.auto = true
	m2 := e.start(t)
	assert.False(t, m2.IsAuthenticated())
}

func TestRememberedLogin_SurvivesRestart(t *testing.T) {
	e := newEnv(t)
	m := e.start(t)
	ctx := context.Background()

	require.True(t, m.Register(ctx, "alice", "pw123", "a@x.com").Success)
	m.Logout()

	res := m.Login(ctx, ModeLocal, Credentials{Username: "alice", Password: "pw123"}, true)
	require.True(t, res.Success)
	assert.Equal(t, []string{"alice"}, e.prefs.remembered)

	// "restart": a new manager over the same files, remember-me enabled
	e.prefs.auto = true
	m2 := e.start(t)
	require.True(t, m2.IsAuthenticated())
	require.NotNil(t, m2.CurrentProfile())
	assert.Equal(t, "alice", m2.CurrentProfile().Username)
	assert.Equal(t, models.LocalUserID("alice"), m2.CurrentProfile().ID)
}

func TestRestart_WithoutRememberMeIgnoresSession(t *testing.T) {
	e := newEnv(t)
	m := e.start(t)
	ctx := context.Background()

	require.True(t, m.Register(ctx, "alice", "pw123", "").Success)
	require.True(t, m.Login(ctx, ModeLocal, Credentials{Username: "alice", Password: "pw123"}, true).Success)

	e.prefs.auto = false
	m2 := e.start(t)
	assert.False(t, m2.IsAuthenticated())
}

func TestLogout_ClearsIdentityAndSession(t *testing.T) {
	e := newEnv(t)
	m := e.start(t)
	ctx := context.Background()

	require.True(t, m.Register(ctx, "alice", "pw123", "").Success)
	require.True(t, m.Login(ctx, ModeLocal, Credentials{Username: "alice", Password: "pw123"}, true).Success)

	m.Logout()
	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.CurrentProfile())

	// the saved session is gone too
	e.prefs.auto = true
	m2 := e.start(t)
	assert.False(t, m2.IsAuthenticated())
}

func TestLogout_IsUnconditional(t *testing.T) {
	e := newEnv(t)
	m := e.start(t)

	m.Logout() // nothing saved, nothing current
	assert.False(t, m.IsAuthenticated())
}

func TestLogin_RemoteModesRoute(t *testing.T) {
	e := newEnv(t)
	e.remote.device = models.NewSuccess(
		models.NewPremiumProfile("uuid-1", "Alex", models.AccountOAuth), "acc", "ref")
	e.remote.legacy = models.NewFailure("Invalid credentials")
	m := e.start(t)
	ctx := context.Background()

	res := m.Login(ctx, ModeOAuth, Credentials{}, false)
	require.True(t, res.Success)
	assert.Equal(t, models.AccountOAuth, m.CurrentProfile().Kind)

	res = m.Login(ctx, ModeLegacy, Credentials{Username: "a", Password: "b"}, false)
	require.False(t, res.Success)
	assert.Equal(t, "Invalid credentials", res.Message)
	// device-flow identity is still current
	assert.Equal(t, "Alex", m.CurrentProfile().Username)
}

func TestLogin_RememberedRemoteSessionKeepsIssuedID(t *testing.T) {
	e := newEnv(t)
	e.remote.device = models.NewSuccess(
		models.NewPremiumProfile("remote-id-42", "Alex", models.AccountOAuth), "acc", "ref")
	m := e.start(t)

	require.True(t, m.Login(context.Background(), ModeOAuth, Credentials{}, true).Success)

	e.prefs.auto = true
	m2 := e.start(t)
	require.True(t, m2.IsAuthenticated())
	assert.Equal(t, "remote-id-42", m2.CurrentProfile().ID)
	assert.Equal(t, models.AccountOAuth, m2.CurrentProfile().Kind)
}

func TestLogin_UnknownMode(t *testing.T) {
	e := newEnv(t)
	m := e.start(t)

	res := m.Login(context.Background(), Mode("carrier-pigeon"), Credentials{}, false)
	require.False(t, res.Success)
	assert.Contains(t, res.Message, "carrier-pigeon")
	assert.False(t, m.IsAuthenticated())
}

func TestLogin_PreferenceWriteFailureDoesNotFailLogin(t *testing.T) {
	e := newEnv(t)
	e.prefs.err = errors.New("disk full")
	m := e.start(t)
	ctx := context.Background()

	require.True(t, m.Register(ctx, "alice", "pw123", "").Success)
	res := m.Login(ctx, ModeLocal, Credentials{Username: "alice", Password: "pw123"}, true)

	require.True(t, res.Success, "preference persistence is best-effort")
	assert.True(t, m.IsAuthenticated())
}

func TestShutdown_KeepsSession(t *testing.T) {
	e := newEnv(t)
	m := e.start(t)
	ctx := context.Background()

	require.True(t, m.Register(ctx, "alice", "pw123", "").Success)
	require.True(t, m.Login(ctx, ModeLocal, Credentials{Username: "alice", Password: "pw123"}, true).Success)

	m.Shutdown()

	e.prefs.auto = true
	m2 := e.start(t)
	assert.True(t, m2.IsAuthenticated(), "sessions survive process shutdown")
}
