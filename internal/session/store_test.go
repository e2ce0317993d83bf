package session

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minestat/launcher/internal/logging"
	"github.com/minestat/launcher/internal/models"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "session.json"), testLogger())
}

func TestSaveThenRestore_Roundtrip(t *testing.T) {
	s := newStore(t)
	profile := models.NewLocalProfile("alice", "a@x.com")

	require.NoError(t, s.Save(profile, "token-1", ""))

	res := s.Restore()
	require.NotNil(t, res)
	require.True(t, res.Success)
	assert.Equal(t, "alice", res.Profile.Username)
	assert.Equal(t, "token-1", res.AccessToken)
	assert.Empty(t, res.RefreshToken)
	assert.Equal(t, models.AccountLocal, res.Profile.Kind)
}

func TestRestore_LocalIDIsRederived(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(models.NewLocalProfile("alice", ""), "tok", ""))

	res := s.Restore()
	require.NotNil(t, res)
	assert.Equal(t, models.LocalUserID("alice"), res.Profile.ID)
}

func TestRestore_PremiumKeepsStoredID(t *testing.T) {
	s := newStore(t)
	profile := models.NewPremiumProfile("remote-id-7", "Steve", models.AccountOAuth)
	require.NoError(t, s.Save(profile, "acc", "ref"))

	res := s.Restore()
	require.NotNil(t, res)
	assert.Equal(t, "remote-id-7", res.Profile.ID)
	assert.Equal(t, models.AccountOAuth, res.Profile.Kind)
	assert.Equal(t, "ref", res.RefreshToken)
}

func TestRestore_NoFile(t *testing.T) {
	s := newStore(t)
	assert.Nil(t, s.Restore())
}

func TestRestore_ExpiredSessionIsDeleted(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(models.NewLocalProfile("alice", ""), "tok", ""))

	// jump the clock past the retention window
	s.now = func() time.Time { return time.Now().Add(DefaultRetention + time.Hour) }

	require.Nil(t, s.Restore())

	// the record was deleted, not just ignored: a fresh clock still sees nothing
	s.now = time.Now
	require.Nil(t, s.Restore())
	_, err := os.Stat(s.path)
	assert.True(t, os.IsNotExist(err))
}

func TestRestore_WithinRetentionSurvives(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(models.NewLocalProfile("alice", ""), "tok", ""))

	s.now = func() time.Time { return time.Now().Add(6 * 24 * time.Hour) }
	require.NotNil(t, s.Restore())
}

func TestRestore_CorruptFileIsCleared(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.path, []byte("{not json"), 0o600))

	require.Nil(t, s.Restore())
	_, err := os.Stat(s.path)
	assert.True(t, os.IsNotExist(err))
}

func TestRestore_UnknownAccountKindIsCleared(t *testing.T) {
	s := newStore(t)
	record := fmt.Sprintf(
		`{"username":"x","user_id":"1","access_token":"t","account_kind":"banana","saved_at":%d}`,
		time.Now().Unix())
	require.NoError(t, os.WriteFile(s.path, []byte(record), 0o600))

	require.Nil(t, s.Restore())
	_, err := os.Stat(s.path)
	assert.True(t, os.IsNotExist(err))
}

func TestSave_ReplacesPreviousRecord(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(models.NewLocalProfile("alice", ""), "tok-a", ""))
	require.NoError(t, s.Save(models.NewLocalProfile("bob", ""), "tok-b", ""))

	res := s.Restore()
	require.NotNil(t, res)
	assert.Equal(t, "bob", res.Profile.Username)
	assert.Equal(t, "tok-b", res.AccessToken)
}

func TestClear_IsIdempotent(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Clear(), "clearing an absent session is fine")

	require.NoError(t, s.Save(models.NewLocalProfile("alice", ""), "tok", ""))
	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	assert.Nil(t, s.Restore())
}
