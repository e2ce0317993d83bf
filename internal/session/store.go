// Package session persists the single current session across process
// restarts. The store holds at most one record, a small JSON file at a fixed
// path: writing replaces it wholesale, restoring reads it back, and anything
// suspicious (expired, unreadable, unknown account kind) collapses to
// "no session" after clearing the file.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/minestat/launcher/internal/common"
	"github.com/minestat/launcher/internal/logging"
	"github.com/minestat/launcher/internal/models"
)

// DefaultRetention is how long a saved session stays restorable.
const DefaultRetention = 7 * 24 * time.Hour

// Record is the on-disk shape of a saved session.
type Record struct {
	Username     string             `json:"username"`
	UserID       string             `json:"user_id"`
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token,omitempty"`
	AccountKind  models.AccountKind `json:"account_kind"`
	SavedAt      int64              `json:"saved_at"`
}

// Store reads and writes the session file.
type Store struct {
	path      string
	retention time.Duration
	log       logging.Logger

	// now is a test seam for the clock.
	now func() time.Time
}

// NewStore builds a session store over the file at path.
func NewStore(path string, log logging.Logger) *Store {
	return &Store{
		path:      path,
		retention: DefaultRetention,
		log:       log,
		now:       time.Now,
	}
}

// Save snapshots a successful authentication, replacing any previous record.
func (s *Store) Save(profile *models.UserProfile, accessToken, refreshToken string) error {
	rec := Record{
		Username:     profile.Username,
		UserID:       profile.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccountKind:  profile.Kind,
		SavedAt:      s.now().Unix(),
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}

	s.log.Info(context.Background(), "session saved", "user", rec.Username)
	return nil
}

// Restore reads the saved session, if any. It returns nil when no session
// exists, when the record is older than the retention window (the record is
// deleted, not just skipped), or when the file cannot be parsed (also
// cleared). It never returns an error: a broken session is simply absent.
func (s *Store) Restore() *models.Result {
	ctx := context.Background()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn(ctx, "session unreadable, clearing", "error", err)
			_ = s.Clear()
		}
		return nil
	}

	rec, err := s.decode(data)
	if err != nil {
		s.log.Warn(ctx, "discarding session", "reason", err)
		_ = s.Clear()
		return nil
	}

	var profile *models.UserProfile
	if rec.AccountKind == models.AccountLocal {
		// Local ids are derived, not stored: re-derive so the id stays
		// consistent with fresh local logins.
		profile = models.NewLocalProfile(rec.Username, "")
	} else {
		profile = models.NewPremiumProfile(rec.UserID, rec.Username, rec.AccountKind)
	}

	s.log.Info(ctx, "session restored", "user", rec.Username, "kind", rec.AccountKind)
	return models.NewSuccess(profile, rec.AccessToken, rec.RefreshToken)
}

// decode validates the raw record and applies the expiry policy.
func (s *Store) decode(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSessionCorrupt, err)
	}
	if rec.Username == "" || !rec.AccountKind.Valid() {
		return nil, common.ErrSessionCorrupt
	}
	if s.now().Sub(time.Unix(rec.SavedAt, 0)) > s.retention {
		return nil, common.ErrSessionExpired
	}
	return &rec, nil
}

// Clear deletes the stored record. It is idempotent: clearing an absent
// session is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
