// Package credstore implements the durable registry of local accounts and is
// the sole authority on password verification for locally stored credentials.
//
// Passwords are hashed with argon2id using a per-record random salt and
// verified with a constant-time comparison. The plaintext never touches the
// database.
package credstore

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/argon2"

	"github.com/minestat/launcher/internal/common"
	"github.com/minestat/launcher/internal/credstore/migrations"
	"github.com/minestat/launcher/internal/dbx"
	"github.com/minestat/launcher/internal/logging"
	"github.com/minestat/launcher/internal/models"

	_ "modernc.org/sqlite"
)

const saltSize = 16

// argon2id parameters: 1 pass, 64 MiB, 4 lanes, 32-byte digest.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// Store is the credential store over a local SQLite database. A Store whose
// construction failed stays usable as a value: every operation returns
// common.ErrStorageUnavailable instead of crashing.
type Store struct {
	db  *sql.DB
	log logging.Logger
}

// Open opens (creating if absent) the credential database at dsn and applies
// schema migrations. It never fails hard: on any error the problem is logged
// and an unusable store is returned.
func Open(ctx context.Context, dsn string, log logging.Logger) *Store {
	db, err := sql.Open("sqlite", dsn)
	if err == nil {
		err = runMigrations(ctx, db)
	}
	if err != nil {
		log.Error(ctx, "credential store unavailable", "dsn", dsn, "error", err)
		if db != nil {
			_ = db.Close()
		}
		return &Store{log: log}
	}
	return &Store{db: db, log: log}
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Register creates a new account. The username must not already exist
// (case-sensitive exact match); a duplicate fails with ErrDuplicateUsername
// and never overwrites the existing record. The duplicate check and the
// insert run in a single transaction, with the UNIQUE constraint as a
// backstop.
func (s *Store) Register(ctx context.Context, username, password, email string) (*models.Credential, error) {
	if s.db == nil {
		return nil, common.ErrStorageUnavailable
	}

	salt := common.RandBytes(saltSize)
	now := time.Now().UTC().Truncate(time.Second)
	cred := &models.Credential{
		Username:     username,
		PasswordHash: hashPassword([]byte(password), salt),
		Salt:         salt,
		Email:        email,
		CreatedAt:    now,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&count); err != nil {
			return fmt.Errorf("checking username: %w", err)
		}
		if count > 0 {
			return common.ErrDuplicateUsername
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, password_hash, salt, email, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			cred.Username, cred.PasswordHash, cred.Salt, nullableText(cred.Email), now.Unix())
		if err != nil {
			return fmt.Errorf("inserting user: %w", err)
		}
		cred.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return nil, err
		}
		s.log.Error(ctx, "registration failed", "user", username, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return cred, nil
}

// Verify checks a username/password pair. A missing username fails with
// ErrNotFound, a hash mismatch with ErrInvalidPassword; the two are
// deliberately distinguishable. On success last_login is updated in the
// same transaction and the refreshed record is returned.
func (s *Store) Verify(ctx context.Context, username, password string) (*models.Credential, error) {
	if s.db == nil {
		return nil, common.ErrStorageUnavailable
	}

	var cred *models.Credential
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		c, err := getByUsername(ctx, tx, username)
		if err != nil {
			return err
		}

		candidate := hashPassword([]byte(password), c.Salt)
		if subtle.ConstantTimeCompare(candidate, c.PasswordHash) == 0 {
			return common.ErrInvalidPassword
		}

		now := time.Now().UTC().Truncate(time.Second)
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET last_login = ? WHERE username = ?`, now.Unix(), username); err != nil {
			return fmt.Errorf("updating last login: %w", err)
		}
		c.LastLoginAt = &now
		cred = c
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrInvalidPassword) {
			return nil, err
		}
		s.log.Error(ctx, "verification failed", "user", username, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return cred, nil
}

// Close releases the underlying database handle. Safe to call multiple
// times and on an unusable store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func getByUsername(ctx context.Context, tx dbx.DBTX, username string) (*models.Credential, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, username, password_hash, salt, email, created_at, last_login
		 FROM users WHERE username = ?`, username)

	var (
		c         models.Credential
		email     sql.NullString
		createdAt int64
		lastLogin sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.Username, &c.PasswordHash, &c.Salt, &email, &createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading user: %w", err)
	}

	c.Email = email.String
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	if lastLogin.Valid {
		t := time.Unix(lastLogin.Int64, 0).UTC()
		c.LastLoginAt = &t
	}
	return &c, nil
}

func hashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
