// Package sqlite persists access-control credentials in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/bookstore/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/bookstore/internal/services/accesscontrol/storage"
	"github.com/louisbranch/bookstore/internal/services/accesscontrol/storage/sqlite/migrations"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements storage.CredentialStore over SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.CredentialStore = (*Store)(nil)

// Open opens a credential store and applies bundled migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := sqlitemigrate.Open(ctx, path, migrations.FS, ".")
	if err != nil {
		return nil, err
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetCredential returns the credential stored for username.
func (s *Store) GetCredential(ctx context.Context, username string) (storage.Credential, error) {
	if s == nil || s.sqlDB == nil {
		return storage.Credential{}, fmt.Errorf("storage is not configured")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return storage.Credential{}, storage.ErrNotFound
	}

	var (
		cred               storage.Credential
		created, updatedAt int64
	)
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT username, password_hash, created_at, updated_at
FROM credentials
WHERE username = ?`, username)
	if err := row.Scan(&cred.Username, &cred.PasswordHash, &created, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Credential{}, storage.ErrNotFound
		}
		return storage.Credential{}, fmt.Errorf("get credential: %w", err)
	}
	cred.CreatedAt = fromMillis(created)
	cred.UpdatedAt = fromMillis(updatedAt)
	return cred, nil
}

// PutCredential inserts or replaces the hash for a username. The original
// creation time is preserved on update.
func (s *Store) PutCredential(ctx context.Context, cred storage.Credential) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	cred.Username = strings.TrimSpace(cred.Username)
	if cred.Username == "" {
		return fmt.Errorf("username is required")
	}
	if cred.PasswordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now()
	}
	if cred.UpdatedAt.IsZero() {
		cred.UpdatedAt = cred.CreatedAt
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO credentials (username, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(username) DO UPDATE SET
    password_hash = excluded.password_hash,
    updated_at = excluded.updated_at`,
		cred.Username,
		cred.PasswordHash,
		toMillis(cred.CreatedAt),
		toMillis(cred.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put credential: %w", err)
	}
	return nil
}

// CountCredentials returns the number of stored credentials.
func (s *Store) CountCredentials(ctx context.Context) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var count int64
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM credentials").Scan(&count); err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return count, nil
}
