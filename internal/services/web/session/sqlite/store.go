// Package sqlite persists web sessions in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/bookstore/internal/platform/i18n"
	sqlitemigrate "github.com/louisbranch/bookstore/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/bookstore/internal/services/web/session"
	"github.com/louisbranch/bookstore/internal/services/web/session/sqlite/migrations"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements session.Store over SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ session.Store = (*Store)(nil)

// Open opens a session store and applies bundled migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := sqlitemigrate.Open(ctx, path, migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get loads a live session by id.
func (s *Store) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	var (
		locale, principal string
		created, expires  int64
	)
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT locale, principal, created_at, expires_at
FROM web_sessions
WHERE id = ? AND expires_at > ?`, sessionID, toMillis(s.now()))
	if err := row.Scan(&locale, &principal, &created, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session.Restore(sessionID, i18n.Locale(locale), principal, fromMillis(created), fromMillis(expires)), nil
}

// Save upserts sess.
func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO web_sessions (id, locale, principal, created_at, expires_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    locale = excluded.locale,
    principal = excluded.principal,
    expires_at = excluded.expires_at`,
		sess.ID,
		sess.Locale().String(),
		sess.Principal,
		toMillis(sess.CreatedAt),
		toMillis(sess.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes a session by id.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM web_sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes sessions that expired before now and returns how many
// rows were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM web_sessions WHERE expires_at <= ?", toMillis(s.now()))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return result.RowsAffected()
}
