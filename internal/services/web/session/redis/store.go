// Package redis keeps web sessions in Redis hashes that expire with the
// session.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/louisbranch/bookstore/internal/platform/i18n"
	"github.com/louisbranch/bookstore/internal/services/web/session"
)

// DefaultKeyPrefix namespaces session keys.
const DefaultKeyPrefix = "bookstore:session:"

const (
	fieldLocale    = "locale"
	fieldPrincipal = "principal"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
)

// Store implements session.Store over a Redis client.
type Store struct {
	client goredis.UniversalClient
	prefix string
}

var _ session.Store = (*Store)(nil)

// New creates a Store over client.
func New(client goredis.UniversalClient) *Store {
	return &Store{client: client, prefix: DefaultKeyPrefix}
}

// Open parses a redis:// URL, pings the server and returns a Store that owns
// the client.
func Open(ctx context.Context, rawURL string) (*Store, error) {
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client), nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

// Get loads a session hash.
func (s *Store) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	values, err := s.client.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(values) == 0 {
		return nil, session.ErrNotFound
	}
	created, err := parseMillis(values[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", fieldCreatedAt, err)
	}
	expires, err := parseMillis(values[fieldExpiresAt])
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", fieldExpiresAt, err)
	}
	return session.Restore(sessionID, i18n.Locale(values[fieldLocale]), values[fieldPrincipal], created, expires), nil
}

// Save writes the session hash and sets its key to expire with the session.
func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session id is required")
	}
	key := s.key(sess.ID)
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldLocale, sess.Locale().String(),
			fieldPrincipal, sess.Principal,
			fieldCreatedAt, sess.CreatedAt.UnixMilli(),
			fieldExpiresAt, sess.ExpiresAt.UnixMilli(),
		)
		pipe.PExpireAt(ctx, key, sess.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes a session hash.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func parseMillis(raw string) (time.Time, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(value).UTC(), nil
}
