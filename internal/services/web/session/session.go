// Package session holds per-visitor web state: the display locale with its
// text direction, and the signed-in principal.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/bookstore/internal/platform/errors"
	"github.com/louisbranch/bookstore/internal/platform/i18n"
	"github.com/louisbranch/bookstore/internal/platform/id"
)

// DefaultTTL is the idle lifetime of a session.
const DefaultTTL = 12 * time.Hour

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = apperrors.New(apperrors.CodeSessionNotFound, "session not found")

// Session is one visitor's state. Locale and direction are only written
// together through SetLocale, so direction always matches locale.
type Session struct {
	ID        string
	Principal string
	CreatedAt time.Time
	ExpiresAt time.Time

	locale    i18n.Locale
	direction i18n.Direction
}

// New creates a session with the given locale.
func New(sessionID string, locale i18n.Locale, now time.Time, ttl time.Duration) *Session {
	s := &Session{ID: sessionID, CreatedAt: now.UTC()}
	s.SetLocale(locale)
	s.Touch(now, ttl)
	return s
}

// Restore rebuilds a session read back from a store.
func Restore(sessionID string, locale i18n.Locale, principal string, createdAt, expiresAt time.Time) *Session {
	s := &Session{
		ID:        sessionID,
		Principal: principal,
		CreatedAt: createdAt.UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
	s.SetLocale(locale)
	return s
}

// SetLocale stores locale and its text direction. Unsupported values fall
// back to the default locale.
func (s *Session) SetLocale(locale i18n.Locale) {
	if !i18n.IsSupported(locale) {
		locale = i18n.DefaultLocale
	}
	s.locale = locale
	s.direction = i18n.DirectionFor(locale)
}

// Locale returns the session locale.
func (s *Session) Locale() i18n.Locale {
	if s == nil || s.locale == "" {
		return i18n.DefaultLocale
	}
	return s.locale
}

// Direction returns the text direction for the session locale.
func (s *Session) Direction() i18n.Direction {
	if s == nil || s.direction == "" {
		return i18n.DirectionFor(i18n.DefaultLocale)
	}
	return s.direction
}

// SignIn records username as the session principal.
func (s *Session) SignIn(username string) {
	s.Principal = username
}

// SignOut clears the principal and keeps the locale.
func (s *Session) SignOut() {
	s.Principal = ""
}

// SignedIn reports whether a principal is recorded.
func (s *Session) SignedIn() bool {
	return s != nil && s.Principal != ""
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Touch slides expiry to now+ttl.
func (s *Session) Touch(now time.Time, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.ExpiresAt = now.UTC().Add(ttl)
}

// Store persists sessions. Get returns ErrNotFound for unknown or expired ids.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// Manager creates, loads and saves sessions with sliding expiry.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	newID func() (string, error)
}

// NewManager creates a Manager over store.
func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl, now: time.Now, newID: id.NewID}
}

// Create starts and persists a session in locale.
func (m *Manager) Create(ctx context.Context, locale i18n.Locale) (*Session, error) {
	sessionID, err := m.newID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	s := New(sessionID, locale, m.now(), m.ttl)
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Load returns the live session for sessionID.
func (m *Manager) Load(ctx context.Context, sessionID string) (*Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrNotFound
	}
	s, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		_ = m.store.Delete(ctx, sessionID)
		return nil, ErrNotFound
	}
	return s, nil
}

// Save slides expiry and persists s.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if s == nil {
		return fmt.Errorf("session is required")
	}
	s.Touch(m.now(), m.ttl)
	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Renew moves s to a fresh id and drops the old record. Callers renew before
// a privilege change so a pre-login id cannot be replayed.
func (m *Manager) Renew(ctx context.Context, s *Session) error {
	if s == nil {
		return fmt.Errorf("session is required")
	}
	oldID := s.ID
	newID, err := m.newID()
	if err != nil {
		return fmt.Errorf("generate session id: %w", err)
	}
	s.ID = newID
	if err := m.Save(ctx, s); err != nil {
		s.ID = oldID
		return err
	}
	if oldID != "" {
		if err := m.store.Delete(ctx, oldID); err != nil {
			return fmt.Errorf("delete previous session: %w", err)
		}
	}
	return nil
}

type contextKey struct{}

// WithContext stores s in ctx.
func WithContext(ctx context.Context, s *Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or nil.
func FromContext(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
