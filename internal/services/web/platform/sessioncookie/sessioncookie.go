// Package sessioncookie carries the web session id in a signed cookie.
//
// The cookie value is an HS256 JWT whose "sid" claim names the session. A
// token that fails verification is treated as absent.
package sessioncookie

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/louisbranch/bookstore/internal/services/web/platform/requestmeta"
)

// Name is the canonical web session cookie name.
const Name = "bookstore_session"

const issuer = "bookstore-web"

// MinKeyBytes is the shortest accepted signing key.
const MinKeyBytes = 32

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session cookies.
type Codec struct {
	key    []byte
	ttl    time.Duration
	policy requestmeta.SchemePolicy
	now    func() time.Time
}

// NewCodec creates a Codec. ttl bounds both the token expiry and the cookie
// Max-Age.
func NewCodec(key []byte, ttl time.Duration, policy requestmeta.SchemePolicy) (*Codec, error) {
	if len(key) < MinKeyBytes {
		return nil, fmt.Errorf("session key must be at least %d bytes", MinKeyBytes)
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &Codec{key: append([]byte(nil), key...), ttl: ttl, policy: policy, now: time.Now}, nil
}

// Encode returns a signed token for sessionID.
func (c *Codec) Encode(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", errors.New("session id is required")
	}
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies token and returns its session id.
func (c *Codec) Decode(token string) (string, error) {
	parsed := claims{}
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("verify session cookie: %w", err)
	}
	if strings.TrimSpace(parsed.SessionID) == "" {
		return "", errors.New("session cookie has no session id")
	}
	return parsed.SessionID, nil
}

// Read returns the verified session id from the request cookie.
func (c *Codec) Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(Name)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	sessionID, err := c.Decode(value)
	if err != nil {
		return "", false
	}
	return sessionID, true
}

// Write sets a freshly signed cookie for sessionID.
func (c *Codec) Write(w http.ResponseWriter, r *http.Request, sessionID string) error {
	if w == nil {
		return nil
	}
	token, err := c.Encode(sessionID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPSWithPolicy(r, c.policy),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
