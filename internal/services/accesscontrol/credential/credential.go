// Package credential hashes and checks username/password pairs for the
// access-control service.
package credential

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/louisbranch/bookstore/internal/platform/errors"
)

// Bootstrap is one seeded user parsed from configuration.
type Bootstrap struct {
	Username string
	Password string
}

// NormalizeUsername trims surrounding whitespace. Usernames are otherwise
// compared byte for byte.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// Hash returns the bcrypt hash for password.
func Hash(password string, cost int) (string, error) {
	if password == "" {
		return "", apperrors.New(apperrors.CodeCredentialPasswordEmpty, "password is required")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Matches reports whether password matches the stored bcrypt hash.
func Matches(hash, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// missHash is compared against when a username is unknown so a miss costs one
// bcrypt comparison like a hit.
var missHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("bookstore-unknown-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// RejectUnknown spends the time of a bcrypt comparison and always reports
// false.
func RejectUnknown(password string) bool {
	_ = bcrypt.CompareHashAndPassword(missHash(), []byte(password))
	return false
}

// ParseBootstrap parses "user:password" entries separated by commas. Blank
// entries are skipped; a later entry for the same username wins.
func ParseBootstrap(raw string) ([]Bootstrap, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	index := map[string]int{}
	var users []Bootstrap
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		username, password, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, apperrors.WithMetadata(apperrors.CodeCredentialBootstrapInvalid,
				"bootstrap entry must be user:password",
				map[string]string{"entry": entry})
		}
		username = NormalizeUsername(username)
		if username == "" {
			return nil, apperrors.New(apperrors.CodeCredentialUsernameEmpty, "bootstrap username is required")
		}
		if password == "" {
			return nil, apperrors.WithMetadata(apperrors.CodeCredentialPasswordEmpty,
				"bootstrap password is required",
				map[string]string{"username": username})
		}
		if i, seen := index[username]; seen {
			users[i].Password = password
			continue
		}
		index[username] = len(users)
		users = append(users, Bootstrap{Username: username, Password: password})
	}
	return users, nil
}
