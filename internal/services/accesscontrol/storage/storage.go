// Package storage defines persistence contracts for the access-control service.
package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/bookstore/internal/platform/errors"
)

// ErrNotFound indicates a username has no stored credential.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "credential not found")

// Credential is a stored username with its password hash.
type Credential struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CredentialStore reads and writes credentials.
type CredentialStore interface {
	GetCredential(ctx context.Context, username string) (Credential, error)
	PutCredential(ctx context.Context, credential Credential) error
}
