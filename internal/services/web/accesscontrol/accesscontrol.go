// Package accesscontrol defines the credential check the login gate
// delegates to.
package accesscontrol

import (
	"context"
	"strings"
)

// AccessControl verifies a username/password pair. A false result is a
// credential mismatch; an error means no verdict could be reached.
type AccessControl interface {
	SignIn(ctx context.Context, username, password string) (bool, error)
}

// Func adapts a function to AccessControl.
type Func func(ctx context.Context, username, password string) (bool, error)

// SignIn implements AccessControl.
func (f Func) SignIn(ctx context.Context, username, password string) (bool, error) {
	return f(ctx, username, password)
}

// Basic is the in-process verifier used when no access-control service is
// configured: a username that is not blank signs in when the password equals
// it.
type Basic struct{}

// SignIn implements AccessControl.
func (Basic) SignIn(_ context.Context, username, password string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, nil
	}
	return username == password, nil
}
