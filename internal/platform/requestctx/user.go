// Package requestctx carries per-request identity through context.
package requestctx

import "context"

// Identity is the visitor a request resolved to. Middleware installs an empty
// Identity before routing and reads it back once the handler has returned,
// after session handling has filled it in.
type Identity struct {
	SessionID string
	Principal string
}

type identityContextKey struct{}

// WithIdentity installs an empty Identity in ctx, or returns the one already
// installed.
func WithIdentity(ctx context.Context) (context.Context, *Identity) {
	if ctx == nil {
		ctx = context.Background()
	}
	if identity := IdentityFromContext(ctx); identity != nil {
		return ctx, identity
	}
	identity := &Identity{}
	return context.WithValue(ctx, identityContextKey{}, identity), identity
}

// IdentityFromContext returns the installed Identity, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	if ctx == nil {
		return nil
	}
	identity, _ := ctx.Value(identityContextKey{}).(*Identity)
	return identity
}

// SetIdentity records the session and principal on the installed Identity.
// It does nothing when none is installed.
func SetIdentity(ctx context.Context, sessionID, principal string) {
	identity := IdentityFromContext(ctx)
	if identity == nil {
		return
	}
	identity.SessionID = sessionID
	identity.Principal = principal
}
