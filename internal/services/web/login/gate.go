// Package login decides what happens after a login form submission.
package login

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/louisbranch/bookstore/internal/platform/telemetry/metrics"
	"github.com/louisbranch/bookstore/internal/services/web/accesscontrol"
)

// DefaultRoute is where a successful sign-in navigates.
const DefaultRoute = "/"

// Outcome is the gate's decision. Exactly one of Navigate and Errored is set.
type Outcome struct {
	// Navigate is the route to load after a successful sign-in.
	Navigate string
	// Errored marks the form as failed in place.
	Errored bool
}

// Gate forwards credentials to an AccessControl and maps the verdict.
type Gate struct {
	access  accesscontrol.AccessControl
	metrics *metrics.Recorder
}

// NewGate creates a Gate. recorder may be nil.
func NewGate(access accesscontrol.AccessControl, recorder *metrics.Recorder) *Gate {
	return &Gate{access: access, metrics: recorder}
}

// Attempt forwards username and password verbatim. A verifier error is
// returned as an error and is never reported as a credential failure.
func (g *Gate) Attempt(ctx context.Context, username, password string) (Outcome, error) {
	if g == nil || g.access == nil {
		return Outcome{}, fmt.Errorf("access control is not configured")
	}
	ctx, span := otel.Tracer("github.com/louisbranch/bookstore/internal/services/web/login").Start(ctx, "login.Attempt")
	defer span.End()

	ok, err := g.access.SignIn(ctx, username, password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sign-in unavailable")
		g.metrics.LoginAttempt(metrics.OutcomeError)
		return Outcome{}, fmt.Errorf("sign in: %w", err)
	}
	if !ok {
		span.SetAttributes(attribute.String("login.outcome", metrics.OutcomeInvalidCredentials))
		g.metrics.LoginAttempt(metrics.OutcomeInvalidCredentials)
		return Outcome{Errored: true}, nil
	}
	span.SetAttributes(attribute.String("login.outcome", metrics.OutcomeSuccess))
	g.metrics.LoginAttempt(metrics.OutcomeSuccess)
	return Outcome{Navigate: DefaultRoute}, nil
}
