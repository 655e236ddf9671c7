package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Login attempt outcomes.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeError              = "error"
)

// Recorder owns the bookstore counters. A nil Recorder drops every sample so
// callers never need to guard against disabled metrics.
type Recorder struct {
	loginAttempts *prometheus.CounterVec
	localeChanges *prometheus.CounterVec
	grpcRequests  *prometheus.CounterVec
}

// NewRecorder creates the counters and registers them on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		return nil, fmt.Errorf("metrics registerer is required")
	}
	r := &Recorder{
		loginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookstore_login_attempts_total",
				Help: "Login form submissions by outcome.",
			},
			[]string{"outcome"},
		),
		localeChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookstore_locale_changes_total",
				Help: "Session locale changes by selected locale.",
			},
			[]string{"locale"},
		),
		grpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookstore_grpc_requests_total",
				Help: "Unary gRPC requests served by method and status code.",
			},
			[]string{"method", "code"},
		),
	}
	for _, collector := range []prometheus.Collector{r.loginAttempts, r.localeChanges, r.grpcRequests} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return r, nil
}

// LoginAttempt counts one login gate result.
func (r *Recorder) LoginAttempt(outcome string) {
	if r == nil {
		return
	}
	r.loginAttempts.WithLabelValues(outcome).Inc()
}

// LocaleChange counts one locale selector write.
func (r *Recorder) LocaleChange(locale string) {
	if r == nil {
		return
	}
	r.localeChanges.WithLabelValues(locale).Inc()
}

// UnaryServerInterceptor counts served unary calls by method and status code.
func (r *Recorder) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if r != nil {
			r.grpcRequests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		}
		return resp, err
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
