package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	r.LoginAttempt(OutcomeSuccess)
	r.LoginAttempt(OutcomeInvalidCredentials)
	r.LoginAttempt(OutcomeInvalidCredentials)
	r.LocaleChange("fa-IR")

	if got := testutil.ToFloat64(r.loginAttempts.WithLabelValues(OutcomeInvalidCredentials)); got != 2 {
		t.Fatalf("invalid credentials count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.loginAttempts.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Fatalf("success count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.localeChanges.WithLabelValues("fa-IR")); got != 1 {
		t.Fatalf("locale change count = %v, want 1", got)
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.LoginAttempt(OutcomeError)
	r.LocaleChange("en-US")

	interceptor := r.UnaryServerInterceptor()
	resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/Y"}, func(context.Context, any) (any, error) {
		return "ok", nil
	})
	if err != nil || resp != "ok" {
		t.Fatalf("interceptor = (%v, %v), want (ok, nil)", resp, err)
	}
}

func TestNewRecorderRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewRecorder(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if _, err := NewRecorder(nil); err == nil {
		t.Fatal("expected nil registerer error")
	}
}

func TestUnaryServerInterceptorRecordsCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/accesscontrol.v1.AccessControlService/SignIn"}
	_, _ = r.UnaryServerInterceptor()(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.InvalidArgument, "bad")
	})

	if got := testutil.ToFloat64(r.grpcRequests.WithLabelValues(info.FullMethod, codes.InvalidArgument.String())); got != 1 {
		t.Fatalf("grpc request count = %v, want 1", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	r.LoginAttempt(OutcomeSuccess)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Result().Body)
	if !strings.Contains(string(body), `bookstore_login_attempts_total{outcome="success"} 1`) {
		t.Fatalf("metrics body missing login counter:\n%s", body)
	}
}
