package web

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/louisbranch/bookstore/internal/platform/errors"
	"github.com/louisbranch/bookstore/internal/platform/telemetry/metrics"
	"github.com/louisbranch/bookstore/internal/services/shared/htmx"
	"github.com/louisbranch/bookstore/internal/services/web/accesscontrol"
	"github.com/louisbranch/bookstore/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/bookstore/internal/services/web/platform/sessioncookie"
	"github.com/louisbranch/bookstore/internal/services/web/session"
	"github.com/louisbranch/bookstore/internal/services/web/session/memory"
)

const testOrigin = "http://books.example.test"

type testEnv struct {
	handler  http.Handler
	store    *memory.Store
	registry *prometheus.Registry
	logs     *bytes.Buffer
}

func adminOnly(_ context.Context, username, password string) (bool, error) {
	return username == "admin" && password == "correct", nil
}

func newTestEnv(t *testing.T, access accesscontrol.AccessControl) *testEnv {
	t.Helper()

	cookies, err := sessioncookie.NewCodec(bytes.Repeat([]byte("k"), sessioncookie.MinKeyBytes), time.Hour, requestmeta.SchemePolicy{})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	logs := &bytes.Buffer{}
	logger := log.New()
	logger.SetOutput(logs)
	logger.SetFormatter(&log.TextFormatter{DisableColors: true})

	store := memory.New()
	h, err := NewHandler(Dependencies{
		AccessControl: access,
		Sessions:      session.NewManager(store, time.Hour),
		Cookies:       cookies,
		Metrics:       recorder,
		Gatherer:      registry,
		AppName:       "Bookstore",
		Version:       "v1.2.3",
		Logger:        log.NewEntry(logger),
	})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return &testEnv{handler: h, store: store, registry: registry, logs: logs}
}

// do serves one request carrying cookie (when set) and returns the recorder
// along with the session cookie the response issued, if any.
func (e *testEnv) do(t *testing.T, req *http.Request, cookie *http.Cookie) (*httptest.ResponseRecorder, *http.Cookie) {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	var issued *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessioncookie.Name {
			issued = c
		}
	}
	return rr, issued
}

func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, testOrigin+path, nil)
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, testOrigin+path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", testOrigin)
	return req
}

func credentials(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

func TestNewHandlerRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(Dependencies{}); err == nil {
		t.Fatal("expected error without access control")
	}
	if _, err := NewHandler(Dependencies{AccessControl: accesscontrol.Basic{}}); err == nil {
		t.Fatal("expected error without session manager")
	}
}

func TestDefaultRouteRedirectsToLoginWhenSignedOut(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	rr, cookie := env.do(t, get("/"), nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Fatalf("Location = %q, want /login", loc)
	}
	if cookie == nil {
		t.Fatal("expected a session cookie on first visit")
	}
	if env.store.Len() != 1 {
		t.Fatalf("expected one stored session, got %d", env.store.Len())
	}
}

func TestLoginPageUsesAcceptLanguage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	req := get("/login")
	req.Header.Set("Accept-Language", "fa-IR,fa;q=0.9,en;q=0.5")
	rr, _ := env.do(t, req, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `lang="fa-IR" dir="rtl"`) {
		t.Fatalf("expected persian rtl page, got %q", body)
	}
	if !strings.Contains(body, `<option value="fa-IR" lang="fa-IR" selected>`) {
		t.Fatalf("expected persian preselected, got %q", body)
	}
}

func TestLoginPageShowsHint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	rr, _ := env.do(t, get("/login?hint=1"), nil)
	if !strings.Contains(rr.Body.String(), "Hint: the password is the same as the username.") {
		t.Fatalf("expected hint, got %q", rr.Body.String())
	}
}

func TestLoginSuccessNavigatesAndRotatesSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	_, first := env.do(t, get("/login"), nil)

	rr, rotated := env.do(t, postForm("/login", credentials("admin", "correct")), first)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Fatalf("Location = %q, want /", loc)
	}
	if rotated == nil || rotated.Value == first.Value {
		t.Fatal("expected a new session cookie after sign in")
	}
	if got := len(rr.Result().Header.Values("Set-Cookie")); got != 1 {
		t.Fatalf("expected exactly one Set-Cookie, got %d", got)
	}

	home, _ := env.do(t, get("/"), rotated)
	if home.Code != http.StatusOK {
		t.Fatalf("home status = %d, want %d", home.Code, http.StatusOK)
	}
	if !strings.Contains(home.Body.String(), "Welcome, admin") {
		t.Fatalf("expected greeting, got %q", home.Body.String())
	}

	// The pre-login cookie no longer grants the signed-in session.
	stale, _ := env.do(t, get("/"), first)
	if stale.Code != http.StatusSeeOther {
		t.Fatalf("stale cookie status = %d, want %d", stale.Code, http.StatusSeeOther)
	}
}

func TestRequestLogNamesSignedInPrincipal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	_, cookie := env.do(t, postForm("/login", credentials("admin", "correct")), nil)
	if !strings.Contains(env.logs.String(), "principal=admin") {
		t.Fatalf("expected principal in request log, got %q", env.logs.String())
	}
	env.logs.Reset()
	env.do(t, get("/about"), cookie)
	logs := env.logs.String()
	if !strings.Contains(logs, "path=/about") || !strings.Contains(logs, "principal=admin") || !strings.Contains(logs, "session_id=") {
		t.Fatalf("expected identity on about request log, got %q", logs)
	}
}

func TestLoginFailureMarksFormErrored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "admin", password: "wrong"},
		{name: "empty fields", username: "", password: ""},
	}
	for _, tt := range tests {
		env := newTestEnv(t, accesscontrol.Func(adminOnly))
		rr, _ := env.do(t, postForm("/login", credentials(tt.username, tt.password)), nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want %d", tt.name, rr.Code, http.StatusUnauthorized)
		}
		if loc := rr.Header().Get("Location"); loc != "" {
			t.Fatalf("%s: unexpected navigation to %q", tt.name, loc)
		}
		body := rr.Body.String()
		if !strings.Contains(body, "Incorrect username or password") {
			t.Fatalf("%s: expected error banner, got %q", tt.name, body)
		}
		if strings.Contains(body, `value="`+tt.password+`"`) && tt.password != "" {
			t.Fatalf("%s: password must not be refilled", tt.name)
		}
	}
}

func TestBasicVerifierSignInReachesHome(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Basic{})
	rr, _ := env.do(t, postForm("/login", credentials("  ", "  ")), nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("blank username: status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rr.Body.String(), "Incorrect username or password") {
		t.Fatalf("blank username: expected error banner, got %q", rr.Body.String())
	}

	rr, cookie := env.do(t, postForm("/login", credentials("reader", "reader")), nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("sign in: status = %d, Location = %q", rr.Code, rr.Header().Get("Location"))
	}
	if cookie == nil {
		t.Fatal("expected a session cookie after sign in")
	}
	rr, _ = env.do(t, get("/"), cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("home after sign in: status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestLoginFailureForHTMXSwapsForm(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	req := postForm("/login", credentials("admin", "wrong"))
	req.Header.Set(htmx.RequestHeaderKey, "true")
	rr, _ := env.do(t, req, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	if strings.Contains(body, "<html") {
		t.Fatalf("expected main fragment only, got %q", body)
	}
	if !strings.Contains(body, `value="admin"`) {
		t.Fatalf("expected username refilled, got %q", body)
	}
}

func TestLoginSuccessForHTMXUsesRedirectHeader(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	req := postForm("/login", credentials("admin", "correct"))
	req.Header.Set(htmx.RequestHeaderKey, "true")
	rr, _ := env.do(t, req, nil)
	if got := rr.Header().Get(htmx.RedirectHeaderKey); got != "/" {
		t.Fatalf("HX-Redirect = %q, want /", got)
	}
}

func TestLoginVerifierFailureRendersUnavailable(t *testing.T) {
	t.Parallel()

	down := accesscontrol.Func(func(context.Context, string, string) (bool, error) {
		return false, apperrors.FromGRPCStatus(status.Error(codes.Unavailable, "connection refused"))
	})
	env := newTestEnv(t, down)
	rr, _ := env.do(t, postForm("/login", credentials("admin", "correct")), nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	body := rr.Body.String()
	if strings.Contains(body, "Incorrect username or password") {
		t.Fatal("verifier failure must not look like a credential failure")
	}
	if !strings.Contains(body, "The sign-in service is unavailable.") {
		t.Fatalf("expected unavailable message, got %q", body)
	}
}

func TestLocaleChangeFlipsDirectionAndReloads(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	_, cookie := env.do(t, get("/login"), nil)

	req := postForm("/locale", url.Values{"locale": {"fa-IR"}})
	req.Header.Set("Referer", testOrigin+"/login?hint=1")
	rr, _ := env.do(t, req, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/login?hint=1" {
		t.Fatalf("Location = %q, want /login?hint=1", loc)
	}

	page, _ := env.do(t, get("/login"), cookie)
	if !strings.Contains(page.Body.String(), `lang="fa-IR" dir="rtl"`) {
		t.Fatalf("expected rtl after locale change, got %q", page.Body.String())
	}

	// Choosing English twice leaves the same state as once.
	for i := 0; i < 2; i++ {
		env.do(t, postForm("/locale", url.Values{"locale": {"en-US"}}), cookie)
	}
	page, _ = env.do(t, get("/login"), cookie)
	if !strings.Contains(page.Body.String(), `lang="en-US" dir="ltr"`) {
		t.Fatalf("expected ltr after switching back, got %q", page.Body.String())
	}
}

func TestLocaleChangeForHTMXRefreshes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	req := postForm("/locale", url.Values{"locale": {"fa"}})
	req.Header.Set(htmx.RequestHeaderKey, "true")
	rr, _ := env.do(t, req, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Header().Get(htmx.RefreshHeaderKey); got != "true" {
		t.Fatalf("HX-Refresh = %q, want true", got)
	}
}

func TestLocaleChangeRejectsUnsupported(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	rr, _ := env.do(t, postForm("/locale", url.Values{"locale": {"de-DE"}}), nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rr.Body.String(), "This language is not supported.") {
		t.Fatalf("expected unsupported message, got %q", rr.Body.String())
	}
}

func TestCrossOriginPostIsRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	req := postForm("/login", credentials("admin", "correct"))
	req.Header.Set("Origin", "http://evil.example.test")
	rr, _ := env.do(t, req, nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestLogoutSignsOut(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	_, cookie := env.do(t, postForm("/login", credentials("admin", "correct")), nil)

	rr, after := env.do(t, postForm("/logout", nil), cookie)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("logout = %d %q, want 303 /login", rr.Code, rr.Header().Get("Location"))
	}
	home, _ := env.do(t, get("/"), after)
	if home.Code != http.StatusSeeOther {
		t.Fatalf("home after logout = %d, want %d", home.Code, http.StatusSeeOther)
	}
}

func TestAboutShowsVersionWhenSignedIn(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	signedOut, _ := env.do(t, get("/about"), nil)
	if signedOut.Code != http.StatusSeeOther {
		t.Fatalf("signed-out about = %d, want %d", signedOut.Code, http.StatusSeeOther)
	}

	_, cookie := env.do(t, postForm("/login", credentials("admin", "correct")), nil)
	rr, _ := env.do(t, get("/about"), cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "This bookstore is running version v1.2.3.") {
		t.Fatalf("expected version sign, got %q", rr.Body.String())
	}
}

func TestTamperedCookieStartsNewSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	_, cookie := env.do(t, postForm("/login", credentials("admin", "correct")), nil)
	tampered := &http.Cookie{Name: cookie.Name, Value: cookie.Value + "x"}

	rr, fresh := env.do(t, get("/"), tampered)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if fresh == nil || fresh.Value == cookie.Value {
		t.Fatal("expected a fresh session cookie")
	}
}

func TestOperationalRoutes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, accesscontrol.Func(adminOnly))
	env.do(t, postForm("/login", credentials("admin", "wrong")), nil)

	health, _ := env.do(t, get("/healthz"), nil)
	if health.Code != http.StatusOK || health.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", health.Code, health.Body.String())
	}
	metricsRR, _ := env.do(t, get("/metrics"), nil)
	if !strings.Contains(metricsRR.Body.String(), `bookstore_login_attempts_total{outcome="invalid_credentials"} 1`) {
		t.Fatalf("metrics missing login counter: %q", metricsRR.Body.String())
	}
	for _, asset := range []string{"/static/app.css", "/static/app.js"} {
		rr, _ := env.do(t, get(asset), nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want %d", asset, rr.Code, http.StatusOK)
		}
	}
	missing, _ := env.do(t, get("/missing"), nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d, want %d", missing.Code, http.StatusNotFound)
	}
	if missing.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
}
