package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/louisbranch/bookstore/internal/platform/branding"
	"github.com/louisbranch/bookstore/internal/platform/i18n"
	"github.com/louisbranch/bookstore/internal/platform/i18n/catalog"
	"github.com/louisbranch/bookstore/internal/platform/telemetry/metrics"
	"github.com/louisbranch/bookstore/internal/services/shared/i18nhttp"
	"github.com/louisbranch/bookstore/internal/services/web/accesscontrol"
	"github.com/louisbranch/bookstore/internal/services/web/locale"
	"github.com/louisbranch/bookstore/internal/services/web/login"
	"github.com/louisbranch/bookstore/internal/services/web/platform/httpx"
	"github.com/louisbranch/bookstore/internal/services/web/platform/observability"
	"github.com/louisbranch/bookstore/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/bookstore/internal/services/web/platform/sessioncookie"
	"github.com/louisbranch/bookstore/internal/services/web/platform/weberror"
	"github.com/louisbranch/bookstore/internal/services/web/routepath"
	"github.com/louisbranch/bookstore/internal/services/web/session"
	"github.com/louisbranch/bookstore/internal/services/web/static"
	"github.com/louisbranch/bookstore/internal/services/web/templates"
)

// Dependencies are the collaborators of the web handler. AccessControl,
// Sessions and Cookies are required.
type Dependencies struct {
	AccessControl accesscontrol.AccessControl
	Sessions      *session.Manager
	Cookies       *sessioncookie.Codec
	// Catalog defaults to the embedded message catalogs.
	Catalog *catalog.Bundle
	Metrics *metrics.Recorder
	// Gatherer backs /metrics; the route is not registered when nil.
	Gatherer     prometheus.Gatherer
	SchemePolicy requestmeta.SchemePolicy
	AppName      string
	Version      string
	Logger       *log.Entry
}

type handler struct {
	sessions *session.Manager
	cookies  *sessioncookie.Codec
	catalog  *catalog.Bundle
	gate     *login.Gate
	selector *locale.Selector
	policy   requestmeta.SchemePolicy
	appName  string
	version  string
	logger   *log.Entry
}

// NewHandler builds the web service routes wrapped in request id, logging,
// panic recovery and same-origin checks.
func NewHandler(deps Dependencies) (http.Handler, error) {
	if deps.AccessControl == nil {
		return nil, errors.New("access control is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if deps.Cookies == nil {
		return nil, errors.New("session cookie codec is required")
	}
	bundle := deps.Catalog
	if bundle == nil {
		loaded, err := catalog.LoadEmbedded()
		if err != nil {
			return nil, fmt.Errorf("load message catalogs: %w", err)
		}
		bundle = loaded
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	appName := strings.TrimSpace(deps.AppName)
	if appName == "" {
		appName = branding.AppName
	}
	version := strings.TrimSpace(deps.Version)
	if version == "" {
		version = branding.Version()
	}

	h := &handler{
		sessions: deps.Sessions,
		cookies:  deps.Cookies,
		catalog:  bundle,
		gate:     login.NewGate(deps.AccessControl, deps.Metrics),
		selector: locale.NewSelector(deps.Metrics),
		policy:   deps.SchemePolicy,
		appName:  appName,
		version:  version,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.Handle("GET "+routepath.StaticPrefix, http.StripPrefix(routepath.StaticPrefix, http.FileServerFS(static.FS)))
	mux.HandleFunc("GET "+routepath.Health, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Gatherer != nil {
		mux.Handle("GET "+routepath.Metrics, metrics.Handler(deps.Gatherer))
	}

	mux.Handle("GET /{$}", h.withSession(h.requireSignedIn(http.HandlerFunc(h.handleHome))))
	mux.Handle("GET "+routepath.About, h.withSession(h.requireSignedIn(http.HandlerFunc(h.handleAbout))))
	mux.Handle("GET "+routepath.Login, h.withSession(http.HandlerFunc(h.handleLoginPage)))
	mux.Handle("POST "+routepath.Login, h.withSession(http.HandlerFunc(h.handleLoginSubmit)))
	mux.Handle("POST "+routepath.Logout, h.withSession(http.HandlerFunc(h.handleLogout)))
	mux.Handle("POST "+routepath.Locale, h.withSession(http.HandlerFunc(h.handleLocale)))
	mux.Handle("/", h.withSession(http.HandlerFunc(h.handleNotFound)))

	return httpx.Chain(mux,
		httpx.RequestID(),
		observability.RequestLogger(logger),
		httpx.RecoverPanic(logger),
		httpx.RequireSameOrigin(h.policy, http.HandlerFunc(h.handleForbiddenOrigin)),
	), nil
}

// pageFor builds the layout context from sess, or from the request's
// language preferences when there is no session.
func (h *handler) pageFor(r *http.Request, sess *session.Session) templates.PageContext {
	page := templates.PageContext{AppName: h.appName}
	if sess != nil {
		page.Lang = sess.Locale()
		page.Dir = sess.Direction()
		page.Principal = sess.Principal
	} else {
		page.Lang, _ = i18nhttp.ResolveLocale(r)
		page.Dir = i18n.DirectionFor(page.Lang)
	}
	page.Loc = h.catalog.Printer(page.Lang)
	return page
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, status int) {
	weberror.Write(w, r, h.pageFor(r, session.FromContext(r.Context())), status)
}

func (h *handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, http.StatusNotFound)
}

func (h *handler) handleForbiddenOrigin(w http.ResponseWriter, r *http.Request) {
	h.logger.WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"origin": r.Header.Get("Origin"),
	}).Warn("rejected cross-origin request")
	h.writeError(w, r, http.StatusForbidden)
}
