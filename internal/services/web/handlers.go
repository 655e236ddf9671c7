package web

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/louisbranch/bookstore/internal/platform/i18n"
	"github.com/louisbranch/bookstore/internal/services/shared/htmx"
	"github.com/louisbranch/bookstore/internal/services/shared/i18nhttp"
	"github.com/louisbranch/bookstore/internal/services/web/locale"
	"github.com/louisbranch/bookstore/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/bookstore/internal/services/web/platform/weberror"
	"github.com/louisbranch/bookstore/internal/services/web/routepath"
	"github.com/louisbranch/bookstore/internal/services/web/session"
	"github.com/louisbranch/bookstore/internal/services/web/templates"
)

func (h *handler) render(w http.ResponseWriter, r *http.Request, component templ.Component, status int, title string) {
	if err := htmx.RenderPage(r.Context(), w, r, component, status, title); err != nil {
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("render page")
		h.writeError(w, r, http.StatusInternalServerError)
	}
}

func (h *handler) handleHome(w http.ResponseWriter, r *http.Request) {
	page := h.pageFor(r, session.FromContext(r.Context()))
	h.render(w, r, templates.HomePage(page), http.StatusOK, templates.HomeTitle(page))
}

func (h *handler) handleAbout(w http.ResponseWriter, r *http.Request) {
	page := h.pageFor(r, session.FromContext(r.Context()))
	h.render(w, r, templates.AboutPage(page, h.version), http.StatusOK, templates.AboutTitle(page))
}

func (h *handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess.SignedIn() {
		htmx.Redirect(w, r, routepath.Root)
		return
	}
	// A lang link switches the language of an existing session too.
	if choice, ok := i18nhttp.ExplicitLocale(r); ok && choice != sess.Locale() {
		if err := h.selector.SetLocale(sess, choice); err != nil {
			h.writeError(w, r, weberror.HTTPStatus(err))
			return
		}
		if err := h.sessions.Save(r.Context(), sess); err != nil {
			h.logger.WithError(err).Error("save session locale")
			h.writeError(w, r, http.StatusInternalServerError)
			return
		}
	}
	h.renderLogin(w, r, sess, templates.LoginParams{
		ShowHint: r.URL.Query().Get(routepath.HintParam) == "1",
	}, http.StatusOK)
}

func (h *handler) renderLogin(w http.ResponseWriter, r *http.Request, sess *session.Session, params templates.LoginParams, status int) {
	params.Language = locale.Preselect(sess)
	page := h.pageFor(r, sess)
	h.render(w, r, templates.LoginPage(page, params), status, templates.LoginTitle(page))
}

func (h *handler) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get(templates.UsernameFieldName)
	password := r.PostForm.Get(templates.PasswordFieldName)

	outcome, err := h.gate.Attempt(r.Context(), username, password)
	if err != nil {
		status := weberror.HTTPStatus(err)
		h.logger.WithError(err).WithField("status", status).Error("sign in")
		h.writeError(w, r, status)
		return
	}

	sess := session.FromContext(r.Context())
	if outcome.Errored {
		status := http.StatusUnauthorized
		if htmx.IsHTMXRequest(r) {
			// htmx discards 4xx bodies; the form must still be swapped in.
			status = http.StatusOK
		}
		h.renderLogin(w, r, sess, templates.LoginParams{Username: username, Errored: true}, status)
		return
	}

	sess.SignIn(strings.TrimSpace(username))
	if err := h.rotateSession(w, r, sess); err != nil {
		h.logger.WithError(err).Error("rotate session after sign in")
		h.writeError(w, r, http.StatusInternalServerError)
		return
	}
	htmx.Redirect(w, r, outcome.Navigate)
}

func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	sess.SignOut()
	if err := h.rotateSession(w, r, sess); err != nil {
		h.logger.WithError(err).Error("rotate session after sign out")
		h.writeError(w, r, http.StatusInternalServerError)
		return
	}
	htmx.Redirect(w, r, routepath.Login)
}

func (h *handler) handleLocale(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, http.StatusBadRequest)
		return
	}
	raw := strings.TrimSpace(r.PostForm.Get(templates.LocaleFieldName))
	choice, ok := i18n.ParseLocale(raw)
	if !ok {
		choice = i18n.Locale(raw)
	}

	sess := session.FromContext(r.Context())
	if err := h.selector.SetLocale(sess, choice); err != nil {
		h.writeError(w, r, weberror.HTTPStatus(err))
		return
	}
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		h.logger.WithError(err).Error("save session locale")
		h.writeError(w, r, http.StatusInternalServerError)
		return
	}
	htmx.Reload(w, r, requestmeta.SameOriginReturnPath(r, h.policy, routepath.Login))
}
