package web

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/louisbranch/bookstore/internal/platform/requestctx"
	"github.com/louisbranch/bookstore/internal/services/shared/htmx"
	"github.com/louisbranch/bookstore/internal/services/shared/i18nhttp"
	"github.com/louisbranch/bookstore/internal/services/web/platform/weberror"
	"github.com/louisbranch/bookstore/internal/services/web/routepath"
	"github.com/louisbranch/bookstore/internal/services/web/session"
)

// withSession loads the visitor's session from the cookie, or starts one in
// the request's preferred locale, and slides its expiry.
func (h *handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.resolveSession(r)
		if err != nil {
			h.logger.WithError(err).WithField("path", r.URL.Path).Error("resolve session")
			weberror.Write(w, r, h.pageFor(r, nil), weberror.HTTPStatus(err))
			return
		}
		if err := h.cookies.Write(w, r, sess.ID); err != nil {
			h.logger.WithError(err).Error("write session cookie")
			weberror.Write(w, r, h.pageFor(r, sess), http.StatusInternalServerError)
			return
		}

		requestctx.SetIdentity(r.Context(), sess.ID, sess.Principal)
		next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
	})
}

func (h *handler) resolveSession(r *http.Request) (*session.Session, error) {
	ctx := r.Context()
	if sessionID, ok := h.cookies.Read(r); ok {
		sess, err := h.sessions.Load(ctx, sessionID)
		switch {
		case err == nil:
			if err := h.sessions.Save(ctx, sess); err != nil {
				return nil, err
			}
			return sess, nil
		case !errors.Is(err, session.ErrNotFound):
			return nil, err
		}
	}
	preferred, _ := i18nhttp.ResolveLocale(r)
	sess, err := h.sessions.Create(ctx, preferred)
	if err != nil {
		return nil, err
	}
	h.logger.WithFields(log.Fields{
		"session_id": sess.ID,
		"locale":     sess.Locale().String(),
	}).Debug("session started")
	return sess, nil
}

// requireSignedIn sends visitors without a principal to the login screen.
func (h *handler) requireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).SignedIn() {
			htmx.Redirect(w, r, routepath.Login)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rotateSession moves sess to a fresh id and reissues the cookie. Used on
// every change of principal.
func (h *handler) rotateSession(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	if err := h.sessions.Renew(r.Context(), sess); err != nil {
		return err
	}
	requestctx.SetIdentity(r.Context(), sess.ID, sess.Principal)
	// Replace the cookie withSession already queued for the old id.
	w.Header().Del("Set-Cookie")
	return h.cookies.Write(w, r, sess.ID)
}
