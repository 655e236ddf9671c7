package templates

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/louisbranch/bookstore/internal/services/web/routepath"
)

// ErrorMessageKey returns the catalog key describing an HTTP status.
func ErrorMessageKey(status int) string {
	switch status {
	case http.StatusServiceUnavailable:
		return "error.http.unavailable"
	case http.StatusMethodNotAllowed:
		return "error.http.method_not_allowed"
	case http.StatusForbidden:
		return "error.http.forbidden_origin"
	case http.StatusNotFound:
		return "error.http.not_found"
	case http.StatusBadRequest:
		return "error.http.unsupported_locale"
	default:
		return "error.http.internal"
	}
}

// ErrorTitle returns the document title of error pages.
func ErrorTitle(page PageContext) string {
	return T(page.Loc, "core.title.error", page.AppName)
}

// ErrorPage renders a localized error for status.
func ErrorPage(page PageContext, status int) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<section class=\"error\"><h1>")
		h.text(T(page.Loc, "error.title"))
		h.raw("</h1><p>")
		h.text(T(page.Loc, ErrorMessageKey(status)))
		h.raw("</p><a")
		h.attr("href", routepath.Root)
		h.raw(">")
		h.text(T(page.Loc, "error.back"))
		h.raw("</a></section>")
		return h.err
	})
	return Layout(page, ErrorTitle(page), body)
}
