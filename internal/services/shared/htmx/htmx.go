// Package htmx renders pages and navigation responses for both plain browser
// requests and htmx-driven partial requests.
package htmx

import (
	"bytes"
	"context"
	"html"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// Request and response headers understood by htmx.
const (
	RequestHeaderKey  = "HX-Request"
	RefreshHeaderKey  = "HX-Refresh"
	RedirectHeaderKey = "HX-Redirect"
)

// IsHTMXRequest reports whether the request was initiated by htmx.
func IsHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(RequestHeaderKey), "true")
}

// TitleTag formats an escaped `<title>` element.
func TitleTag(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return "<title>" + html.EscapeString(title) + "</title>"
}

// RenderPage renders page with status. htmx requests receive only the inner
// content of the page's <main> element, prefixed with a title tag so the
// browser tab stays current.
func RenderPage(ctx context.Context, w http.ResponseWriter, r *http.Request, page templ.Component, status int, title string) error {
	if page == nil {
		return nil
	}
	if status == 0 {
		status = http.StatusOK
	}
	var body bytes.Buffer
	if err := page.Render(ctx, &body); err != nil {
		return err
	}

	out := body.Bytes()
	if IsHTMXRequest(r) {
		if main, ok := extractMainContent(out); ok {
			out = main
		}
		out = prependTitleIfMissing(out, TitleTag(title))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(out)
	return err
}

// Redirect navigates the client to target: htmx follows HX-Redirect, other
// clients get 303 See Other.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMXRequest(r) {
		w.Header().Set(RedirectHeaderKey, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Reload asks the client for a full page reload. htmx receives HX-Refresh;
// other clients are sent back to target with 303 See Other.
func Reload(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMXRequest(r) {
		w.Header().Set(RefreshHeaderKey, "true")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func prependTitleIfMissing(body []byte, title string) []byte {
	if title == "" || bytes.Contains(bytes.ToLower(body), []byte("<title")) {
		return body
	}
	return append([]byte(title), body...)
}

func extractMainContent(body []byte) ([]byte, bool) {
	start := bytes.Index(body, []byte("<main"))
	if start < 0 {
		return nil, false
	}
	openClose := bytes.Index(body[start:], []byte(">"))
	if openClose < 0 {
		return nil, false
	}
	contentStart := start + openClose + 1
	end := bytes.Index(body[contentStart:], []byte("</main>"))
	if end < 0 {
		return nil, false
	}
	return body[contentStart : contentStart+end], true
}
