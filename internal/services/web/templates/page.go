package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/louisbranch/bookstore/internal/platform/i18n"
	"github.com/louisbranch/bookstore/internal/services/web/routepath"
)

// PageContext provides shared layout context for pages.
type PageContext struct {
	Lang      i18n.Locale
	Dir       i18n.Direction
	Loc       Localizer
	AppName   string
	Principal string
}

// SignedIn reports whether the page renders for a signed-in visitor.
func (p PageContext) SignedIn() bool {
	return p.Principal != ""
}

// Layout wraps body in the document shell. The html element carries the
// session's language and text direction.
func Layout(page PageContext, title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<!DOCTYPE html><html")
		h.attr("lang", page.Lang.String())
		h.attr("dir", string(page.Dir))
		h.raw("><head><meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"><title>")
		h.text(title)
		h.raw("</title><link rel=\"stylesheet\"")
		h.attr("href", routepath.StaticPrefix+"app.css")
		h.raw("><script defer")
		h.attr("src", routepath.StaticPrefix+"app.js")
		h.raw("></script></head><body><header class=\"app-header\"><a class=\"brand\"")
		h.attr("href", routepath.Root)
		h.raw(">")
		h.text(page.AppName)
		h.raw("</a>")
		if page.SignedIn() {
			h.raw("<nav><a")
			h.attr("href", routepath.Root)
			h.raw(">")
			h.text(T(page.Loc, "core.nav.home"))
			h.raw("</a><a")
			h.attr("href", routepath.About)
			h.raw(">")
			h.text(T(page.Loc, "core.nav.about"))
			h.raw("</a><form method=\"post\"")
			h.attr("action", routepath.Logout)
			h.raw("><button type=\"submit\">")
			h.text(T(page.Loc, "core.nav.logout"))
			h.raw("</button></form></nav>")
		}
		h.raw("</header><main id=\"main\">")
		h.child(ctx, body)
		h.raw("</main></body></html>")
		return h.err
	})
}
