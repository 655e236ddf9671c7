package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// HomeTitle returns the document title of the default route.
func HomeTitle(page PageContext) string {
	return T(page.Loc, "core.title.home", page.AppName)
}

// HomePage greets the signed-in principal.
func HomePage(page PageContext) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<section class=\"home\"><h1>")
		h.text(T(page.Loc, "core.home.welcome", page.Principal))
		h.raw("</h1><p>")
		h.text(T(page.Loc, "core.home.text"))
		h.raw("</p></section>")
		return h.err
	})
	return Layout(page, HomeTitle(page), body)
}
