package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// AboutTitle returns the document title of the About view.
func AboutTitle(page PageContext) string {
	return T(page.Loc, "core.title.about", page.AppName)
}

// AboutPage shows the application sign followed by the running version.
func AboutPage(page PageContext, version string) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<section class=\"about\"><h1>")
		h.text(T(page.Loc, "about.title"))
		h.raw("</h1><p class=\"application-sign\">")
		h.text(T(page.Loc, "about.application_sign", version))
		h.raw("</p></section>")
		return h.err
	})
	return Layout(page, AboutTitle(page), body)
}
