package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/louisbranch/bookstore/internal/services/web/locale"
	"github.com/louisbranch/bookstore/internal/services/web/routepath"
)

// LocaleFieldName is the form field carrying the selected locale.
const LocaleFieldName = "locale"

// LanguageSelect renders the two-option language form. Changing the
// selection posts it; the button only shows without scripting.
func LanguageSelect(page PageContext, view locale.View) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<form class=\"language-select\" method=\"post\"")
		h.attr("action", routepath.Locale)
		h.raw(" data-autosubmit><label for=\"locale\">")
		h.text(T(page.Loc, "core.language"))
		h.raw("</label><select id=\"locale\"")
		h.attr("name", LocaleFieldName)
		h.raw(">")
		for _, option := range view.Options {
			h.raw("<option")
			h.attr("value", option.Locale.String())
			h.attr("lang", option.Locale.String())
			if option.Selected {
				h.raw(" selected")
			}
			h.raw(">")
			h.text(option.Label)
			h.raw("</option>")
		}
		h.raw("</select><noscript><button type=\"submit\">")
		h.text(T(page.Loc, "core.language.submit"))
		h.raw("</button></noscript></form>")
		return h.err
	})
}
