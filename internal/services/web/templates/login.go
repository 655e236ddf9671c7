package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/louisbranch/bookstore/internal/services/web/locale"
	"github.com/louisbranch/bookstore/internal/services/web/routepath"
)

// Login form field names.
const (
	UsernameFieldName = "username"
	PasswordFieldName = "password"
)

// LoginParams configures the login screen.
type LoginParams struct {
	// Username refills the form after a failed attempt. The password never is.
	Username string
	Errored  bool
	ShowHint bool
	Language locale.View
}

// LoginTitle returns the document title of the login screen.
func LoginTitle(page PageContext) string {
	return T(page.Loc, "core.title.login", page.AppName)
}

// LoginPage renders the login screen: info panel, language select and form.
func LoginPage(page PageContext, params LoginParams) templ.Component {
	return Layout(page, LoginTitle(page), loginBody(page, params))
}

func loginBody(page PageContext, params LoginParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<section class=\"login-screen\"><aside class=\"login-info\"><h1>")
		h.text(T(page.Loc, "login.info"))
		h.raw("</h1><p>")
		h.text(T(page.Loc, "login.info_text"))
		h.raw("</p>")
		h.child(ctx, LanguageSelect(page, params.Language))
		h.raw("</aside><div class=\"login-form\"><h2>")
		h.text(T(page.Loc, "login.title"))
		h.raw("</h2>")
		if params.Errored {
			h.raw("<div class=\"form-error\" role=\"alert\"><strong>")
			h.text(T(page.Loc, "login.error_title"))
			h.raw("</strong><p>")
			h.text(T(page.Loc, "login.error_message"))
			h.raw("</p></div>")
		}
		if params.ShowHint {
			h.raw("<div class=\"notification\" role=\"status\">")
			h.text(T(page.Loc, "login.hint"))
			h.raw("</div>")
		}
		h.raw("<form method=\"post\"")
		h.attr("action", routepath.Login)
		h.raw("><label for=\"username\">")
		h.text(T(page.Loc, "login.username"))
		h.raw("</label><input id=\"username\" type=\"text\" autocomplete=\"username\"")
		h.attr("name", UsernameFieldName)
		h.attr("value", params.Username)
		if params.Errored {
			h.raw(" aria-invalid=\"true\"")
		}
		h.raw("><label for=\"password\">")
		h.text(T(page.Loc, "login.password"))
		h.raw("</label><input id=\"password\" type=\"password\" autocomplete=\"current-password\"")
		h.attr("name", PasswordFieldName)
		if params.Errored {
			h.raw(" aria-invalid=\"true\"")
		}
		h.raw("><button type=\"submit\">")
		h.text(T(page.Loc, "login.submit"))
		h.raw("</button></form><a class=\"forgot-password\"")
		h.attr("href", routepath.LoginHint)
		h.raw(">")
		h.text(T(page.Loc, "login.forgot_password"))
		h.raw("</a></div></section>")
		return h.err
	})
}
