// Package i18nhttp resolves the display locale of an incoming request.
package i18nhttp

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/louisbranch/bookstore/internal/platform/i18n"
)

// LangParam is the query parameter used to select a language.
const LangParam = "lang"

// ResolveLocale picks the locale for a request without a session: the lang
// query parameter, then Accept-Language, then the default. The bool reports
// whether the lang parameter decided it.
func ResolveLocale(r *http.Request) (i18n.Locale, bool) {
	if r == nil {
		return i18n.DefaultLocale, false
	}
	if r.URL != nil {
		if value := strings.TrimSpace(r.URL.Query().Get(LangParam)); value != "" {
			if locale, ok := i18n.ParseLocale(value); ok {
				return locale, true
			}
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return i18n.MatchTags(tags), false
		}
	}
	return i18n.DefaultLocale, false
}

// ExplicitLocale returns the locale named by the lang query parameter.
func ExplicitLocale(r *http.Request) (i18n.Locale, bool) {
	locale, explicit := ResolveLocale(r)
	if !explicit {
		return "", false
	}
	return locale, true
}
