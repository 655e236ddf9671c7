// Package i18n defines the supported locales, their text direction and the
// language-tag matching used to pick a locale for a request.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale identifies one supported UI language by its BCP 47 tag.
type Locale string

const (
	// English is the default locale.
	English Locale = "en-US"
	// Persian is rendered right-to-left.
	Persian Locale = "fa-IR"
)

// DefaultLocale is used when nothing in the request selects a locale.
const DefaultLocale = English

// Direction is the text direction of a locale, usable as an HTML dir value.
type Direction string

const (
	// LTR is left-to-right text.
	LTR Direction = "ltr"
	// RTL is right-to-left text.
	RTL Direction = "rtl"
)

// directions is the only place a locale is mapped to a direction.
var directions = map[Locale]Direction{
	English: LTR,
	Persian: RTL,
}

// nativeLabels name each locale in its own language, so the selector stays
// readable whatever the current locale is.
var nativeLabels = map[Locale]string{
	English: "English",
	Persian: "فارسی",
}

var supported = []Locale{English, Persian}

var matcher = language.NewMatcher(supportedTags())

// DirectionFor returns the text direction for locale. Unsupported values
// fall back to the default locale's direction.
func DirectionFor(locale Locale) Direction {
	if dir, ok := directions[locale]; ok {
		return dir
	}
	return directions[DefaultLocale]
}

// SupportedLocales returns the selectable locales in display order.
func SupportedLocales() []Locale {
	out := make([]Locale, len(supported))
	copy(out, supported)
	return out
}

// IsSupported reports whether locale is one of the selectable locales.
func IsSupported(locale Locale) bool {
	_, ok := directions[locale]
	return ok
}

// String returns the BCP 47 tag.
func (l Locale) String() string {
	return string(l)
}

// Tag returns the language tag for the locale.
func (l Locale) Tag() language.Tag {
	tag, err := language.Parse(string(l))
	if err != nil {
		return language.Make(string(DefaultLocale))
	}
	return tag
}

// Label returns the locale's name in its own language.
func (l Locale) Label() string {
	if label, ok := nativeLabels[l]; ok {
		return label
	}
	return string(l)
}

// ParseLocale maps a free-form tag ("fa", "en-GB", "fa-IR") to a supported
// locale. It reports false when the value does not match any locale with
// at least high confidence.
func ParseLocale(value string) (Locale, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", false
	}
	_, index, confidence := matcher.Match(tag)
	if confidence < language.High {
		return "", false
	}
	return supported[index], true
}

// MatchTags returns the best supported locale for an ordered preference list,
// typically parsed from Accept-Language.
func MatchTags(tags []language.Tag) Locale {
	if len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return supported[index]
}

func supportedTags() []language.Tag {
	tags := make([]language.Tag, 0, len(supported))
	for _, locale := range supported {
		tags = append(tags, language.MustParse(string(locale)))
	}
	return tags
}
