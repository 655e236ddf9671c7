// Package locale implements the two-option language selector shown on the
// login screen.
package locale

import (
	apperrors "github.com/louisbranch/bookstore/internal/platform/errors"
	"github.com/louisbranch/bookstore/internal/platform/i18n"
	"github.com/louisbranch/bookstore/internal/platform/telemetry/metrics"
	"github.com/louisbranch/bookstore/internal/services/web/session"
)

// Option is one entry of the language select.
type Option struct {
	Locale   i18n.Locale
	Label    string
	Selected bool
}

// View is what the selector renders: the options with one selected and the
// text direction the page should use.
type View struct {
	Options   []Option
	Direction i18n.Direction
}

// Selected returns the selected option's locale.
func (v View) Selected() i18n.Locale {
	for _, option := range v.Options {
		if option.Selected {
			return option.Locale
		}
	}
	return i18n.DefaultLocale
}

// Selector writes locale choices into sessions.
type Selector struct {
	metrics *metrics.Recorder
}

// NewSelector creates a Selector. recorder may be nil.
func NewSelector(recorder *metrics.Recorder) *Selector {
	return &Selector{metrics: recorder}
}

// SetLocale stores choice and its direction on sess. The caller persists the
// session and then reloads the page.
func (s *Selector) SetLocale(sess *session.Session, choice i18n.Locale) error {
	if sess == nil {
		return apperrors.New(apperrors.CodeSessionNotFound, "session is required")
	}
	if !i18n.IsSupported(choice) {
		return apperrors.WithMetadata(apperrors.CodeUnsupportedLocale,
			"unsupported locale",
			map[string]string{"locale": string(choice)})
	}
	sess.SetLocale(choice)
	if s != nil {
		s.metrics.LocaleChange(choice.String())
	}
	return nil
}

// Preselect builds the view for a session being rendered.
func Preselect(sess *session.Session) View {
	return OnLocaleChange(sess.Locale())
}

// OnLocaleChange builds the view for a locale change notification.
func OnLocaleChange(locale i18n.Locale) View {
	if !i18n.IsSupported(locale) {
		locale = i18n.DefaultLocale
	}
	supported := i18n.SupportedLocales()
	options := make([]Option, 0, len(supported))
	for _, candidate := range supported {
		options = append(options, Option{
			Locale:   candidate,
			Label:    candidate.Label(),
			Selected: candidate == locale,
		})
	}
	return View{Options: options, Direction: i18n.DirectionFor(locale)}
}
