package locale

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	apperrors "github.com/louisbranch/bookstore/internal/platform/errors"
	"github.com/louisbranch/bookstore/internal/platform/i18n"
	"github.com/louisbranch/bookstore/internal/platform/telemetry/metrics"
	"github.com/louisbranch/bookstore/internal/services/web/session"
)

func newSession(locale i18n.Locale) *session.Session {
	return session.New("s", locale, time.Now(), time.Hour)
}

func TestSetLocaleWritesMappedDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		choice i18n.Locale
		want   i18n.Direction
	}{
		{choice: i18n.English, want: i18n.LTR},
		{choice: i18n.Persian, want: i18n.RTL},
	}
	for _, tt := range tests {
		sess := newSession(i18n.English)
		if err := NewSelector(nil).SetLocale(sess, tt.choice); err != nil {
			t.Fatalf("SetLocale(%s): %v", tt.choice, err)
		}
		if sess.Locale() != tt.choice || sess.Direction() != tt.want {
			t.Fatalf("SetLocale(%s) = %s/%s, want %s/%s", tt.choice, sess.Locale(), sess.Direction(), tt.choice, tt.want)
		}
	}
}

func TestSetLocaleIsIdempotent(t *testing.T) {
	t.Parallel()

	selector := NewSelector(nil)
	once := newSession(i18n.Persian)
	twice := newSession(i18n.Persian)
	twice.CreatedAt, twice.ExpiresAt = once.CreatedAt, once.ExpiresAt

	_ = selector.SetLocale(once, i18n.English)
	_ = selector.SetLocale(twice, i18n.English)
	_ = selector.SetLocale(twice, i18n.English)

	if *once != *twice {
		t.Fatalf("expected same state, got %+v and %+v", once, twice)
	}
}

func TestSetLocaleRejectsUnsupported(t *testing.T) {
	t.Parallel()

	sess := newSession(i18n.Persian)
	err := NewSelector(nil).SetLocale(sess, i18n.Locale("de-DE"))
	if apperrors.CodeOf(err) != apperrors.CodeUnsupportedLocale {
		t.Fatalf("expected unsupported locale error, got %v", err)
	}
	if sess.Locale() != i18n.Persian {
		t.Fatal("expected session to keep its locale")
	}
	if apperrors.CodeOf(NewSelector(nil).SetLocale(nil, i18n.English)) != apperrors.CodeSessionNotFound {
		t.Fatal("expected nil session error")
	}
}

func TestPreselectPersianSession(t *testing.T) {
	t.Parallel()

	view := Preselect(newSession(i18n.Persian))
	if view.Direction != i18n.RTL {
		t.Fatalf("direction = %s, want rtl", view.Direction)
	}
	if view.Selected() != i18n.Persian {
		t.Fatalf("selected = %s, want %s", view.Selected(), i18n.Persian)
	}
	selected := 0
	for _, option := range view.Options {
		if option.Selected {
			selected++
		}
	}
	if selected != 1 || len(view.Options) != 2 {
		t.Fatalf("expected two options with one selected, got %+v", view.Options)
	}
}

func TestOnLocaleChangeMatchesPreselect(t *testing.T) {
	t.Parallel()

	for _, locale := range i18n.SupportedLocales() {
		fromSession := Preselect(newSession(locale))
		fromEvent := OnLocaleChange(locale)
		if fromSession.Direction != fromEvent.Direction || fromSession.Selected() != fromEvent.Selected() {
			t.Fatalf("paths disagree for %s: %+v vs %+v", locale, fromSession, fromEvent)
		}
	}
	if got := OnLocaleChange(i18n.Locale("xx")); got.Selected() != i18n.English || got.Direction != i18n.LTR {
		t.Fatalf("unsupported locale should map to English/LTR, got %+v", got)
	}
}

func TestOptionLabels(t *testing.T) {
	t.Parallel()

	view := OnLocaleChange(i18n.English)
	labels := map[i18n.Locale]string{}
	for _, option := range view.Options {
		labels[option.Locale] = option.Label
	}
	if labels[i18n.English] != "English" || labels[i18n.Persian] != "فارسی" {
		t.Fatalf("unexpected labels %v", labels)
	}
}

func TestSetLocaleCountsChanges(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	_ = NewSelector(recorder).SetLocale(newSession(i18n.English), i18n.Persian)

	const expected = `
# HELP bookstore_locale_changes_total Session locale changes by selected locale.
# TYPE bookstore_locale_changes_total counter
bookstore_locale_changes_total{locale="fa-IR"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "bookstore_locale_changes_total"); err != nil {
		t.Fatalf("metrics mismatch: %v", err)
	}
}
