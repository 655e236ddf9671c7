// Package sessiontest checks session.Store implementations against the
// behavior the web tier relies on.
package sessiontest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/bookstore/internal/platform/i18n"
	"github.com/louisbranch/bookstore/internal/services/web/session"
)

// RunStoreContract exercises save, load, overwrite and delete on store.
func RunStoreContract(t *testing.T, store session.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}

	sess := session.New("sess-1", i18n.Persian, now, time.Hour)
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Locale() != i18n.Persian || got.Direction() != i18n.RTL {
		t.Fatalf("loaded locale/direction = %s/%s, want %s/%s", got.Locale(), got.Direction(), i18n.Persian, i18n.RTL)
	}
	if !got.CreatedAt.Equal(sess.CreatedAt) || !got.ExpiresAt.Equal(sess.ExpiresAt) {
		t.Fatalf("timestamps = %v/%v, want %v/%v", got.CreatedAt, got.ExpiresAt, sess.CreatedAt, sess.ExpiresAt)
	}
	if got.SignedIn() {
		t.Fatal("expected new session to be signed out")
	}

	got.SetLocale(i18n.English)
	got.SignIn("admin")
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	again, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if again.Locale() != i18n.English || again.Direction() != i18n.LTR || again.Principal != "admin" {
		t.Fatalf("unexpected session after overwrite: locale=%s dir=%s principal=%q", again.Locale(), again.Direction(), again.Principal)
	}

	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "sess-1"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}
