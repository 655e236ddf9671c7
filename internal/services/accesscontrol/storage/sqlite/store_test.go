package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/bookstore/internal/services/accesscontrol/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStoreCloseNilSafe(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}

func TestPutGetCredentialRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	if err := store.PutCredential(ctx, storage.Credential{
		Username:     " admin ",
		PasswordHash: "hash-1",
		CreatedAt:    created,
	}); err != nil {
		t.Fatalf("put credential: %v", err)
	}

	got, err := store.GetCredential(ctx, "admin")
	if err != nil {
		t.Fatalf("get credential: %v", err)
	}
	if got.Username != "admin" || got.PasswordHash != "hash-1" {
		t.Fatalf("unexpected credential: %+v", got)
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(created) {
		t.Fatalf("unexpected timestamps: %+v", got)
	}
}

func TestPutCredentialUpdatesHashKeepsCreatedAt(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	if err := store.PutCredential(ctx, storage.Credential{Username: "admin", PasswordHash: "old", CreatedAt: created}); err != nil {
		t.Fatalf("put credential: %v", err)
	}
	if err := store.PutCredential(ctx, storage.Credential{Username: "admin", PasswordHash: "new", CreatedAt: updated, UpdatedAt: updated}); err != nil {
		t.Fatalf("update credential: %v", err)
	}

	got, err := store.GetCredential(ctx, "admin")
	if err != nil {
		t.Fatalf("get credential: %v", err)
	}
	if got.PasswordHash != "new" {
		t.Fatalf("password hash = %q, want new", got.PasswordHash)
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(updated) {
		t.Fatalf("unexpected timestamps: %+v", got)
	}
	count, err := store.CountCredentials(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestGetCredentialNotFound(t *testing.T) {
	store := openTempStore(t)

	for _, username := range []string{"missing", "  "} {
		if _, err := store.GetCredential(context.Background(), username); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("GetCredential(%q) err = %v, want ErrNotFound", username, err)
		}
	}
}

func TestPutCredentialValidates(t *testing.T) {
	store := openTempStore(t)

	if err := store.PutCredential(context.Background(), storage.Credential{Username: " ", PasswordHash: "h"}); err == nil {
		t.Fatal("expected error for blank username")
	}
	if err := store.PutCredential(context.Background(), storage.Credential{Username: "admin"}); err == nil {
		t.Fatal("expected error for empty hash")
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "accesscontrol.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
