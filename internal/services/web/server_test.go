package web

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	acserver "github.com/louisbranch/bookstore/internal/services/accesscontrol/app"
	"github.com/louisbranch/bookstore/internal/services/web/accesscontrol"
	"github.com/louisbranch/bookstore/internal/services/web/platform/sessioncookie"
)

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return log.NewEntry(logger)
}

func TestSessionKey(t *testing.T) {
	t.Parallel()

	valid := strings.Repeat("ab", sessioncookie.MinKeyBytes)
	key, err := sessionKey(valid, nil, quietLogger())
	if err != nil {
		t.Fatalf("decode valid key: %v", err)
	}
	if len(key) != sessioncookie.MinKeyBytes {
		t.Fatalf("key length = %d, want %d", len(key), sessioncookie.MinKeyBytes)
	}

	if _, err := sessionKey("zz", nil, quietLogger()); err == nil {
		t.Fatal("expected hex decode error")
	}
	if _, err := sessionKey(hex.EncodeToString([]byte("short")), nil, quietLogger()); err == nil {
		t.Fatal("expected short key error")
	}

	generated, err := sessionKey("", bytes.NewReader(bytes.Repeat([]byte{7}, 64)), quietLogger())
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if len(generated) != sessioncookie.MinKeyBytes {
		t.Fatalf("generated length = %d, want %d", len(generated), sessioncookie.MinKeyBytes)
	}
}

func TestOpenSessionStoreBackends(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "default memory", config: Config{}},
		{name: "sqlite", config: Config{SessionBackend: SessionBackendSQLite, SessionDBPath: filepath.Join(t.TempDir(), "sessions.db")}},
		{name: "sqlite without path", config: Config{SessionBackend: SessionBackendSQLite}, wantErr: true},
		{name: "redis", config: Config{SessionBackend: SessionBackendRedis, RedisURL: "redis://" + mr.Addr()}},
		{name: "unknown", config: Config{SessionBackend: "etcd"}, wantErr: true},
	}
	for _, tt := range tests {
		srv := &Server{logger: quietLogger()}
		store, err := srv.openSessionStore(context.Background(), tt.config)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: open: %v", tt.name, err)
		}
		if store == nil {
			t.Fatalf("%s: expected store", tt.name)
		}
		if tt.config.SessionBackend == SessionBackendSQLite && srv.purger == nil {
			t.Fatalf("%s: expected purger for sqlite", tt.name)
		}
		srv.Close()
	}
}

func TestDialAccessControlFallsBackToBasic(t *testing.T) {
	t.Parallel()

	srv := &Server{logger: quietLogger()}
	access, err := srv.dialAccessControl(context.Background(), Config{})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if _, ok := access.(accesscontrol.Basic); !ok {
		t.Fatalf("expected Basic verifier, got %T", access)
	}
}

func TestNewServerRejectsMissingAddress(t *testing.T) {
	t.Parallel()

	if _, err := NewServer(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for missing http address")
	}
}

func TestServerSignsInThroughAccessControlService(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ac, err := acserver.New(ctx, acserver.RuntimeConfig{
		DBPath:         filepath.Join(t.TempDir(), "ac.db"),
		BootstrapUsers: "admin:correct",
		BcryptCost:     bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("new access-control server: %v", err)
	}
	acDone := make(chan error, 1)
	go func() { acDone <- ac.Serve(ctx) }()
	_, acPort, err := net.SplitHostPort(ac.Addr())
	if err != nil {
		t.Fatalf("split access-control addr: %v", err)
	}

	srv, err := NewServer(ctx, Config{
		HTTPAddr:          "127.0.0.1:0",
		AccessControlAddr: "127.0.0.1:" + acPort,
		GRPCDialTimeout:   5 * time.Second,
		SessionKey:        strings.Repeat("cd", sessioncookie.MinKeyBytes),
		SessionBackend:    SessionBackendSQLite,
		SessionDBPath:     filepath.Join(t.TempDir(), "sessions.db"),
	})
	if err != nil {
		t.Fatalf("new web server: %v", err)
	}
	defer srv.Close()
	webDone := make(chan error, 1)
	go func() { webDone <- srv.ListenAndServe(ctx) }()

	base := "http://" + srv.Addr()
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	tests := []struct {
		password string
		want     int
	}{
		{password: "wrong", want: http.StatusUnauthorized},
		{password: "correct", want: http.StatusSeeOther},
	}
	for _, tt := range tests {
		form := url.Values{"username": {"admin"}, "password": {tt.password}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/login", strings.NewReader(form.Encode()))
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Origin", base)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("post login: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Fatalf("password %q: status = %d, want %d", tt.password, resp.StatusCode, tt.want)
		}
	}

	cancel()
	for name, done := range map[string]chan error{"web": webDone, "access-control": acDone} {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("%s serve: %v", name, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("%s server did not stop", name)
		}
	}
}
