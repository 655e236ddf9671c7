package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/louisbranch/bookstore/internal/platform/discovery"
	platformgrpc "github.com/louisbranch/bookstore/internal/platform/grpc"
	"github.com/louisbranch/bookstore/internal/platform/telemetry/metrics"
	"github.com/louisbranch/bookstore/internal/platform/timeouts"
	acservice "github.com/louisbranch/bookstore/internal/services/accesscontrol/api/grpc/accesscontrol"
	"github.com/louisbranch/bookstore/internal/services/web/accesscontrol"
	"github.com/louisbranch/bookstore/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/bookstore/internal/services/web/platform/sessioncookie"
	"github.com/louisbranch/bookstore/internal/services/web/session"
	"github.com/louisbranch/bookstore/internal/services/web/session/memory"
	redisstore "github.com/louisbranch/bookstore/internal/services/web/session/redis"
	sqlitestore "github.com/louisbranch/bookstore/internal/services/web/session/sqlite"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
)

// sessionPurgeInterval paces expired-row cleanup for the sqlite backend.
const sessionPurgeInterval = 10 * time.Minute

// Config defines the inputs for the web server.
type Config struct {
	HTTPAddr string
	// AccessControlAddr is the access-control gRPC address, or "discover" for
	// the in-network default. Empty selects the in-process Basic verifier.
	AccessControlAddr string
	GRPCDialTimeout   time.Duration
	// SessionKey is the hex-encoded HMAC key for session cookies. Empty
	// generates a random key, which logs every visitor out on restart.
	SessionKey          string
	SessionTTL          time.Duration
	SessionBackend      string
	SessionDBPath       string
	RedisURL            string
	TrustForwardedProto bool
	AppName             string
}

// Server hosts the web HTTP server.
type Server struct {
	httpServer   *http.Server
	listener     net.Listener
	acConn       *grpc.ClientConn
	sessionStore session.Store
	purger       func(context.Context) (int64, error)
	logger       *log.Entry
}

// NewServer builds a configured web server and binds its listener.
func NewServer(ctx context.Context, config Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.GRPCDialTimeout <= 0 {
		config.GRPCDialTimeout = timeouts.GRPCDial
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = session.DefaultTTL
	}
	logger := log.WithField("service", "web")

	key, err := sessionKey(config.SessionKey, rand.Reader, logger)
	if err != nil {
		return nil, err
	}
	policy := requestmeta.SchemePolicy{TrustForwardedProto: config.TrustForwardedProto}
	cookies, err := sessioncookie.NewCodec(key, config.SessionTTL, policy)
	if err != nil {
		return nil, fmt.Errorf("session cookie codec: %w", err)
	}

	srv := &Server{logger: logger}
	store, err := srv.openSessionStore(ctx, config)
	if err != nil {
		return nil, err
	}

	access, err := srv.dialAccessControl(ctx, config)
	if err != nil {
		srv.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		srv.Close()
		return nil, fmt.Errorf("metrics recorder: %w", err)
	}

	handler, err := NewHandler(Dependencies{
		AccessControl: access,
		Sessions:      session.NewManager(store, config.SessionTTL),
		Cookies:       cookies,
		Metrics:       recorder,
		Gatherer:      registry,
		SchemePolicy:  policy,
		AppName:       config.AppName,
		Logger:        logger,
	})
	if err != nil {
		srv.Close()
		return nil, fmt.Errorf("build handler: %w", err)
	}

	listener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		srv.Close()
		return nil, fmt.Errorf("listen on %s: %w", httpAddr, err)
	}
	srv.listener = listener
	srv.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return srv, nil
}

// Addr returns the bound HTTP address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ListenAndServe runs the HTTP server until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	s.logger.WithField("addr", s.Addr()).Info("web listening")
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()
	if s.purger != nil {
		go s.purgeExpiredSessions(ctx)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the gRPC connection and the session store.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.acConn != nil {
		if err := s.acConn.Close(); err != nil {
			s.logger.WithError(err).Warn("close access-control gRPC connection")
		}
	}
	if closer, ok := s.sessionStore.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.WithError(err).Warn("close session store")
		}
	}
}

func (s *Server) purgeExpiredSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.purger(ctx)
			if err != nil {
				s.logger.WithError(err).Warn("purge expired sessions")
				continue
			}
			if removed > 0 {
				s.logger.WithField("removed", removed).Debug("purged expired sessions")
			}
		}
	}
}

func (s *Server) openSessionStore(ctx context.Context, config Config) (session.Store, error) {
	backend := strings.ToLower(strings.TrimSpace(config.SessionBackend))
	switch backend {
	case "", SessionBackendMemory:
		s.sessionStore = memory.New()
	case SessionBackendSQLite:
		path := strings.TrimSpace(config.SessionDBPath)
		if path == "" {
			return nil, errors.New("session db path is required for the sqlite backend")
		}
		store, err := sqlitestore.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite session store: %w", err)
		}
		s.sessionStore = store
		s.purger = store.PurgeExpired
	case SessionBackendRedis:
		store, err := redisstore.Open(ctx, config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis session store: %w", err)
		}
		s.sessionStore = store
	default:
		return nil, fmt.Errorf("unknown session backend %q", config.SessionBackend)
	}
	s.logger.WithField("backend", backend).Info("session store ready")
	return s.sessionStore, nil
}

// dialAccessControl connects to the access-control service, or returns the
// in-process Basic verifier when no address is configured.
func (s *Server) dialAccessControl(ctx context.Context, config Config) (accesscontrol.AccessControl, error) {
	addr := discovery.ResolveGRPCAddr(config.AccessControlAddr, discovery.ServiceAccessControl)
	if addr == "" {
		s.logger.Warn("no access-control address configured, using basic verifier")
		return accesscontrol.Basic{}, nil
	}
	conn, err := platformgrpc.DialWithHealth(ctx, platformgrpc.DialConfig{
		Addr:    addr,
		Timeout: config.GRPCDialTimeout,
		Health: platformgrpc.HealthProbe{
			Service: acservice.ServiceName,
			Logger:  s.logger.WithField("peer", "accesscontrol"),
		},
		Options: platformgrpc.DefaultClientDialOptions(),
	})
	if err != nil {
		var dialErr *platformgrpc.DialError
		if errors.As(err, &dialErr) && dialErr.Stage == platformgrpc.DialStageHealth {
			return nil, fmt.Errorf("access-control gRPC health check failed for %s: %w", addr, dialErr.Err)
		}
		return nil, fmt.Errorf("dial access-control gRPC %s: %w", addr, err)
	}
	s.acConn = conn
	return acservice.NewClient(conn), nil
}

// sessionKey decodes the configured hex key, or draws a random one from
// random when none is configured.
func sessionKey(raw string, random io.Reader, logger *log.Entry) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		key := make([]byte, sessioncookie.MinKeyBytes)
		if _, err := io.ReadFull(random, key); err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
		logger.Warn("no session key configured, sessions will not survive a restart")
		return key, nil
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode session key: %w", err)
	}
	if len(key) < sessioncookie.MinKeyBytes {
		return nil, fmt.Errorf("session key must be at least %d bytes, got %d", sessioncookie.MinKeyBytes, len(key))
	}
	return key, nil
}
