// Package server hosts the access-control gRPC service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	platformgrpc "github.com/louisbranch/bookstore/internal/platform/grpc"
	"github.com/louisbranch/bookstore/internal/platform/logging"
	"github.com/louisbranch/bookstore/internal/platform/telemetry/metrics"
	"github.com/louisbranch/bookstore/internal/platform/timeouts"
	acservice "github.com/louisbranch/bookstore/internal/services/accesscontrol/api/grpc/accesscontrol"
	"github.com/louisbranch/bookstore/internal/services/accesscontrol/credential"
	"github.com/louisbranch/bookstore/internal/services/accesscontrol/storage"
	acsqlite "github.com/louisbranch/bookstore/internal/services/accesscontrol/storage/sqlite"
)

// RuntimeConfig configures the access-control server.
type RuntimeConfig struct {
	Port           int
	DBPath         string
	BootstrapUsers string
	MetricsAddr    string
	// BcryptCost overrides the hashing cost for bootstrap users; zero uses
	// the bcrypt default.
	BcryptCost int
}

// Server hosts the access-control service.
type Server struct {
	listener     net.Listener
	grpcServer   *grpc.Server
	health       *health.Server
	store        *acsqlite.Store
	httpListener net.Listener
	httpServer   *http.Server
	logger       *log.Entry
}

// New creates a configured access-control server listening on cfg.Port.
func New(ctx context.Context, cfg RuntimeConfig) (*Server, error) {
	bootstrap, err := credential.ParseBootstrap(cfg.BootstrapUsers)
	if err != nil {
		return nil, fmt.Errorf("parse bootstrap users: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", cfg.Port, err)
	}
	store, err := acsqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	if err := bootstrapUsers(ctx, store, bootstrap, cfg.BcryptCost, time.Now); err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	var httpListener net.Listener
	var httpServer *http.Server
	if addr := strings.TrimSpace(cfg.MetricsAddr); addr != "" {
		httpListener, err = net.Listen("tcp", addr)
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, fmt.Errorf("listen on metrics addr %s: %w", addr, err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: timeouts.ReadHeader}
	}

	serverOpts := append(platformgrpc.DefaultServerOptions(), grpc.ChainUnaryInterceptor(recorder.UnaryServerInterceptor()))
	grpcServer := grpc.NewServer(serverOpts...)
	healthServer := health.NewServer()
	acservice.RegisterAccessControlServer(grpcServer, acservice.NewService(store))
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(acservice.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:     listener,
		grpcServer:   grpcServer,
		health:       healthServer,
		store:        store,
		httpListener: httpListener,
		httpServer:   httpServer,
		logger:       logging.ForService("accesscontrol"),
	}, nil
}

// Addr returns the gRPC listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves an access-control server until the context ends.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	srv, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// Serve starts the server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	s.logger.Infof("access-control server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	httpErr := make(chan error, 1)
	if s.httpServer != nil && s.httpListener != nil {
		s.logger.Infof("access-control metrics listening at %v", s.httpListener.Addr())
		go func() {
			httpErr <- s.httpServer.Serve(s.httpListener)
		}()
	}

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
	shutdownGRPC := func() {
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
	}
	shutdownHTTP := func() {
		if s.httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
			defer cancel()
			_ = s.httpServer.Shutdown(shutdownCtx)
		}
	}

	select {
	case <-ctx.Done():
		shutdownGRPC()
		shutdownHTTP()
		return handleErr(<-serveErr)
	case err := <-serveErr:
		shutdownHTTP()
		return handleErr(err)
	case err := <-httpErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		shutdownGRPC()
		if handled := handleErr(<-serveErr); handled != nil {
			return handled
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

func (s *Server) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.WithError(err).Warn("close credential store")
	}
}

// bootstrapUsers hashes and upserts every configured user. Running it again
// with the same list rotates hashes but keeps creation times.
func bootstrapUsers(ctx context.Context, store storage.CredentialStore, users []credential.Bootstrap, cost int, now func() time.Time) error {
	if store == nil {
		return nil
	}
	for _, user := range users {
		hash, err := credential.Hash(user.Password, cost)
		if err != nil {
			return fmt.Errorf("hash bootstrap password for %s: %w", user.Username, err)
		}
		stamp := now().UTC()
		if err := store.PutCredential(ctx, storage.Credential{
			Username:     user.Username,
			PasswordHash: hash,
			CreatedAt:    stamp,
			UpdatedAt:    stamp,
		}); err != nil {
			return fmt.Errorf("store bootstrap credential for %s: %w", user.Username, err)
		}
	}
	return nil
}
