// Package web parses web command flags and launches the bookstore front door.
package web

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/bookstore/internal/platform/cmd"
	"github.com/louisbranch/bookstore/internal/services/web"
)

// Config holds the web command configuration.
type Config struct {
	HTTPAddr            string        `env:"WEB_HTTP_ADDR" envDefault:"localhost:8086"`
	AccessControlAddr   string        `env:"WEB_ACCESSCONTROL_ADDR"`
	GRPCDialTimeout     time.Duration `env:"WEB_GRPC_DIAL_TIMEOUT" envDefault:"2s"`
	SessionKey          string        `env:"WEB_SESSION_KEY"`
	SessionTTL          time.Duration `env:"WEB_SESSION_TTL" envDefault:"12h"`
	SessionBackend      string        `env:"WEB_SESSION_BACKEND" envDefault:"memory"`
	SessionDBPath       string        `env:"WEB_SESSION_DB_PATH" envDefault:"data/web-sessions.db"`
	RedisURL            string        `env:"WEB_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	TrustForwardedProto bool          `env:"WEB_TRUST_FORWARDED_PROTO"`
	AppName             string        `env:"WEB_APP_NAME"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.AccessControlAddr, "accesscontrol-addr", cfg.AccessControlAddr, "Access-control gRPC address; \"discover\" uses the in-network default, empty uses the built-in verifier")
	fs.StringVar(&cfg.SessionBackend, "session-backend", cfg.SessionBackend, "Session store: memory, sqlite or redis")
	fs.StringVar(&cfg.SessionDBPath, "session-db-path", cfg.SessionDBPath, "SQLite session database path")
	fs.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for the redis session store")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the web server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWeb, func(ctx context.Context) error {
		server, err := web.NewServer(ctx, web.Config{
			HTTPAddr:            cfg.HTTPAddr,
			AccessControlAddr:   cfg.AccessControlAddr,
			GRPCDialTimeout:     cfg.GRPCDialTimeout,
			SessionKey:          cfg.SessionKey,
			SessionTTL:          cfg.SessionTTL,
			SessionBackend:      cfg.SessionBackend,
			SessionDBPath:       cfg.SessionDBPath,
			RedisURL:            cfg.RedisURL,
			TrustForwardedProto: cfg.TrustForwardedProto,
			AppName:             cfg.AppName,
		})
		if err != nil {
			return fmt.Errorf("init web server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve web: %w", err)
		}
		return nil
	})
}
