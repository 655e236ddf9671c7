// Package accesscontrol parses access-control command flags and launches the
// credential verification service.
package accesscontrol

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/bookstore/internal/platform/cmd"
	server "github.com/louisbranch/bookstore/internal/services/accesscontrol/app"
)

// Config holds access-control command configuration.
type Config struct {
	Port           int    `env:"ACCESSCONTROL_PORT" envDefault:"8083"`
	DBPath         string `env:"ACCESSCONTROL_DB_PATH" envDefault:"data/accesscontrol.db"`
	BootstrapUsers string `env:"ACCESSCONTROL_BOOTSTRAP_USERS"`
	MetricsAddr    string `env:"ACCESSCONTROL_METRICS_ADDR"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "The access-control gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The credential SQLite database path")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "The Prometheus metrics listen address (empty disables)")

	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the access-control service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAccessControl, func(ctx context.Context) error {
		return server.Run(ctx, server.RuntimeConfig{
			Port:           cfg.Port,
			DBPath:         cfg.DBPath,
			BootstrapUsers: cfg.BootstrapUsers,
			MetricsAddr:    cfg.MetricsAddr,
		})
	})
}
