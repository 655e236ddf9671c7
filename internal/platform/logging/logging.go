// Package logging configures the process-wide logrus logger shared by the
// bookstore services.
package logging

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// FormatText renders key=value lines, the default for local runs.
	FormatText = "text"
	// FormatJSON renders one JSON object per line for log shippers.
	FormatJSON = "json"
)

// Config selects the log level and output format.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Setup applies cfg to the standard logrus logger. A nil out keeps the
// current output (stderr unless changed).
func Setup(cfg Config, out io.Writer) error {
	return Apply(log.StandardLogger(), cfg, out)
}

// Apply configures logger according to cfg.
func Apply(logger *log.Logger, cfg Config, out io.Writer) error {
	if logger == nil {
		return fmt.Errorf("logger is required")
	}
	levelName := strings.TrimSpace(cfg.Level)
	if levelName == "" {
		levelName = "info"
	}
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", FormatText:
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	logger.SetLevel(level)
	if out != nil {
		logger.SetOutput(out)
	}
	return nil
}

// ForService returns an entry tagged with the service name.
func ForService(service string) *log.Entry {
	return log.WithField("service", strings.TrimSpace(service))
}
