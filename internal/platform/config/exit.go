package config

import (
	log "github.com/sirupsen/logrus"
)

// Exitf logs a formatted fatal message and exits with code 1.
// Entry points use it before the service logger has been configured, so it
// always writes through the standard logrus logger.
func Exitf(format string, args ...any) {
	log.StandardLogger().Fatalf(format, args...)
}
