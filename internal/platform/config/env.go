// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment variable read by bookstore services.
const EnvPrefix = "BOOKSTORE_"

// ParseEnv loads configuration from BOOKSTORE_-prefixed environment variables.
//
// Struct tags name the variable without the prefix, so `env:"WEB_HTTP_ADDR"`
// reads BOOKSTORE_WEB_HTTP_ADDR.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
