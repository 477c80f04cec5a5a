// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs to start. All values come
// from TANGLE_* environment variables.
type Config struct {
	Port        int           `mapstructure:"port"`
	DatabaseURL string        `mapstructure:"database_url"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	SessionKey  string        `mapstructure:"session_key"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	LogLevel    string        `mapstructure:"log_level"`
}

// Load reads configuration from the environment. It fails closed:
// a missing DATABASE_URL, JWT_SECRET or SESSION_KEY is a startup
// error, never a silently disabled check.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TANGLE")
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("log_level", "info")

	// AutomaticEnv only resolves keys it has seen.
	for _, key := range []string{"port", "database_url", "jwt_secret", "session_key", "token_ttl", "log_level"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "TANGLE_DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "TANGLE_JWT_SECRET")
	}
	if cfg.SessionKey == "" {
		missing = append(missing, "TANGLE_SESSION_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return &cfg, nil
}
