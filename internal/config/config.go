package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	DatabaseURL    string
	HTTPListenAddr string
	LogLevel       string
	ServiceName    string
	AWSRegion      string
	// SessionTTLHours controls how long issued session tokens stay valid.
	SessionTTLHours int
	// CookieSecure controls the Secure flag on session cookies. Disable only
	// for local plain-HTTP development.
	CookieSecure bool
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		HTTPListenAddr:  getEnv("HTTP_LISTEN_ADDR", ":8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ServiceName:     getEnv("SERVICE_NAME", "s3gate"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		SessionTTLHours: 24 * 7,
		CookieSecure:    getEnv("COOKIE_SECURE", "true") == "true",
	}

	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("invalid SESSION_TTL_HOURS %q", v)
		}
		cfg.SessionTTLHours = ttl
	}

	return cfg, nil
}

// Validate checks that the config is complete enough to run the API server.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
