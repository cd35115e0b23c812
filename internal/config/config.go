package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionSecret string

	// Invitation lifetimes
	PartnerInviteTTL time.Duration
	GuestInviteTTL   time.Duration
	VendorInviteTTL  time.Duration

	// App
	BaseURL        string
	AllowedOrigins []string
	LogLevel       string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", "./emowed.db"),
		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	// Parse allowed CORS origins
	originsStr := getEnv("ALLOWED_ORIGINS", "*")
	cfg.AllowedOrigins = strings.Split(originsStr, ",")
	for i := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(cfg.AllowedOrigins[i])
	}

	var err error
	if cfg.PartnerInviteTTL, err = parseDuration("PARTNER_INVITE_TTL", "48h"); err != nil {
		return nil, err
	}
	if cfg.GuestInviteTTL, err = parseDuration("GUEST_INVITE_TTL", "168h"); err != nil {
		return nil, err
	}
	if cfg.VendorInviteTTL, err = parseDuration("VENDOR_INVITE_TTL", "720h"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %w", key, err)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
