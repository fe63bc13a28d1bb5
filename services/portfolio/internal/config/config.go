package config

import (
	"fmt"
	"net/mail"
	"os"
	"strconv"
	"strings"
)

func Load() (Config, error) {
	cfg := Config{}

	cfg.HTTP.Port = getEnvInt("PORTFOLIO_HTTP_PORT", 8080)
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return Config{}, fmt.Errorf("PORTFOLIO_HTTP_PORT %d is outside the valid range 1-65535", cfg.HTTP.Port)
	}

	cfg.DB.DSN = os.Getenv("PORTFOLIO_DB_DSN")
	if cfg.DB.DSN == "" {
		return Config{}, fmt.Errorf("PORTFOLIO_DB_DSN is required")
	}

	emails, err := parseEmailList(os.Getenv("PORTFOLIO_ALLOWED_EMAILS"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PORTFOLIO_ALLOWED_EMAILS: %w", err)
	}
	if len(emails) == 0 {
		return Config{}, fmt.Errorf("PORTFOLIO_ALLOWED_EMAILS must list at least one email")
	}
	cfg.Auth.AllowedEmails = emails

	cfg.NATS.URL = os.Getenv("PORTFOLIO_NATS_URL")

	return cfg, nil
}

// parseEmailList splits a comma-separated allow-list, trimming, lowercasing,
// and deduplicating the entries.
func parseEmailList(value string) ([]string, error) {
	parts := strings.Split(value, ",")
	emails := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed == "" {
			continue
		}
		if _, err := mail.ParseAddress(trimmed); err != nil {
			return nil, fmt.Errorf("%q is not a valid email address", trimmed)
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		emails = append(emails, trimmed)
	}
	if len(emails) == 0 {
		return nil, nil
	}
	return emails, nil
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
