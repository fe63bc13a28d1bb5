package config

import (
	"reflect"
	"testing"
)

func TestParseEmailList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "dedupe trim and lowercase",
			input: "Admin@example.org, ops@example.org,admin@example.org,,",
			want:  []string{"admin@example.org", "ops@example.org"},
		},
		{
			name:    "not an email",
			input:   "not-an-email",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEmailList(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseEmailList() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseEmailList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORTFOLIO_DB_DSN", "postgres://localhost/portfolio")
		t.Setenv("PORTFOLIO_ALLOWED_EMAILS", "admin@example.org")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.HTTP.Port != 8080 {
			t.Fatalf("HTTP.Port = %d, want 8080", cfg.HTTP.Port)
		}
		if cfg.NATS.URL != "" {
			t.Fatalf("NATS.URL = %q, want empty", cfg.NATS.URL)
		}
	})

	t.Run("missing dsn", func(t *testing.T) {
		t.Setenv("PORTFOLIO_DB_DSN", "")
		t.Setenv("PORTFOLIO_ALLOWED_EMAILS", "admin@example.org")

		if _, err := Load(); err == nil {
			t.Fatal("Load() expected error for missing DSN")
		}
	})

	t.Run("missing allow-list", func(t *testing.T) {
		t.Setenv("PORTFOLIO_DB_DSN", "postgres://localhost/portfolio")
		t.Setenv("PORTFOLIO_ALLOWED_EMAILS", "")

		if _, err := Load(); err == nil {
			t.Fatal("Load() expected error for empty allow-list")
		}
	})

	t.Run("port out of range", func(t *testing.T) {
		t.Setenv("PORTFOLIO_DB_DSN", "postgres://localhost/portfolio")
		t.Setenv("PORTFOLIO_ALLOWED_EMAILS", "admin@example.org")
		t.Setenv("PORTFOLIO_HTTP_PORT", "70000")

		if _, err := Load(); err == nil {
			t.Fatal("Load() expected error for out-of-range port")
		}
	})
}
