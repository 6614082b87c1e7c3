package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.BasePath != "/admin" {
		t.Fatalf("expected default base path, got %q", cfg.HTTP.BasePath)
	}
	if cfg.Session.TokenTTL != 12*time.Hour {
		t.Fatalf("expected default token ttl, got %v", cfg.Session.TokenTTL)
	}
	if cfg.Charts.CacheTTL != 5*time.Minute {
		t.Fatalf("expected default cache ttl, got %v", cfg.Charts.CacheTTL)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level, got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.HTTP.Port = 9000
	cfg.Session.Secret = "explicit"
	cfg.applyDefaults()

	if cfg.HTTP.Port != 9000 {
		t.Fatalf("expected explicit port kept, got %d", cfg.HTTP.Port)
	}
	if cfg.Session.Secret != "explicit" {
		t.Fatalf("expected explicit secret kept, got %q", cfg.Session.Secret)
	}
}
