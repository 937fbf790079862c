package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.JWT.Expiration != 30*time.Minute {
		t.Errorf("jwt expiration = %v, want 30m", cfg.JWT.Expiration)
	}
	if cfg.Reports.FolioBase != 300 {
		t.Errorf("folio base = %d, want 300", cfg.Reports.FolioBase)
	}
	if !cfg.IsDevelopment() {
		t.Error("default environment should be development")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FOLIO_BASE", "500")
	t.Setenv("RATE_LIMIT_WINDOW", "30")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Reports.FolioBase != 500 {
		t.Errorf("folio base = %d, want 500", cfg.Reports.FolioBase)
	}
	if cfg.RateLimit.Window != 30*time.Second {
		t.Errorf("window = %v, want 30s", cfg.RateLimit.Window)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.CORS.AllowedOrigins)
	}
}
