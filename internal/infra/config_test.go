package infra

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresCRMAPIKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("CRM_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when CRM_API_KEY is missing")
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CRM_API_KEY", "key-123")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("CRM_API_KEY", "key-123")
	t.Setenv("CRM_BASE_URL", "")
	t.Setenv("CRM_PAGE_SIZE", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.CRMBaseURL != "https://api.bloomerang.co/v2" {
		t.Fatalf("CRMBaseURL mismatch: %q", cfg.CRMBaseURL)
	}
	if cfg.CRMPageSize != 50 {
		t.Fatalf("CRMPageSize = %d, want 50", cfg.CRMPageSize)
	}
	if cfg.HTTPReadTimeout != 15*time.Second {
		t.Fatalf("HTTPReadTimeout = %s, want 15s", cfg.HTTPReadTimeout)
	}
}

func TestLoadConfigRejectsBadPageSize(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("CRM_API_KEY", "key-123")
	t.Setenv("CRM_PAGE_SIZE", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for zero page size")
	}
}

func TestLoadConfigSplitsCORSOrigins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("CRM_API_KEY", "key-123")
	t.Setenv("CORS_ORIGINS", "https://app.example.org, https://staging.example.org ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://app.example.org", "https://staging.example.org"}
	if len(cfg.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %#v, want %#v", cfg.CORSOrigins, want)
	}
	for i := range want {
		if cfg.CORSOrigins[i] != want[i] {
			t.Fatalf("CORSOrigins[%d] = %q, want %q", i, cfg.CORSOrigins[i], want[i])
		}
	}
}
