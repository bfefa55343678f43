package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOULDER_BASE_URL", "")
	t.Setenv("BOULDER_HOST", "")
	t.Setenv("BOULDER_HTTP_TIMEOUT", "")
	t.Setenv("BOULDER_THEME", "")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	expected := "http://127.0.0.1:8080"
	if got := cfg.BaseURL.String(); got != expected {
		t.Fatalf("expected base URL %q, got %q", expected, got)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("expected default timeout 10s, got %s", cfg.HTTPTimeout)
	}
	if cfg.Theme != ThemeDark {
		t.Fatalf("expected dark theme, got %q", cfg.Theme)
	}
}

func TestLoadHostFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOULDER_HOST", "boulder.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	expected := "http://boulder.example.com:8080"
	if got := cfg.BaseURL.String(); got != expected {
		t.Fatalf("expected base URL %q, got %q", expected, got)
	}
}

func TestLoadBaseURL(t *testing.T) {
	clearEnv(t)
	base := "https://api.example.com:9999"
	t.Setenv("BOULDER_BASE_URL", base)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if got := cfg.BaseURL.String(); got != base {
		t.Fatalf("expected base URL %q, got %q", base, got)
	}
}

func TestLoadInvalidURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOULDER_BASE_URL", "://bad")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid base URL")
	}
}

func TestLoadHostWithSchemeAndPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOULDER_HOST", "https://demo.example.com:9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	expected := "https://demo.example.com:9090"
	if got := cfg.BaseURL.String(); got != expected {
		t.Fatalf("expected base URL %q, got %q", expected, got)
	}
}

func TestLoadTimeoutAndTheme(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOULDER_HTTP_TIMEOUT", "2s")
	t.Setenv("BOULDER_THEME", "Light")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTPTimeout != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.Theme != ThemeLight {
		t.Fatalf("expected light theme, got %q", cfg.Theme)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{name: "timeout", key: "BOULDER_HTTP_TIMEOUT", value: "soon"},
		{name: "negative timeout", key: "BOULDER_HTTP_TIMEOUT", value: "-1s"},
		{name: "theme", key: "BOULDER_THEME", value: "neon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
