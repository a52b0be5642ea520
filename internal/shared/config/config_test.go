package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "CORS_ALLOW_ORIGINS", "LOCAL_STORE_DIR",
		"MAX_UPLOAD_MB", "JWT_SECRET", "JWT_ALGORITHM", "TOKEN_TTL_MINUTES",
		"ALLOWED_USERNAMES", "ALLOWLIST_FILE", "AUTH_ENFORCE_PASSWORD",
		"ANALYZER_PROVIDER", "CREW_SERVICE_URL", "CREW_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("Port default: %q", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("Env default: %q", cfg.Env)
	}
	if cfg.MaxUploadMB != 25 {
		t.Fatalf("MaxUploadMB default: %d", cfg.MaxUploadMB)
	}
	if cfg.JWTAlgorithm != "HS256" {
		t.Fatalf("JWTAlgorithm default: %q", cfg.JWTAlgorithm)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("TokenTTL default: %v", cfg.TokenTTL)
	}
	if !cfg.EnforcePassword {
		t.Fatalf("password enforcement must default on")
	}
	if cfg.AnalyzerProvider != "placeholder" {
		t.Fatalf("AnalyzerProvider default: %q", cfg.AnalyzerProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ENV", "Production")
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("TOKEN_TTL_MINUTES", "15")
	t.Setenv("AUTH_ENFORCE_PASSWORD", "false")
	t.Setenv("ANALYZER_PROVIDER", "CREW")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Fatalf("Port: %q", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("Env: %q", cfg.Env)
	}
	if cfg.JWTAlgorithm != "HS512" {
		t.Fatalf("JWTAlgorithm: %q", cfg.JWTAlgorithm)
	}
	if cfg.TokenTTL != 15*time.Minute {
		t.Fatalf("TokenTTL: %v", cfg.TokenTTL)
	}
	if cfg.EnforcePassword {
		t.Fatalf("EnforcePassword override ignored")
	}
	if cfg.AnalyzerProvider != "crew" {
		t.Fatalf("AnalyzerProvider: %q", cfg.AnalyzerProvider)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSAllowOrigin, want) {
		t.Fatalf("CORSAllowOrigin: %v", cfg.CORSAllowOrigin)
	}
}

func TestLoadAllowListMergesEnvAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.yaml")
	content := "allowed:\n  - carol\n  - dave\n  - \"  \"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write allowlist: %v", err)
	}

	t.Setenv("ALLOWED_USERNAMES", "alice, bob")
	t.Setenv("ALLOWLIST_FILE", path)

	got := loadAllowList()
	want := []string{"alice", "bob", "carol", "dave"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("allow list: got %v, want %v", got, want)
	}
}

func TestLoadAllowListIgnoresBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.yaml")
	if err := os.WriteFile(path, []byte("allowed: {not: [valid"), 0o600); err != nil {
		t.Fatalf("write allowlist: %v", err)
	}

	t.Setenv("ALLOWED_USERNAMES", "alice")
	t.Setenv("ALLOWLIST_FILE", path)

	got := loadAllowList()
	if !reflect.DeepEqual(got, []string{"alice"}) {
		t.Fatalf("expected env names only, got %v", got)
	}
}
