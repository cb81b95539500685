package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("ACTIVATION_SECRET", "activation")
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")
}

func TestLoad_Success(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_TTL", "2m")
	t.Setenv("REFRESH_TOKEN_TTL", "3h")
	t.Setenv("ALLOWED_ORIGINS", `["https://app.example.com"]`)
	t.Setenv("ALLOW_CREDENTIALS", "true")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AccessTokenTTL != 2*time.Minute {
		t.Fatalf("AccessTokenTTL want 2m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 3*time.Hour {
		t.Fatalf("RefreshTokenTTL want 3h, got %v", cfg.RefreshTokenTTL)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("AllowedOrigins: %v", cfg.AllowedOrigins)
	}
	if !cfg.IsProduction() {
		t.Fatal("APP_ENV=production must be reported as production")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("access ttl: %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 72*time.Hour {
		t.Fatalf("refresh ttl: %v", cfg.RefreshTokenTTL)
	}
	if cfg.ActivationTokenTTL != 5*time.Minute {
		t.Fatalf("activation ttl: %v", cfg.ActivationTokenTTL)
	}
	if cfg.DBConnectMaxRetries == 0 || cfg.DBConnectBaseDelay != time.Second {
		t.Fatalf("db retry defaults: %d %v", cfg.DBConnectMaxRetries, cfg.DBConnectBaseDelay)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	// всё, кроме REFRESH_TOKEN_SECRET
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("REDIS_ADDRESS", "r")
	t.Setenv("ACTIVATION_SECRET", "a")
	t.Setenv("ACCESS_TOKEN_SECRET", "b")
	t.Setenv("REFRESH_TOKEN_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error due to missing REFRESH_TOKEN_SECRET, got nil")
	}
}

func TestLoad_SameSessionSecrets(t *testing.T) {
	setRequired(t)
	t.Setenv("REFRESH_TOKEN_SECRET", "access")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for identical access/refresh secrets")
	}
}

func TestParseOrigins_CommaList(t *testing.T) {
	got, err := parseOrigins(" https://a.example , https://b.example ,")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1] != "https://b.example" {
		t.Fatalf("got %v", got)
	}
}

func TestLoad_SessionCache(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SessionCache != "redis" {
		t.Fatalf("default session cache: %q", cfg.SessionCache)
	}

	t.Setenv("SESSION_CACHE", "memcached")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown SESSION_CACHE")
	}
}

func TestLoad_MemoryCacheNeedsNoRedis(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatal("redis session cache requires REDIS_ADDRESS")
	}

	t.Setenv("SESSION_CACHE", "memory")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("memory session cache must not require redis: %v", err)
	}
	if cfg.UsesRedis() {
		t.Fatal("memory mode reported as redis")
	}
}
