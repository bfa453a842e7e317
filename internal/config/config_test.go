package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("TOKEN_TTL_HOURS", "")
	t.Setenv("DB_MAX_CONNS", "")
	cfg := FromEnv()
	if cfg.DBMaxConns != 10 {
		t.Fatalf("unexpected max conns %d", cfg.DBMaxConns)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.TokenTTL != 48*time.Hour {
		t.Fatalf("unexpected token ttl %s", cfg.TokenTTL)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com,")
	t.Setenv("TOKEN_TTL_HOURS", "not-a-number")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_MAX_CONNS", "25")
	cfg := FromEnv()
	if cfg.DBMaxConns != 25 {
		t.Fatalf("unexpected max conns %d", cfg.DBMaxConns)
	}
	if cfg.HTTPAddr != ":9000" || cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://admin.example.com" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.TokenTTL != 48*time.Hour {
		t.Fatalf("invalid ttl should fall back to default, got %s", cfg.TokenTTL)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.RedisAddr)
	}
}
