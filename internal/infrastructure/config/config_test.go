package config

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.BackendURL != "http://localhost:8000" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.RequestTimeout != 90*time.Second || cfg.SessionIdleTTL != 24*time.Hour {
		t.Fatalf("unexpected durations %v %v", cfg.RequestTimeout, cfg.SessionIdleTTL)
	}
	if cfg.StorageDriver != "memory" {
		t.Fatalf("expected memory driver, got %q", cfg.StorageDriver)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SLOPE_ADDR", ":9090")
	t.Setenv("SLOPE_REQUEST_TIMEOUT", "5s")
	t.Setenv("SLOPE_STORAGE_DRIVER", "sqlite")
	t.Setenv("SLOPE_STORAGE_PATH", "/tmp/slope.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.RequestTimeout != 5*time.Second || cfg.StoragePath != "/tmp/slope.db" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad duration":         {"SLOPE_REQUEST_TIMEOUT": "soon"},
		"unknown driver":       {"SLOPE_STORAGE_DRIVER": "redis"},
		"postgres without url": {"SLOPE_STORAGE_DRIVER": "postgres", "DATABASE_URL": ""},
		"bad backend url":      {"SLOPE_BACKEND_URL": "not a url"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCookieKey(t *testing.T) {
	key, generated, err := Config{CookieSecret: "s3cret"}.CookieKey()
	if err != nil || generated || string(key) != "s3cret" {
		t.Fatalf("unexpected configured key %q generated=%v err=%v", key, generated, err)
	}

	a, generated, err := Config{}.CookieKey()
	if err != nil || !generated || len(a) != 32 {
		t.Fatalf("expected a generated 32 byte key, got %d generated=%v err=%v", len(a), generated, err)
	}
	b, _, _ := Config{}.CookieKey()
	if bytes.Equal(a, b) {
		t.Fatalf("expected distinct generated keys")
	}
}

func TestLoadErrorContext(t *testing.T) {
	t.Setenv("SLOPE_REQUEST_TIMEOUT", "soon")
	if _, err := Load(); err == nil || !strings.HasPrefix(err.Error(), "parse env: ") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}

	t.Setenv("SLOPE_REQUEST_TIMEOUT", "5s")
	t.Setenv("SLOPE_STORAGE_DRIVER", "redis")
	if _, err := Load(); err == nil || !strings.HasPrefix(err.Error(), "invalid config: ") {
		t.Fatalf("expected invalid config prefix, got %v", err)
	}
}
