package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.TokenFile == "" {
		t.Error("TokenFile should default to the platform config dir")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BOOKX_API_URL", "https://books.example.com/api")
	t.Setenv("BOOKX_TOKEN_FILE", "/tmp/bookx-tokens.json")
	t.Setenv("BOOKX_HTTP_TIMEOUT", "5s")
	t.Setenv("BOOKX_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "https://books.example.com/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.TokenFile != "/tmp/bookx-tokens.json" {
		t.Errorf("TokenFile = %q", cfg.TokenFile)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}
