package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("FISHBUDDY_BASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":5000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Client.BaseURL != "http://localhost:5000" {
		t.Fatalf("unexpected base url: %s", cfg.Client.BaseURL)
	}
	if cfg.OpenAI.PollInterval != 500*time.Millisecond {
		t.Fatalf("unexpected poll interval: %v", cfg.OpenAI.PollInterval)
	}
	if cfg.OpenAI.PollLimit != 50 {
		t.Fatalf("unexpected poll limit: %d", cfg.OpenAI.PollLimit)
	}
}

func TestLoadAddrForms(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}

	t.Setenv("PORT", "bad port")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for PORT with spaces")
	}
}

func TestLoadBaseURLTrimsSlash(t *testing.T) {
	t.Setenv("FISHBUDDY_BASE_URL", "http://example.test/")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Client.BaseURL != "http://example.test" {
		t.Fatalf("trailing slash not trimmed: %s", cfg.Client.BaseURL)
	}
}

func TestOpenAIEnabled(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ASSISTANT_ID", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.OpenAI.Enabled() {
		t.Fatal("assistant id missing, Enabled must be false")
	}

	t.Setenv("ASSISTANT_ID", "asst_123")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.OpenAI.Enabled() {
		t.Fatal("expected Enabled with both credentials set")
	}
}

func TestParseOptionalIntEnvInvalid(t *testing.T) {
	t.Setenv("ASSISTANT_POLL_LIMIT", "many")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric poll limit")
	}
}
