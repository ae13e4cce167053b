package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	def := DefaultConfig()
	if cfg.Anthropic.Model != def.Anthropic.Model {
		t.Errorf("expected default model %q, got %q", def.Anthropic.Model, cfg.Anthropic.Model)
	}
	if cfg.Agent.ContextWindow != 10 {
		t.Errorf("expected default context window 10, got %d", cfg.Agent.ContextWindow)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"telegram": map[string]any{
			"enabled": true,
			"token":   "123:abc",
		},
		"agent": map[string]any{
			"contextWindow": 20,
		},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Telegram.Enabled || cfg.Telegram.Token != "123:abc" {
		t.Errorf("telegram section not applied: %+v", cfg.Telegram)
	}
	if cfg.Agent.ContextWindow != 20 {
		t.Errorf("expected contextWindow 20, got %d", cfg.Agent.ContextWindow)
	}
	// Untouched sections keep their defaults.
	if cfg.Retention.Days != 90 {
		t.Errorf("expected default retention days 90, got %d", cfg.Retention.Days)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := DefaultConfig()
	cfg.Anthropic.APIKey = "sk-test"
	cfg.Store.Backend = "sqlite"
	if err := Save(&cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected 0600 permissions, got %o", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Anthropic.APIKey != "sk-test" || loaded.Store.Backend != "sqlite" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for empty credentials")
	}

	cfg.Anthropic.APIKey = "sk-a"
	cfg.OpenAI.APIKey = "sk-o"
	cfg.Supabase.URL = "https://example.supabase.co"
	cfg.Supabase.ServiceKey = "service-key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	cfg.Store.Backend = "sqlite"
	cfg.Supabase = SupabaseConfig{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("sqlite backend must not require supabase keys: %v", err)
	}
}
