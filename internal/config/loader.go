package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigPath returns the default configuration file path: ~/.concierge/config.json.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// Load reads and parses the config file at path.
// If path is empty, ConfigPath() is used.
// A missing file yields DefaultConfig(); a malformed file is an error so a
// typo cannot silently run the bot unconfigured.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes cfg to path as indented JSON with owner-only permissions.
// If path is empty, ConfigPath() is used.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate reports the config keys a serving deployment cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		missing = append(missing, "telegram.token")
	}
	if c.Anthropic.APIKey == "" {
		missing = append(missing, "anthropic.apiKey")
	}
	if c.OpenAI.APIKey == "" {
		missing = append(missing, "openai.apiKey")
	}
	if c.Store.Backend == "supabase" {
		if c.Supabase.URL == "" {
			missing = append(missing, "supabase.url")
		}
		if c.Supabase.ServiceKey == "" {
			missing = append(missing, "supabase.serviceKey")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}
	return nil
}
