// Package config defines the configuration schema for the concierge.
// The file lives at ~/.concierge/config.json; JSON keys use camelCase.
package config

import (
	"os"
	"path/filepath"
)

// TelegramConfig configures the Telegram channel.
type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token"`
	AllowFrom []string `json:"allowFrom"`
}

func defaultTelegramConfig() TelegramConfig {
	return TelegramConfig{AllowFrom: []string{}}
}

// AnthropicConfig holds the LLM backend credentials and model selection.
type AnthropicConfig struct {
	APIKey    string `json:"apiKey"`
	APIBase   string `json:"apiBase,omitempty"`
	Model     string `json:"model"`
	MaxTokens int    `json:"maxTokens"`
}

func defaultAnthropicConfig() AnthropicConfig {
	return AnthropicConfig{
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 1024,
	}
}

// OpenAIConfig holds the embedding backend credentials.
type OpenAIConfig struct {
	APIKey         string `json:"apiKey"`
	APIBase        string `json:"apiBase,omitempty"`
	EmbeddingModel string `json:"embeddingModel"`
}

func defaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{EmbeddingModel: "text-embedding-3-small"}
}

// SupabaseConfig holds the hosted datastore credentials.
type SupabaseConfig struct {
	URL        string `json:"url"`
	ServiceKey string `json:"serviceKey"`
}

// StoreConfig selects the datastore backend.
type StoreConfig struct {
	// Backend is "supabase" or "sqlite".
	Backend    string `json:"backend"`
	SQLitePath string `json:"sqlitePath"`
}

func defaultStoreConfig() StoreConfig {
	return StoreConfig{
		Backend:    "supabase",
		SQLitePath: filepath.Join(DataDir(), "concierge.db"),
	}
}

// CalendarConfig configures the Google Calendar integration.
type CalendarConfig struct {
	CredentialsFile string `json:"credentialsFile"`
	TokenFile       string `json:"tokenFile"`
	PropertiesFile  string `json:"propertiesFile"`
}

func defaultCalendarConfig() CalendarConfig {
	return CalendarConfig{
		CredentialsFile: filepath.Join(DataDir(), "google_credentials.json"),
		TokenFile:       filepath.Join(DataDir(), "google_token.json"),
		PropertiesFile:  filepath.Join(DataDir(), "properties.yaml"),
	}
}

// AgentConfig holds agent behaviour knobs.
type AgentConfig struct {
	SystemPromptFile  string `json:"systemPromptFile,omitempty"`
	MaxToolIterations int    `json:"maxToolIterations"`
	ContextWindow     int    `json:"contextWindow"`
	MatchCount        int    `json:"matchCount"`
}

func defaultAgentConfig() AgentConfig {
	return AgentConfig{
		MaxToolIterations: 10,
		ContextWindow:     10,
		MatchCount:        5,
	}
}

// RetentionConfig controls the chat-log retention sweep.
type RetentionConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
	Days     int    `json:"days"`
}

func defaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		Enabled:  true,
		Schedule: "0 4 * * *",
		Days:     90,
	}
}

// Config is the root configuration object.
type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Anthropic AnthropicConfig `json:"anthropic"`
	OpenAI    OpenAIConfig    `json:"openai"`
	Supabase  SupabaseConfig  `json:"supabase"`
	Store     StoreConfig     `json:"store"`
	Calendar  CalendarConfig  `json:"calendar"`
	Agent     AgentConfig     `json:"agent"`
	Retention RetentionConfig `json:"retention"`
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() Config {
	return Config{
		Telegram:  defaultTelegramConfig(),
		Anthropic: defaultAnthropicConfig(),
		OpenAI:    defaultOpenAIConfig(),
		Store:     defaultStoreConfig(),
		Calendar:  defaultCalendarConfig(),
		Agent:     defaultAgentConfig(),
		Retention: defaultRetentionConfig(),
	}
}

// DataDir returns the concierge data directory: ~/.concierge.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".concierge"
	}
	return filepath.Join(home, ".concierge")
}
