// Package config provides layered configuration for commitgpt.
package config

import (
	"fmt"
	"strings"

	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
)

// Provider names understood by the completion factory.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
)

// Config represents the complete commitgpt configuration.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Contexts ContextsConfig `mapstructure:"contexts"`
	Git      GitConfig      `mapstructure:"git"`
	UI       UIConfig       `mapstructure:"ui"`
	History  HistoryConfig  `mapstructure:"history"`
	Security SecurityConfig `mapstructure:"security"`
}

// ProviderConfig contains completion provider settings.
type ProviderConfig struct {
	Name           string  `mapstructure:"name"`
	APIKey         string  `mapstructure:"api_key"`
	Organization   string  `mapstructure:"organization"`
	Model          string  `mapstructure:"model"`
	Endpoint       string  `mapstructure:"endpoint"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// ContextsConfig holds the system instructions sent with each stage.
type ContextsConfig struct {
	Summary string `mapstructure:"summary"`
	Commit  string `mapstructure:"commit"`
}

// GitConfig contains Git-related settings.
type GitConfig struct {
	Remote string `mapstructure:"remote"`
}

// UIConfig contains UI-related settings.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
	ClearScreen  bool `mapstructure:"clear_screen"`
}

// HistoryConfig contains history-related settings.
type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	MaxEntries int    `mapstructure:"max_entries"`
	FilePath   string `mapstructure:"file_path"`
}

// SecurityConfig contains security-related settings.
type SecurityConfig struct {
	// WarningAcknowledged indicates if the user has acknowledged the first-use notice.
	WarningAcknowledged bool `mapstructure:"warning_acknowledged"`
}

// Validate checks that every required value is present.
// All missing keys are reported at once, named by their conventional
// environment variable.
func (c *Config) Validate() error {
	var missing []string

	name := strings.ToLower(c.Provider.Name)
	switch name {
	case ProviderOpenAI, ProviderDeepSeek, ProviderOllama:
	default:
		return apperrors.NewInvalidConfigError(fmt.Sprintf("unsupported provider: %q", c.Provider.Name))
	}

	if name != ProviderOllama && strings.TrimSpace(c.Provider.APIKey) == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if name == ProviderOpenAI && strings.TrimSpace(c.Provider.Organization) == "" {
		missing = append(missing, "OPENAI_ORGANIZATION")
	}
	if strings.TrimSpace(c.Contexts.Summary) == "" {
		missing = append(missing, "SUMMARY_CONTEXT")
	}
	if strings.TrimSpace(c.Contexts.Commit) == "" {
		missing = append(missing, "COMMIT_CONTEXT")
	}

	if len(missing) > 0 {
		return apperrors.NewMissingConfigError(missing)
	}

	if c.Provider.MaxTokens <= 0 {
		return apperrors.NewInvalidConfigError("provider.max_tokens must be positive")
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		return apperrors.NewInvalidConfigError("provider.temperature must be between 0 and 2")
	}

	return nil
}

// Manager defines the interface for configuration management.
type Manager interface {
	Load() (*Config, error)
	Save(config *Config) error
	Set(key string, value string) error
	Get(key string) (string, error)
	Init() error
	List() map[string]interface{}
	GetConfigPath() string
}
