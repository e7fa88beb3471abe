package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
)

const (
	// DefaultConfigDir is the directory under the user's home holding commitgpt state.
	DefaultConfigDir = ".commitgpt"
	// DefaultConfigFileExt is the default config file extension.
	DefaultConfigFileExt = "yaml"
	// DefaultEnvFile is the dotenv file looked up in the working directory and repository root.
	DefaultEnvFile = ".env"
)

// envBindings maps each configuration key to the environment variables that
// may supply it, in lookup order. The unprefixed names are the conventional
// ones used by OpenAI tooling and existing .env files.
var envBindings = map[string][]string{
	"provider.name":                 {"COMMITGPT_PROVIDER_NAME"},
	"provider.api_key":              {"COMMITGPT_PROVIDER_API_KEY", "OPENAI_API_KEY"},
	"provider.organization":         {"COMMITGPT_PROVIDER_ORGANIZATION", "OPENAI_ORGANIZATION"},
	"provider.model":                {"COMMITGPT_PROVIDER_MODEL"},
	"provider.endpoint":             {"COMMITGPT_PROVIDER_ENDPOINT"},
	"provider.temperature":          {"COMMITGPT_PROVIDER_TEMPERATURE"},
	"provider.max_tokens":           {"COMMITGPT_PROVIDER_MAX_TOKENS"},
	"provider.timeout_seconds":      {"COMMITGPT_PROVIDER_TIMEOUT_SECONDS"},
	"contexts.summary":              {"COMMITGPT_CONTEXTS_SUMMARY", "SUMMARY_CONTEXT"},
	"contexts.commit":               {"COMMITGPT_CONTEXTS_COMMIT", "COMMIT_CONTEXT"},
	"git.remote":                    {"COMMITGPT_GIT_REMOTE"},
	"ui.color_enabled":              {"COMMITGPT_UI_COLOR_ENABLED"},
	"ui.clear_screen":               {"COMMITGPT_UI_CLEAR_SCREEN"},
	"history.enabled":               {"COMMITGPT_HISTORY_ENABLED"},
	"history.max_entries":           {"COMMITGPT_HISTORY_MAX_ENTRIES"},
	"history.file_path":             {"COMMITGPT_HISTORY_FILE_PATH"},
	"security.warning_acknowledged": {"COMMITGPT_SECURITY_WARNING_ACKNOWLEDGED"},
}

// ViperManager implements the Manager interface using Viper.
type ViperManager struct {
	v          *viper.Viper
	configPath string
}

// NewManager creates a new configuration manager.
// If configPath is empty, it uses the default path (~/.commitgpt/config.yaml).
func NewManager(configPath string) (*ViperManager, error) {
	v := viper.New()
	v.SetConfigType(DefaultConfigFileExt)

	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(homeDir, DefaultConfigDir, "config.yaml")
	}
	v.SetConfigFile(configPath)

	v.SetEnvPrefix("COMMITGPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults first, nested keys only resolve from env once they are known.
	setDefaults(v)
	bindEnvVars(v)

	return &ViperManager{
		v:          v,
		configPath: configPath,
	}, nil
}

func bindEnvVars(v *viper.Viper) {
	for key, names := range envBindings {
		args := append([]string{key}, names...)
		_ = v.BindEnv(args...)
	}
}

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.name", ProviderOpenAI)
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.organization", "")
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.endpoint", "")
	v.SetDefault("provider.temperature", 0.7)
	v.SetDefault("provider.max_tokens", 100)
	v.SetDefault("provider.timeout_seconds", 60)

	v.SetDefault("contexts.summary", "")
	v.SetDefault("contexts.commit", "")

	v.SetDefault("git.remote", "origin")

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.clear_screen", true)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.max_entries", 1000)
	homeDir, _ := os.UserHomeDir()
	v.SetDefault("history.file_path", filepath.Join(homeDir, DefaultConfigDir, "history.json"))

	v.SetDefault("security.warning_acknowledged", false)
}

// LoadDotEnv loads the given dotenv files in order. Missing files are
// skipped and variables already set in the process environment are kept.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return apperrors.Wrap(err, apperrors.ErrInvalidConfig, fmt.Sprintf("failed to load %s", path))
		}
	}
	return nil
}

// GetConfigPath returns the path to the configuration file.
func (m *ViperManager) GetConfigPath() string {
	return m.configPath
}

// readConfig reads the config file, tolerating its absence.
func (m *ViperManager) readConfig() error {
	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load loads the configuration from file, environment, and defaults.
// Priority: flags > env > file > defaults
func (m *ViperManager) Load() (*Config, error) {
	if err := m.readConfig(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "invalid configuration file")
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to decode configuration")
	}

	return &cfg, nil
}

// Init creates a new configuration file with default values.
// Sets file permissions to 0600 for security.
func (m *ViperManager) Init() error {
	if m.ConfigExists() {
		return fmt.Errorf("config file already exists at %s", m.configPath)
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Defaults only; environment values stay out of the file.
	defaults := viper.New()
	defaults.SetConfigType(DefaultConfigFileExt)
	setDefaults(defaults)
	if err := defaults.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// Save writes every field of config to the configuration file.
func (m *ViperManager) Save(config *Config) error {
	values := map[string]interface{}{
		"provider.name":                 config.Provider.Name,
		"provider.api_key":              config.Provider.APIKey,
		"provider.organization":         config.Provider.Organization,
		"provider.model":                config.Provider.Model,
		"provider.endpoint":             config.Provider.Endpoint,
		"provider.temperature":          config.Provider.Temperature,
		"provider.max_tokens":           config.Provider.MaxTokens,
		"provider.timeout_seconds":      config.Provider.TimeoutSeconds,
		"contexts.summary":              config.Contexts.Summary,
		"contexts.commit":               config.Contexts.Commit,
		"git.remote":                    config.Git.Remote,
		"ui.color_enabled":              config.UI.ColorEnabled,
		"ui.clear_screen":               config.UI.ClearScreen,
		"history.enabled":               config.History.Enabled,
		"history.max_entries":           config.History.MaxEntries,
		"history.file_path":             config.History.FilePath,
		"security.warning_acknowledged": config.Security.WarningAcknowledged,
	}
	for key, value := range values {
		m.v.Set(key, value)
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := m.v.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// Set sets a configuration value by key and writes it to the configuration
// file. Only values already in the file and key are written, so settings
// coming from the environment stay out of it.
// Supports nested keys using dot notation (e.g., "provider.name").
func (m *ViperManager) Set(key string, value string) error {
	if !IsKnownKey(key) {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("unknown configuration key: %s", key))
	}
	if err := m.readConfig(); err != nil {
		return err
	}

	convertedValue, err := convertValue(value, m.v.Get(key))
	if err != nil {
		return fmt.Errorf("failed to convert value for key %s: %w", key, err)
	}

	m.v.Set(key, convertedValue)
	return m.writeFileValue(key, convertedValue)
}

// writeFileValue updates one key in the configuration file.
func (m *ViperManager) writeFileValue(key string, value interface{}) error {
	fileOnly := viper.New()
	fileOnly.SetConfigType(DefaultConfigFileExt)
	fileOnly.SetConfigFile(m.configPath)
	if err := fileOnly.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to read config file")
		}
	}
	fileOnly.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := fileOnly.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}
	return nil
}

// IsKnownKey reports whether key is a configuration key commitgpt understands.
func IsKnownKey(key string) bool {
	_, ok := envBindings[key]
	return ok
}

// convertValue converts a string value to the appropriate type based on the existing value type.
func convertValue(value string, existingValue interface{}) (interface{}, error) {
	if existingValue == nil {
		return value, nil
	}

	switch existingValue.(type) {
	case bool:
		return strconv.ParseBool(value)
	case int, int64:
		return strconv.ParseInt(value, 10, 64)
	case float32, float64:
		return strconv.ParseFloat(value, 64)
	default:
		return value, nil
	}
}

// Get retrieves a configuration value by key.
func (m *ViperManager) Get(key string) (string, error) {
	if err := m.readConfig(); err != nil {
		return "", err
	}

	value := m.v.Get(key)
	if value == nil {
		return "", fmt.Errorf("key not found: %s", key)
	}

	return fmt.Sprintf("%v", value), nil
}

// List returns all configuration values as a map.
func (m *ViperManager) List() map[string]interface{} {
	_ = m.readConfig()
	return m.v.AllSettings()
}

// SetOverride sets a temporary override for a configuration key.
// Used for command-line flags that shouldn't persist.
func (m *ViperManager) SetOverride(key string, value interface{}) {
	m.v.Set(key, value)
}

// ConfigExists checks if the configuration file exists.
func (m *ViperManager) ConfigExists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// AcknowledgeSecurityWarning marks the first-use notice as acknowledged.
func (m *ViperManager) AcknowledgeSecurityWarning() error {
	return m.Set("security.warning_acknowledged", "true")
}

// IsSecurityWarningAcknowledged checks if the first-use notice has been acknowledged.
func (m *ViperManager) IsSecurityWarningAcknowledged() bool {
	_ = m.readConfig()
	return m.v.GetBool("security.warning_acknowledged")
}
