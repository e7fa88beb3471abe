package completion

import (
	"fmt"
	"strings"
	"time"

	"github.com/commitgpt/commitgpt/internal/pkg/config"
	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
)

// NewFromConfig creates the client for the configured provider.
func NewFromConfig(cfg *config.ProviderConfig) (Client, error) {
	if cfg == nil {
		return nil, apperrors.NewInvalidConfigError("provider configuration is required")
	}

	name := strings.ToLower(cfg.Name)
	switch name {
	case config.ProviderOpenAI, config.ProviderDeepSeek, config.ProviderOllama, "":
	default:
		return nil, apperrors.NewInvalidConfigError(fmt.Sprintf("unknown provider: %s", cfg.Name))
	}

	return NewChatClient(Options{
		Provider:     name,
		APIKey:       cfg.APIKey,
		Organization: cfg.Organization,
		Model:        cfg.Model,
		Endpoint:     cfg.Endpoint,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		Timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}
