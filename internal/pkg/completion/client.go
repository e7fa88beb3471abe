// Package completion provides the language-model completion collaborator.
package completion

import (
	"context"
	"time"
)

// Client sends one system context and one user message to a chat model
// and returns the reply text.
type Client interface {
	// Complete performs exactly one request. The returned text is trimmed
	// and never empty when err is nil; err is always a completion-category
	// *errors.AppError.
	Complete(ctx context.Context, systemContext, userContent string) (string, error)
	// Name returns the provider name.
	Name() string
	// Model returns the model every request is sent to.
	Model() string
}

// Options configures a chat client.
type Options struct {
	Provider     string
	APIKey       string
	Organization string
	Model        string
	Endpoint     string
	Temperature  float32
	MaxTokens    int
	Timeout      time.Duration
}

const (
	// DefaultTemperature matches the sampling used by earlier commitgpt releases.
	DefaultTemperature = 0.7
	// DefaultMaxTokens bounds each reply.
	DefaultMaxTokens = 100
	// DefaultTimeout is the HTTP timeout for one request.
	DefaultTimeout = 60 * time.Second
)

// providerDefaults holds the model and base URL used when none is configured.
type providerDefaults struct {
	model    string
	endpoint string
	keyless  bool
}

var defaults = map[string]providerDefaults{
	"openai": {
		model: "gpt-3.5-turbo",
	},
	"deepseek": {
		model:    "deepseek-chat",
		endpoint: "https://api.deepseek.com/v1",
	},
	"ollama": {
		model:    "codellama",
		endpoint: "http://localhost:11434/v1",
		keyless:  true,
	},
}
