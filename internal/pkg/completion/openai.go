package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
)

// ChatClient implements Client over the OpenAI chat completions API.
// DeepSeek and Ollama are reached through their OpenAI-compatible endpoints.
type ChatClient struct {
	client *openai.Client
	opts   Options
}

// NewChatClient creates a chat client, filling unset options with the
// provider defaults.
func NewChatClient(opts Options) (*ChatClient, error) {
	if opts.Provider == "" {
		opts.Provider = "openai"
	}
	def, ok := defaults[opts.Provider]
	if !ok {
		return nil, apperrors.NewInvalidConfigError(fmt.Sprintf("unknown provider: %s", opts.Provider))
	}

	if opts.Model == "" {
		opts.Model = def.model
	}
	if opts.Endpoint == "" {
		opts.Endpoint = def.endpoint
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		if !def.keyless {
			return nil, apperrors.NewMissingConfigError([]string{"OPENAI_API_KEY"})
		}
		apiKey = opts.Provider
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if opts.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimRight(opts.Endpoint, "/")
	}
	if opts.Organization != "" {
		clientConfig.OrgID = opts.Organization
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}

	return &ChatClient{
		client: openai.NewClientWithConfig(clientConfig),
		opts:   opts,
	}, nil
}

// Name returns the provider name.
func (c *ChatClient) Name() string {
	return c.opts.Provider
}

// Model returns the model requests are sent to.
func (c *ChatClient) Model() string {
	return c.opts.Model
}

// Complete sends a single chat completion request. There is no retry.
func (c *ChatClient) Complete(ctx context.Context, systemContext, userContent string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemContext,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userContent,
			},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}

	apperrors.LogAPIRequest(c.opts.Provider, c.opts.Endpoint, c.opts.Model, len(userContent))
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", c.wrapAPIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewCompletionError(c.opts.Provider, errors.New("response contained no choices"))
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	apperrors.LogAPIResponse(c.opts.Provider, len(text), time.Since(start))

	if text == "" {
		return "", apperrors.NewCompletionError(c.opts.Provider, errors.New("response text was empty"))
	}

	return text, nil
}

// wrapAPIError maps a transport or API failure to a completion error.
func (c *ChatClient) wrapAPIError(err error) error {
	provider := c.opts.Provider

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			appErr := apperrors.NewAuthenticationError(provider)
			appErr.Cause = err
			return appErr
		case http.StatusTooManyRequests:
			appErr := apperrors.NewRateLimitError(0)
			appErr.Cause = err
			return appErr
		default:
			return apperrors.Wrap(err, apperrors.ErrCompletionFailed,
				fmt.Sprintf("%s API error (status %d)", provider, apiErr.HTTPStatusCode))
		}
	}

	if isTimeout(err) {
		return apperrors.NewTimeoutError(err)
	}

	return apperrors.NewCompletionError(provider, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
