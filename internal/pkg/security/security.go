// Package security provides key handling helpers and the first-use notice for commitgpt.
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// APIKeyFormat defines the expected format patterns for different providers.
// Project and service account keys contain dashes and underscores.
var APIKeyFormat = map[string]*regexp.Regexp{
	"openai":   regexp.MustCompile(`^sk-[a-zA-Z0-9_-]{20,}$`),
	"deepseek": regexp.MustCompile(`^sk-[a-zA-Z0-9_-]{20,}$`),
	"ollama":   nil, // Ollama doesn't require API key
}

var organizationPattern = regexp.MustCompile(`^org-[a-zA-Z0-9]+$`)

// MaskAPIKey masks an API key, showing only the last 4 characters.
// This should be used when logging or displaying API keys.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// ValidateAPIKeyFormat validates the format of an API key for a given provider.
// Returns nil if the key format is valid, or an error describing the issue.
func ValidateAPIKeyFormat(provider, apiKey string) error {
	if provider == "ollama" {
		return nil
	}

	if apiKey == "" {
		return fmt.Errorf("API key is required for %s provider", provider)
	}

	if len(apiKey) < 20 {
		return fmt.Errorf("API key appears to be invalid (too short)")
	}

	pattern, exists := APIKeyFormat[provider]
	if exists && pattern != nil {
		if !pattern.MatchString(apiKey) {
			return fmt.Errorf("API key format appears invalid for %s provider (expected format: sk-...)", provider)
		}
	}

	return nil
}

// ValidateOrganizationID checks an OpenAI organization identifier.
func ValidateOrganizationID(id string) error {
	if id == "" {
		return fmt.Errorf("organization ID is required for the openai provider")
	}
	if !organizationPattern.MatchString(id) {
		return fmt.Errorf("organization ID format appears invalid (expected format: org-...)")
	}
	return nil
}

var sanitizePatterns = []struct {
	regex       *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`), "sk-****"},
	{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`), "Bearer ****"},
	{regexp.MustCompile(`(?i)(api[_-]?key|apikey|api_secret|secret[_-]?key)\s*[:=]\s*["']?[a-zA-Z0-9._-]+["']?`), "$1=****"},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["']?[^\s"']+["']?`), "$1=****"},
}

// SanitizeForLogging masks API keys, bearer tokens and password
// assignments so text such as diffs can be written to debug logs.
func SanitizeForLogging(s string) string {
	result := s
	for _, p := range sanitizePatterns {
		result = p.regex.ReplaceAllString(result, p.replacement)
	}
	return result
}

// FirstUseWarning is the notice displayed before the first run.
const FirstUseWarning = `
IMPORTANT: commitgpt sends the diffs of your staged changes to an external
completion service (OpenAI, DeepSeek, or the configured endpoint) to write
a summary and a commit message.

Your code changes leave this machine. Please:

1. Do not stage secrets such as API keys or passwords
2. Review the file list commitgpt prints before accepting a message
3. Use a local provider (Ollama) for sensitive projects
`

// FirstUseAcknowledgment is the message shown after the notice is acknowledged.
const FirstUseAcknowledgment = "Thank you. This notice will not be shown again."
