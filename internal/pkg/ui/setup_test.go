package ui

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commitgpt/commitgpt/internal/pkg/config"
)

// The huh forms need a terminal, so these tests cover what happens with
// the answers once they are collected.

func newTestManager(t *testing.T) *config.ViperManager {
	t.Helper()
	for _, name := range []string{
		"OPENAI_API_KEY", "OPENAI_ORGANIZATION", "SUMMARY_CONTEXT", "COMMIT_CONTEXT",
		"COMMITGPT_PROVIDER_NAME", "COMMITGPT_PROVIDER_API_KEY", "COMMITGPT_PROVIDER_ORGANIZATION",
	} {
		// Empty values count as unset.
		t.Setenv(name, "")
	}
	mgr, err := config.NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	return mgr
}

func TestApplySetup_OpenAI(t *testing.T) {
	mgr := newTestManager(t)
	cfg, err := mgr.Load()
	require.NoError(t, err)

	err = ApplySetup(mgr, cfg, SetupAnswers{
		Provider:       config.ProviderOpenAI,
		APIKey:         "  sk-1234567890abcdef1234567890  ",
		Organization:   "org-abc123",
		Model:          "gpt-4o-mini",
		SummaryContext: " Summarize. ",
		CommitContext:  "Write a commit message.",
	})
	require.NoError(t, err)

	reloaded, err := config.NewManager(mgr.GetConfigPath())
	require.NoError(t, err)
	got, err := reloaded.Load()
	require.NoError(t, err)

	assert.Equal(t, config.ProviderOpenAI, got.Provider.Name)
	assert.Equal(t, "sk-1234567890abcdef1234567890", got.Provider.APIKey)
	assert.Equal(t, "org-abc123", got.Provider.Organization)
	assert.Equal(t, "gpt-4o-mini", got.Provider.Model)
	assert.Equal(t, "Summarize.", got.Contexts.Summary)
	assert.Equal(t, "Write a commit message.", got.Contexts.Commit)
	assert.True(t, got.Security.WarningAcknowledged)
	assert.NoError(t, got.Validate())
}

func TestApplySetup_OllamaDropsCredentials(t *testing.T) {
	mgr := newTestManager(t)
	cfg, err := mgr.Load()
	require.NoError(t, err)

	err = ApplySetup(mgr, cfg, SetupAnswers{
		Provider:       config.ProviderOllama,
		APIKey:         "sk-leftover-key-from-before-123",
		Organization:   "org-old",
		Model:          "codellama",
		Endpoint:       "http://localhost:11434/v1",
		SummaryContext: DefaultSummaryContext,
		CommitContext:  DefaultCommitContext,
	})
	require.NoError(t, err)

	assert.Empty(t, cfg.Provider.APIKey)
	assert.Empty(t, cfg.Provider.Organization)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Provider.Endpoint)
	assert.NoError(t, cfg.Validate())
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		key      string
		wantErr  bool
	}{
		{"openai valid", config.ProviderOpenAI, "sk-1234567890abcdef1234567890", false},
		{"openai padded", config.ProviderOpenAI, " sk-1234567890abcdef1234567890 ", false},
		{"openai empty", config.ProviderOpenAI, "", true},
		{"deepseek short", config.ProviderDeepSeek, "sk-123", true},
		{"ollama empty", config.ProviderOllama, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.provider, tt.key)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequireText(t *testing.T) {
	validate := requireText("model name")

	assert.NoError(t, validate("gpt-4o"))
	err := validate("   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model name")
}

func TestConfirmNotice_LeavesLaterAnswersBuffered(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(strings.NewReader("y\ny\nr\n"), &out, false)

	ok, err := ConfirmNotice(console)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, want := range []string{"y", "r"} {
		line, err := console.Prompt(DecisionPrompt)
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}
	assert.Contains(t, out.String(), NoticeQuestion+" [y/n]: ")
}

func TestConfirmNotice_Answers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		prompts int
		wantErr error
	}{
		{"yes", "yes\n", true, 1, nil},
		{"upper case", "Y\n", true, 1, nil},
		{"no", "n\n", false, 1, nil},
		{"retry after unknown answer", "maybe\n\nno\n", false, 3, nil},
		{"closed input", "", false, 1, io.EOF},
		{"closed after unknown answer", "maybe\n", false, 2, io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			console := NewConsole(strings.NewReader(tt.input), &out, false)

			ok, err := ConfirmNotice(console)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.prompts, strings.Count(out.String(), "[y/n]: "))
		})
	}
}

func TestConsole_PipedInputIsNotTerminal(t *testing.T) {
	console := NewConsole(strings.NewReader("y\n"), &bytes.Buffer{}, false)
	assert.False(t, console.TerminalInput())
	assert.False(t, console.Interactive())
}
