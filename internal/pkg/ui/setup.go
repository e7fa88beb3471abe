package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/commitgpt/commitgpt/internal/pkg/config"
	"github.com/commitgpt/commitgpt/internal/pkg/security"
)

// Suggested system contexts offered by the setup wizard.
const (
	DefaultSummaryContext = "You are a senior software engineer. Summarize the following code changes in a few plain sentences."
	DefaultCommitContext  = "You write git commit messages in the Conventional Commits format. Given the changed files and a summary of the changes, reply with the commit message only."
)

// SetupAnswers holds the values collected by the setup wizard.
type SetupAnswers struct {
	Provider       string
	APIKey         string
	Organization   string
	Model          string
	Endpoint       string
	SummaryContext string
	CommitContext  string
}

// providerModels are the models offered by default per provider.
var providerModels = map[string]string{
	config.ProviderOpenAI:   "gpt-3.5-turbo",
	config.ProviderDeepSeek: "deepseek-chat",
	config.ProviderOllama:   "codellama",
}

// RunInteractiveSetup asks for the provider, credentials and contexts with
// huh forms and writes them to the configuration file. Without a terminal
// the forms fall back to huh's accessible line mode.
func RunInteractiveSetup(cfgMgr *config.ViperManager, console *Console) error {
	cfg, err := cfgMgr.Load()
	if err != nil {
		return err
	}

	console.Print(KindInfo, "Let's set up commitgpt!")

	answers := SetupAnswers{
		Provider:       cfg.Provider.Name,
		Organization:   cfg.Provider.Organization,
		Endpoint:       cfg.Provider.Endpoint,
		SummaryContext: cfg.Contexts.Summary,
		CommitContext:  cfg.Contexts.Commit,
	}
	if answers.SummaryContext == "" {
		answers.SummaryContext = DefaultSummaryContext
	}
	if answers.CommitContext == "" {
		answers.CommitContext = DefaultCommitContext
	}

	accessible := !console.Interactive()

	err = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Select completion provider").
			Options(
				huh.NewOption("OpenAI", config.ProviderOpenAI),
				huh.NewOption("DeepSeek", config.ProviderDeepSeek),
				huh.NewOption("Ollama (Local)", config.ProviderOllama),
			).
			Value(&answers.Provider),
	)).WithAccessible(accessible).WithInput(console.Input()).WithOutput(console.Output()).Run()
	if err != nil {
		return err
	}

	answers.Model = cfg.Provider.Model
	if answers.Model == "" {
		answers.Model = providerModels[answers.Provider]
	}

	var fields []huh.Field
	if answers.Provider != config.ProviderOllama {
		provider := answers.Provider
		fields = append(fields,
			huh.NewInput().
				Title("API Key").
				Description("Stored in the configuration file with 0600 permissions").
				Value(&answers.APIKey).
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					return ValidateAPIKey(provider, s)
				}),
		)
	}
	if answers.Provider == config.ProviderOpenAI {
		fields = append(fields,
			huh.NewInput().
				Title("Organization ID").
				Value(&answers.Organization).
				Validate(security.ValidateOrganizationID),
		)
	}
	fields = append(fields,
		huh.NewInput().
			Title("Model Name").
			Value(&answers.Model).
			Validate(requireText("model name")),
	)
	if answers.Provider != config.ProviderOpenAI {
		fields = append(fields,
			huh.NewInput().
				Title("API Endpoint").
				Description("Leave empty for the provider default").
				Value(&answers.Endpoint),
		)
	}
	fields = append(fields,
		huh.NewText().
			Title("Summary context").
			Description("System instructions used to summarize the diffs").
			Value(&answers.SummaryContext).
			Validate(requireText("summary context")),
		huh.NewText().
			Title("Commit context").
			Description("System instructions used to write the commit message").
			Value(&answers.CommitContext).
			Validate(requireText("commit context")),
	)

	form := huh.NewForm(huh.NewGroup(fields...)).
		WithAccessible(accessible).
		WithInput(console.Input()).
		WithOutput(console.Output())
	if err := form.Run(); err != nil {
		return err
	}

	if err := ApplySetup(cfgMgr, cfg, answers); err != nil {
		return err
	}

	console.Printf(KindSuccess, "Configuration saved to %s", cfgMgr.GetConfigPath())
	return nil
}

// ApplySetup copies answers into cfg and saves it. Running the wizard
// counts as acknowledging the first-use notice.
func ApplySetup(cfgMgr config.Manager, cfg *config.Config, answers SetupAnswers) error {
	cfg.Provider.Name = answers.Provider
	cfg.Provider.APIKey = strings.TrimSpace(answers.APIKey)
	cfg.Provider.Organization = strings.TrimSpace(answers.Organization)
	cfg.Provider.Model = strings.TrimSpace(answers.Model)
	cfg.Provider.Endpoint = strings.TrimSpace(answers.Endpoint)
	cfg.Contexts.Summary = strings.TrimSpace(answers.SummaryContext)
	cfg.Contexts.Commit = strings.TrimSpace(answers.CommitContext)
	cfg.Security.WarningAcknowledged = true

	if answers.Provider == config.ProviderOllama {
		cfg.Provider.APIKey = ""
		cfg.Provider.Organization = ""
	}

	if err := cfgMgr.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

// NoticeQuestion asks for the first-use acknowledgement.
const NoticeQuestion = "Send diffs to the configured provider?"

// ConfirmNotice shows the first-use notice and asks for acknowledgement.
// A terminal gets a huh confirm; other input is read as a single y/n line
// so the answers that follow stay buffered for the review prompts.
func ConfirmNotice(console *Console) (bool, error) {
	console.Print(KindWarning, security.FirstUseWarning)

	var ok bool
	var err error
	if console.TerminalInput() && console.Interactive() {
		err = huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(NoticeQuestion).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		)).WithOutput(console.Output()).Run()
	} else {
		ok, err = confirmLine(console, NoticeQuestion)
	}
	if err != nil {
		return false, err
	}
	if ok {
		console.Print(KindInfo, security.FirstUseAcknowledgment)
	}
	return ok, nil
}

// confirmLine asks question until a y/n answer is read.
func confirmLine(console *Console, question string) (bool, error) {
	for {
		answer, err := console.Prompt(question + " [y/n]: ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		console.Print(KindWarning, "Please answer y or n.")
	}
}

// ValidateAPIKey checks a key entered in the wizard.
func ValidateAPIKey(provider, key string) error {
	return security.ValidateAPIKeyFormat(provider, strings.TrimSpace(key))
}

func requireText(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}
