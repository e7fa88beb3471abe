package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/commitgpt/commitgpt/internal/app"
	"github.com/commitgpt/commitgpt/internal/pkg/collector"
	"github.com/commitgpt/commitgpt/internal/pkg/completion"
	"github.com/commitgpt/commitgpt/internal/pkg/config"
	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
	"github.com/commitgpt/commitgpt/internal/pkg/git"
	"github.com/commitgpt/commitgpt/internal/pkg/history"
	"github.com/commitgpt/commitgpt/internal/pkg/security"
	"github.com/commitgpt/commitgpt/internal/pkg/ui"
)

// CommitFlags holds the flags of a commit run.
type CommitFlags struct {
	EnvFile    string
	Remote     string
	DryRun     bool
	NoPush     bool
	OutputFile string
}

// runCommit loads the configuration, validates it, and only then opens
// the repository and starts the commit run.
func runCommit(cmd *cobra.Command, args []string, flags *CommitFlags) error {
	ctx := cmd.Context()

	verbose, _ := cmd.Flags().GetBool("verbose")
	configPath, _ := cmd.Flags().GetString("config")
	providerOverride, _ := cmd.Flags().GetString("provider")
	modelOverride, _ := cmd.Flags().GetString("model")

	apperrors.SetVerbose(verbose)

	repoPath, err := repositoryPath(args)
	if err != nil {
		return err
	}

	// Earlier files win, and variables already in the environment win over all of them.
	if err := config.LoadDotEnv(flags.EnvFile, filepath.Join(repoPath, config.DefaultEnvFile), config.DefaultEnvFile); err != nil {
		return err
	}

	cfgMgr, err := config.NewManager(configPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to create config manager")
	}
	if configPath != "" {
		apperrors.Debug("Using custom config path: %s", configPath)
	}

	// Flags take highest priority and are not persisted.
	if providerOverride != "" {
		cfgMgr.SetOverride("provider.name", providerOverride)
		apperrors.Debug("Provider overridden via flag: %s", providerOverride)
	}
	if modelOverride != "" {
		cfgMgr.SetOverride("provider.model", modelOverride)
		apperrors.Debug("Model overridden via flag: %s", modelOverride)
	}
	if flags.Remote != "" {
		cfgMgr.SetOverride("git.remote", flags.Remote)
	}

	cfg, err := cfgMgr.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	console := ui.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout(), cfg.UI.ColorEnabled)
	if cfg.UI.ClearScreen {
		console.Clear()
	}
	console.Print(ui.KindInfo, "Welcome to commitgpt")

	if cfg.Provider.Name != config.ProviderOllama && !cfgMgr.IsSecurityWarningAcknowledged() {
		if err := acknowledgeNotice(cfgMgr, console); err != nil {
			return err
		}
	}

	if verbose {
		apperrors.Info("Using provider: %s", cfg.Provider.Name)
		apperrors.Info("Using model: %s", cfg.Provider.Model)
		if cfg.Provider.APIKey != "" {
			apperrors.Info("API key: %s", security.MaskAPIKey(cfg.Provider.APIKey))
		}
	}

	repo, err := git.Open(repoPath)
	if err != nil {
		return err
	}
	apperrors.Debug("Repository root: %s", repo.Root())

	completer, err := completion.NewFromConfig(&cfg.Provider)
	if err != nil {
		return err
	}

	var historyMgr history.Manager
	if cfg.History.Enabled {
		historyMgr = history.NewFileManager(cfg.History.FilePath, cfg.History.MaxEntries)
	}

	service := app.NewCommitService(
		repo,
		collector.New(repo),
		completer,
		ui.NewConsoleOperator(console),
		historyMgr,
		console,
		cfg,
	)

	_, err = service.Run(ctx, &app.CommitOptions{
		DryRun:     flags.DryRun,
		NoPush:     flags.NoPush,
		OutputFile: flags.OutputFile,
		Remote:     flags.Remote,
	})
	return err
}

// repositoryPath returns the explicit path argument, or the working directory.
func repositoryPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to get working directory")
	}
	return wd, nil
}

// acknowledgeNotice shows the first-use notice and records the answer.
func acknowledgeNotice(cfgMgr *config.ViperManager, console *ui.Console) error {
	ok, err := ui.ConfirmNotice(console)
	if err != nil {
		return apperrors.NewAbortedError(err)
	}
	if !ok {
		declined := apperrors.NewAbortedError(fmt.Errorf("first-use notice not acknowledged"))
		declined.Message = "operation cancelled"
		return declined
	}

	if err := cfgMgr.AcknowledgeSecurityWarning(); err != nil {
		// Not fatal, the notice is shown again next time.
		apperrors.Warn("Failed to save security acknowledgment: %v", err)
	}
	return nil
}
