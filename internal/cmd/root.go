// Package cmd contains the CLI command definitions for commitgpt.
package cmd

import (
	"github.com/spf13/cobra"

	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
)

// Usage is the message shown when the positional arguments are wrong.
const Usage = "usage: commitgpt [path]"

// NewRootCmd creates the root command for the commitgpt CLI.
func NewRootCmd(version, commitHash, date string) *cobra.Command {
	flags := &CommitFlags{}

	rootCmd := &cobra.Command{
		Use:   "commitgpt [path]",
		Short: "Summarize staged changes and commit them with a generated message",
		Long: `commitgpt reads the files staged in a git repository, asks a language
model to summarize their diffs and to write a commit message, and lets you
accept (y), regenerate (r) or replace (c) each text before committing and
pushing.

The repository defaults to the current directory.

Examples:
  commitgpt                    # Commit the staged changes of the current repository
  commitgpt ../service         # Use another repository
  commitgpt --no-push          # Commit without pushing
  commitgpt --dry-run          # Generate both texts without committing
  commitgpt -o msg.txt         # Save the message to a file (implies --dry-run)`,
		Version:       version,
		Args:          pathArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd, args, flags)
		},
	}

	rootCmd.SetVersionTemplate(`commitgpt {{.Version}}
Commit: ` + commitHash + `
Built:  ` + date + "\n")

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: ~/.commitgpt/config.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "Completion provider to use (openai, deepseek, ollama)")
	rootCmd.PersistentFlags().String("model", "", "Model to use")

	rootCmd.Flags().StringVar(&flags.EnvFile, "env-file", "", "Additional .env file to load")
	rootCmd.Flags().StringVar(&flags.Remote, "remote", "", "Remote to push to (default: origin)")
	rootCmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Generate the texts without committing")
	rootCmd.Flags().BoolVar(&flags.NoPush, "no-push", false, "Commit without pushing")
	rootCmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Write the commit message to a file (implies --dry-run)")

	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewHistoryCmd())

	return rootCmd
}

// pathArgs accepts at most one repository path.
func pathArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return apperrors.NewUsageError(Usage)
	}
	return nil
}
