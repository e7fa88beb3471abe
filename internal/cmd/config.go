package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/commitgpt/commitgpt/internal/pkg/config"
	"github.com/commitgpt/commitgpt/internal/pkg/security"
	"github.com/commitgpt/commitgpt/internal/pkg/ui"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage commitgpt configuration",
		Long: `Manage commitgpt configuration settings.

Use subcommands to initialize, view, or modify configuration values.
Configuration is stored in ~/.commitgpt/config.yaml by default. Environment
variables and .env files override the file.`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigListCmd())
	configCmd.AddCommand(newConfigSetupCmd())

	return configCmd
}

func managerFromFlags(cmd *cobra.Command) (*config.ViperManager, error) {
	configPath, _ := cmd.Flags().GetString("config")
	mgr, err := config.NewManager(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	return mgr, nil
}

// newConfigInitCmd creates the 'config init' subcommand.
func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long: `Create a new configuration file at ~/.commitgpt/config.yaml with default values.

The configuration file will be created with permissions 0600 (user read/write only)
for security, as it may contain API keys.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := managerFromFlags(cmd)
			if err != nil {
				return err
			}

			if err := mgr.Init(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration file created at %s\n", mgr.GetConfigPath())
			fmt.Fprintln(out, "Edit this file or run 'commitgpt config setup' to set your API key and contexts.")
			return nil
		},
	}
}

// newConfigSetCmd creates the 'config set' subcommand.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value by key.

Supports nested keys using dot notation (e.g., "provider.name", "contexts.summary").

Examples:
  commitgpt config set provider.name openai
  commitgpt config set provider.api_key sk-xxx
  commitgpt config set provider.organization org-xxx
  commitgpt config set contexts.commit "Write a Conventional Commits message."
  commitgpt config set git.remote upstream`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			mgr, err := managerFromFlags(cmd)
			if err != nil {
				return err
			}

			if err := mgr.Set(key, value); err != nil {
				return err
			}

			displayValue := value
			if isSecretKey(key) {
				displayValue = security.MaskAPIKey(value)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, displayValue)
			return nil
		},
	}
}

// newConfigListCmd creates the 'config list' subcommand.
func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `Display all current configuration values, including values coming from
the environment.

API keys are masked for security, showing only the last 4 characters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := managerFromFlags(cmd)
			if err != nil {
				return err
			}

			if _, err := mgr.Load(); err != nil {
				return err
			}

			printSettings(cmd.OutOrStdout(), "", mgr.List())
			return nil
		},
	}
}

// newConfigSetupCmd creates the 'config setup' subcommand.
func newConfigSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Configure commitgpt interactively",
		Long: `Walk through the provider, credentials and system contexts and save
them to the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := managerFromFlags(cmd)
			if err != nil {
				return err
			}

			console := ui.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout(), true)
			return ui.RunInteractiveSetup(mgr, console)
		},
	}
}

func isSecretKey(key string) bool {
	return strings.Contains(strings.ToLower(key), "api_key")
}

// printSettings prints nested settings sorted by key, masking API keys.
func printSettings(out io.Writer, indent string, settings map[string]interface{}) {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := settings[key].(type) {
		case map[string]interface{}:
			fmt.Fprintf(out, "%s%s:\n", indent, key)
			printSettings(out, indent+"  ", v)
		default:
			displayValue := fmt.Sprintf("%v", v)
			if isSecretKey(key) && displayValue != "" {
				displayValue = security.MaskAPIKey(displayValue)
			}
			if strings.Contains(displayValue, "\n") {
				displayValue = strings.ReplaceAll(displayValue, "\n", "\\n")
			}
			fmt.Fprintf(out, "%s%s: %s\n", indent, key, displayValue)
		}
	}
}
