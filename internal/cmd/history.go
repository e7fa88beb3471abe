package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/commitgpt/commitgpt/internal/pkg/history"
)

const (
	// DefaultHistoryLimit is the default number of history entries to display.
	DefaultHistoryLimit = 20
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "View accepted commit messages",
		Long: `View the summaries and commit messages accepted in previous runs.

By default, displays the most recent 20 entries. Use --limit to change the number of entries shown.

Examples:
  commitgpt history           # Show last 20 entries
  commitgpt history --limit 5 # Show last 5 entries
  commitgpt history clear     # Clear all history`,
		Args: cobra.NoArgs,
		RunE: runHistoryList,
	}

	historyCmd.Flags().IntP("limit", "l", DefaultHistoryLimit, "Number of entries to display")

	historyCmd.AddCommand(newHistoryClearCmd())

	return historyCmd
}

func historyFromFlags(cmd *cobra.Command) (*history.FileManager, bool, error) {
	mgr, err := managerFromFlags(cmd)
	if err != nil {
		return nil, false, err
	}
	cfg, err := mgr.Load()
	if err != nil {
		return nil, false, err
	}
	return history.NewFileManager(cfg.History.FilePath, cfg.History.MaxEntries), cfg.History.Enabled, nil
}

// runHistoryList displays the history entries, most recent first.
func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	out := cmd.OutOrStdout()

	historyMgr, enabled, err := historyFromFlags(cmd)
	if err != nil {
		return err
	}
	if !enabled {
		fmt.Fprintln(out, "History is disabled. Enable it with: commitgpt config set history.enabled true")
		return nil
	}

	entries, err := historyMgr.List(limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No history entries found.")
		return nil
	}

	fmt.Fprintf(out, "Showing %d most recent entries:\n\n", len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		printHistoryEntry(out, entries[i], len(entries)-i)
	}
	return nil
}

func entryStatus(entry *history.Entry) string {
	switch {
	case entry.Pushed:
		return "pushed"
	case entry.Committed:
		return "committed"
	default:
		return "not committed"
	}
}

// printHistoryEntry formats and prints a single history entry.
func printHistoryEntry(out io.Writer, entry *history.Entry, index int) {
	fmt.Fprintf(out, "[%d] %s (%s) %s\n", index, entry.Timestamp.Format(time.RFC3339), entryStatus(entry), entry.Title())

	if entry.Repository != "" {
		fmt.Fprintf(out, "    Repository: %s", entry.Repository)
		if entry.Branch != "" {
			fmt.Fprintf(out, " (%s)", entry.Branch)
		}
		fmt.Fprintln(out)
	}

	if entry.Provider != "" || entry.Model != "" {
		fmt.Fprintf(out, "    Provider: %s", entry.Provider)
		if entry.Model != "" {
			fmt.Fprintf(out, " (%s)", entry.Model)
		}
		fmt.Fprintln(out)
	}

	if len(entry.Files) > 0 {
		fmt.Fprintf(out, "    Files: %s\n", strings.Join(entry.Files, ", "))
	}

	fmt.Fprintf(out, "    Message (%s):\n", entry.MessageSource)
	printIndented(out, entry.Message)

	if entry.Summary != "" {
		fmt.Fprintln(out, "    Summary:")
		printIndented(out, entry.Summary)
	}

	fmt.Fprintln(out)
}

func printIndented(out io.Writer, text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(out, "      %s\n", line)
	}
}

// newHistoryClearCmd creates the 'history clear' subcommand.
func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all history entries",
		Long: `Delete all entries from the history file.

This action cannot be undone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			historyMgr, _, err := historyFromFlags(cmd)
			if err != nil {
				return err
			}

			if err := historyMgr.Clear(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "History cleared successfully.")
			return nil
		},
	}
}
