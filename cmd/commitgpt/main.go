// Package main is the entry point for the commitgpt CLI application.
// commitgpt summarizes the staged changes of a git repository with a
// language model, drafts a commit message, and commits and pushes once
// both texts are accepted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/commitgpt/commitgpt/internal/cmd"
	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
)

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.NewRootCmd(version, commit, date)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	code := apperrors.GetExitCode(err)
	if code == 0 {
		// Nothing to commit; the warning was already shown.
		return 0
	}

	if apperrors.IsVerbose() {
		fmt.Fprintln(os.Stderr, apperrors.FormatErrorVerbose(err))
	} else {
		fmt.Fprintln(os.Stderr, apperrors.FormatError(err))
	}
	return code
}
