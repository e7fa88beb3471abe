// Package app contains the application layer with business orchestration logic.
package app

import (
	"context"
	"os"
	"strings"

	"github.com/commitgpt/commitgpt/internal/pkg/collector"
	"github.com/commitgpt/commitgpt/internal/pkg/config"
	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
	"github.com/commitgpt/commitgpt/internal/pkg/git"
	"github.com/commitgpt/commitgpt/internal/pkg/history"
	"github.com/commitgpt/commitgpt/internal/pkg/message"
	"github.com/commitgpt/commitgpt/internal/pkg/review"
	"github.com/commitgpt/commitgpt/internal/pkg/security"
	"github.com/commitgpt/commitgpt/internal/pkg/ui"
)

// writeFile is a variable to allow mocking in tests.
var writeFile = os.WriteFile

// Stage names shown to the operator.
const (
	SummaryStage = "summary"
	CommitStage  = "commit message"
)

// ErrNoChanges is returned when no file differs from HEAD. It is a clean
// stop, not a failure.
var ErrNoChanges = apperrors.NewEmptyChangeSetError()

// CommitOptions contains options for the commit workflow.
type CommitOptions struct {
	// DryRun stops after both texts are accepted.
	DryRun bool
	// NoPush commits without pushing.
	NoPush bool
	// OutputFile receives the commit message and implies DryRun.
	OutputFile string
	// Remote overrides the configured remote.
	Remote string
}

// Result describes a finished run.
type Result struct {
	Files         []string
	Summary       string
	Message       string
	MessageSource review.Source
	Branch        string
	Committed     bool
	Pushed        bool
}

// Completer is the completion collaborator as seen by the service.
type Completer interface {
	review.Completer
	Name() string
	Model() string
}

// CommitService sequences the collector, both review stages, the commit and the push.
type CommitService struct {
	repo       git.Repository
	collector  collector.Collector
	completer  Completer
	operator   review.Operator
	historyMgr history.Manager
	console    *ui.Console
	config     *config.Config
}

// NewCommitService creates a new CommitService with the given dependencies.
// A nil historyMgr disables history.
func NewCommitService(
	repo git.Repository,
	diffCollector collector.Collector,
	completer Completer,
	operator review.Operator,
	historyMgr history.Manager,
	console *ui.Console,
	cfg *config.Config,
) *CommitService {
	if historyMgr == nil {
		historyMgr = history.Disabled{}
	}
	return &CommitService{
		repo:       repo,
		collector:  diffCollector,
		completer:  completer,
		operator:   operator,
		historyMgr: historyMgr,
		console:    console,
		config:     cfg,
	}
}

// Run performs one commit run. Each step starts only after the previous
// one succeeded; nothing is committed before both texts are accepted.
func (s *CommitService) Run(ctx context.Context, opts *CommitOptions) (*Result, error) {
	if opts == nil {
		opts = &CommitOptions{}
	}

	files, err := s.repo.ModifiedFiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		s.console.Print(ui.KindWarning, "No modified files found. Use git add to stage the files to commit.")
		return nil, ErrNoChanges
	}

	s.console.Print(ui.KindInfo, "Modified files:")
	s.console.Print(ui.KindPlain, strings.Join(files, "\n"))

	records, err := s.collector.Collect(ctx, files)
	if err != nil {
		return nil, err
	}
	diffs := collector.JoinBodies(records)
	for _, record := range records {
		added, removed := record.Counts()
		apperrors.Debug("%s: +%d -%d (deleted=%t)", record.Path, added, removed, record.Deleted)
	}

	s.console.Print(ui.KindInfo, "Diffs:")
	s.console.Print(ui.KindPlain, diffs)
	apperrors.Debug("collected %d diffs (%d bytes): %s", len(records), len(diffs), security.SanitizeForLogging(diffs))

	loop := review.New(s.completer, s.operator)

	summary, err := loop.Run(ctx, review.Stage{
		Name:          SummaryStage,
		SystemContext: s.config.Contexts.Summary,
		Content:       diffs,
	})
	if err != nil {
		return nil, err
	}
	s.console.Print(ui.KindSuccess, "Summary of changes:")
	s.console.Print(ui.KindPlain, summary.Text)

	commitMsg, err := loop.Run(ctx, review.Stage{
		Name:          CommitStage,
		SystemContext: s.config.Contexts.Commit,
		Content:       commitPrompt(files, summary.Text),
	})
	if err != nil {
		return nil, err
	}
	s.console.Print(ui.KindSuccess, "Commit message:")
	s.console.Print(ui.KindPlain, commitMsg.Text)

	for _, warning := range message.Lint(commitMsg.Text) {
		s.console.Printf(ui.KindWarning, "Warning: %s", warning)
	}

	result := &Result{
		Files:         files,
		Summary:       summary.Text,
		Message:       commitMsg.Text,
		MessageSource: commitMsg.Source,
	}
	if branch, err := s.repo.CurrentBranch(ctx); err == nil {
		result.Branch = branch
	} else {
		apperrors.Debug("current branch unavailable: %v", err)
	}

	err = s.apply(ctx, opts, result)
	s.record(result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// commitPrompt joins the file paths and the summary, one per line.
func commitPrompt(files []string, summary string) string {
	lines := make([]string, 0, len(files)+1)
	lines = append(lines, files...)
	lines = append(lines, summary)
	return strings.Join(lines, "\n")
}

// apply commits and pushes, or writes the message out on a dry run.
func (s *CommitService) apply(ctx context.Context, opts *CommitOptions, result *Result) error {
	if opts.OutputFile != "" {
		return s.writeToFile(opts.OutputFile, result.Message)
	}
	if opts.DryRun {
		s.console.Print(ui.KindSuccess, "Dry run complete. Nothing was committed.")
		return nil
	}

	s.console.Print(ui.KindInfo, "Committing...")
	if err := s.repo.Commit(ctx, result.Message); err != nil {
		return err
	}
	result.Committed = true

	if opts.NoPush {
		s.console.Print(ui.KindSuccess, "Commit complete. Push skipped.")
		return nil
	}

	remote := s.remote(opts)
	s.console.Printf(ui.KindInfo, "Pushing to %s...", remote)
	if err := s.repo.Push(ctx, remote); err != nil {
		return err
	}
	result.Pushed = true

	s.console.Print(ui.KindSuccess, "Commit complete.")
	return nil
}

func (s *CommitService) remote(opts *CommitOptions) string {
	if opts.Remote != "" {
		return opts.Remote
	}
	if s.config.Git.Remote != "" {
		return s.config.Git.Remote
	}
	return git.DefaultRemote
}

// record saves the run to history. Failures are reported, never returned.
func (s *CommitService) record(result *Result) {
	if !s.config.History.Enabled {
		return
	}

	entry := &history.Entry{
		Repository:    s.repo.Root(),
		Branch:        result.Branch,
		Files:         result.Files,
		Summary:       result.Summary,
		Message:       result.Message,
		MessageSource: result.MessageSource.String(),
		Provider:      s.completer.Name(),
		Model:         s.completer.Model(),
		Committed:     result.Committed,
		Pushed:        result.Pushed,
	}
	if err := s.historyMgr.Save(entry); err != nil {
		apperrors.Warn("failed to save history: %v", err)
		s.console.Printf(ui.KindWarning, "Warning: failed to save to history: %v", err)
	}
}

// writeToFile writes the commit message to a file.
func (s *CommitService) writeToFile(filePath, content string) error {
	if err := writeFile(filePath, []byte(content+"\n"), 0644); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to write commit message").
			WithContext("path", filePath)
	}

	s.console.Printf(ui.KindSuccess, "Message written to %s", filePath)
	return nil
}
