// Package git provides the version-control collaborator for commitgpt.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
)

const (
	// GitCommandTimeout is the default timeout for local git commands.
	GitCommandTimeout = 10 * time.Second
	// CommitTimeout leaves room for commit hooks.
	CommitTimeout = 60 * time.Second
	// PushTimeout is the timeout for network operations.
	PushTimeout = 60 * time.Second
)

// DefaultRemote is pushed to when no remote is configured.
const DefaultRemote = "origin"

// Repository is the version-control collaborator used by a commit run.
type Repository interface {
	// Root returns the absolute path of the working tree.
	Root() string
	// ModifiedFiles lists paths whose index state differs from HEAD, sorted.
	ModifiedFiles(ctx context.Context) ([]string, error)
	// Diff returns the raw textual diff of path against ref.
	Diff(ctx context.Context, ref, path string) (string, error)
	// Commit records the index with message.
	Commit(ctx context.Context, message string) error
	// Push pushes the current branch to remote.
	Push(ctx context.Context, remote string) error
	// CurrentBranch returns the short name of the checked out branch.
	CurrentBranch(ctx context.Context) (string, error)
}

// Client implements Repository. Reads go through go-git, while diff,
// commit and push run the git binary so hooks, signing and credential
// helpers configured by the user apply.
type Client struct {
	repo *gogit.Repository
	root string
}

// Open opens the repository containing path, walking up to find .git.
func Open(path string) (*Client, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		appErr := apperrors.NewRepositoryError(err, "")
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			appErr.Message = fmt.Sprintf("%s is not inside a git repository", path)
			appErr.Suggestion = "Run commitgpt inside a repository or pass its path as an argument"
		}
		return nil, appErr
	}

	wt, err := repo.Worktree()
	if err != nil {
		appErr := apperrors.NewRepositoryError(err, "")
		appErr.Message = "repository has no working tree"
		return nil, appErr
	}

	return &Client{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Root returns the absolute path of the working tree.
func (c *Client) Root() string {
	return c.root
}

// ModifiedFiles lists every path whose staged state differs from HEAD.
// Untracked and unstaged-only changes are not included.
func (c *Client) ModifiedFiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewRepositoryError(err, "")
	}

	if _, err := c.repo.Head(); err != nil {
		appErr := apperrors.NewRepositoryError(err, "")
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			appErr.Message = "repository has no commits yet"
			appErr.Suggestion = "Create an initial commit before using commitgpt"
		}
		return nil, appErr
	}

	wt, err := c.repo.Worktree()
	if err != nil {
		return nil, apperrors.NewRepositoryError(err, "")
	}
	status, err := wt.Status()
	if err != nil {
		appErr := apperrors.NewRepositoryError(err, "")
		appErr.Message = "failed to read repository status"
		return nil, appErr
	}

	files := make([]string, 0, len(status))
	for path, st := range status {
		if st.Staging == gogit.Unmodified || st.Staging == gogit.Untracked {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)

	apperrors.Debug("found %d modified files", len(files))
	return files, nil
}

// Diff returns the output of `git diff <ref> -- <path>` without its final newline.
func (c *Client) Diff(ctx context.Context, ref, path string) (string, error) {
	out, err := c.run(ctx, GitCommandTimeout, "diff", ref, "--", path)
	if err != nil {
		if appErr := apperrors.GetAppError(err); appErr != nil {
			appErr.WithContext("path", path)
		}
		return "", err
	}
	return strings.TrimSuffix(out, "\n"), nil
}

// Commit runs `git commit -m <message>`.
func (c *Client) Commit(ctx context.Context, message string) error {
	_, err := c.run(ctx, CommitTimeout, "commit", "-m", message)
	return err
}

// Push runs `git push <remote>`.
func (c *Client) Push(ctx context.Context, remote string) error {
	if remote == "" {
		remote = DefaultRemote
	}
	_, err := c.run(ctx, PushTimeout, "push", remote)
	return err
}

// CurrentBranch returns the short name of HEAD, or "HEAD" when detached.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	ref, err := c.repo.Head()
	if err != nil {
		return "", apperrors.NewRepositoryError(err, "")
	}
	if !ref.Name().IsBranch() {
		return "HEAD", nil
	}
	return ref.Name().Short(), nil
}

// run executes git in the repository root and returns its stdout.
func (c *Client) run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	apperrors.LogGitCommand(c.root, args)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.root
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		output := stderr.String()
		if strings.TrimSpace(output) == "" {
			output = stdout.String()
		}
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("git %s timed out after %v: %w", args[0], timeout, ctx.Err())
		}
		appErr := apperrors.NewRepositoryError(err, output)
		appErr.Message = fmt.Sprintf("git %s failed", args[0])
		return "", appErr
	}

	return stdout.String(), nil
}
