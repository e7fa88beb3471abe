package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestErrorCode_ExitCode(t *testing.T) {
	tests := []struct {
		name     string
		code     ErrorCode
		expected int
	}{
		{"InvalidArguments", ErrInvalidArguments, 1},
		{"MissingConfig", ErrMissingConfig, 1},
		{"InvalidConfig", ErrInvalidConfig, 1},
		{"Aborted", ErrAborted, 1},
		{"EmptyChangeSet", ErrEmptyChangeSet, 0},
		{"RepositoryFailed", ErrRepositoryFailed, 2},
		{"FileSystemError", ErrFileSystemError, 2},
		{"CompletionFailed", ErrCompletionFailed, 3},
		{"AuthenticationFailed", ErrAuthenticationFailed, 3},
		{"RateLimited", ErrRateLimited, 3},
		{"Timeout", ErrTimeout, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.ExitCode(); got != tt.expected {
				t.Errorf("ExitCode() = %v, want %v", got, tt.expected)
			}
			if got := tt.code.String(); got != tt.name {
				t.Errorf("String() = %v, want %v", got, tt.name)
			}
		})
	}
}

func TestErrorCode_IsCompletion(t *testing.T) {
	if !ErrCompletionFailed.IsCompletion() || !ErrTimeout.IsCompletion() {
		t.Error("completion codes should report IsCompletion")
	}
	if ErrRepositoryFailed.IsCompletion() || ErrAborted.IsCompletion() {
		t.Error("non-completion codes should not report IsCompletion")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name: "without cause",
			err: &AppError{
				Code:    ErrEmptyChangeSet,
				Message: "no modified files found",
			},
			expected: "no modified files found",
		},
		{
			name: "with cause",
			err: &AppError{
				Code:    ErrRepositoryFailed,
				Message: "git command failed",
				Cause:   errors.New("exit status 1"),
			},
			expected: "git command failed: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrRepositoryFailed, "wrapped")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	sentinel := NewEmptyChangeSetError()
	wrapped := fmt.Errorf("run: %w", New(ErrEmptyChangeSet, "nothing to do"))

	if !errors.Is(wrapped, sentinel) {
		t.Error("errors.Is should match AppErrors with the same code")
	}
	if errors.Is(wrapped, New(ErrAborted, "other")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestAppError_WithContext(t *testing.T) {
	err := New(ErrRepositoryFailed, "failed").
		WithContext("command", "git diff").
		WithContext("exit", 128)

	if err.Context["command"] != "git diff" {
		t.Errorf("Context[command] = %v", err.Context["command"])
	}
	if err.Context["exit"] != 128 {
		t.Errorf("Context[exit] = %v", err.Context["exit"])
	}
}

func TestAppError_WithSuggestion(t *testing.T) {
	err := New(ErrMissingConfig, "missing").WithSuggestion("set OPENAI_API_KEY")

	if err.Suggestion != "set OPENAI_API_KEY" {
		t.Errorf("Suggestion = %v", err.Suggestion)
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(New(ErrAborted, "x")) {
		t.Error("IsAppError should be true for *AppError")
	}
	if !IsAppError(fmt.Errorf("wrap: %w", New(ErrAborted, "x"))) {
		t.Error("IsAppError should see through wrapping")
	}
	if IsAppError(errors.New("plain")) {
		t.Error("IsAppError should be false for plain errors")
	}
}

func TestHasCode(t *testing.T) {
	inner := NewTimeoutError(errors.New("deadline"))
	outer := Wrap(inner, ErrCompletionFailed, "summary")

	if !HasCode(outer, ErrCompletionFailed) {
		t.Error("HasCode should match the outer code")
	}
	if !HasCode(outer, ErrTimeout) {
		t.Error("HasCode should match a nested code")
	}
	if HasCode(outer, ErrRepositoryFailed) {
		t.Error("HasCode should not match an absent code")
	}
	if HasCode(nil, ErrTimeout) {
		t.Error("HasCode(nil) should be false")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{"usage", NewUsageError("usage: commitgpt [path]"), 1},
		{"empty change set", NewEmptyChangeSetError(), 0},
		{"repository", NewRepositoryError(errors.New("exit 1"), ""), 2},
		{"completion", NewCompletionError("openai", errors.New("500")), 3},
		{"wrapped completion", fmt.Errorf("summary: %w", NewAuthenticationError("openai")), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.expected {
				t.Errorf("GetExitCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsCompletionError(t *testing.T) {
	if !IsCompletionError(NewRateLimitError(0)) {
		t.Error("rate limit should be a completion error")
	}
	if IsCompletionError(NewRepositoryError(errors.New("x"), "")) {
		t.Error("repository error should not be a completion error")
	}
	if IsCompletionError(errors.New("plain")) {
		t.Error("plain error should not be a completion error")
	}
}

func TestNewMissingConfigError(t *testing.T) {
	err := NewMissingConfigError([]string{"OPENAI_API_KEY", "SUMMARY_CONTEXT"})

	if err.Code != ErrMissingConfig {
		t.Errorf("Code = %v, want %v", err.Code, ErrMissingConfig)
	}
	if !strings.Contains(err.Message, "OPENAI_API_KEY, SUMMARY_CONTEXT") {
		t.Errorf("Message should list the keys, got %q", err.Message)
	}
}

func TestNewRepositoryError_Output(t *testing.T) {
	err := NewRepositoryError(errors.New("exit status 128"), "fatal: not a git repository\n")

	if err.Context["output"] != "fatal: not a git repository" {
		t.Errorf("Context[output] = %q", err.Context["output"])
	}
	if _, ok := NewRepositoryError(errors.New("x"), "").Context["output"]; ok {
		t.Error("empty output should not be recorded")
	}
}

func TestNewRateLimitError(t *testing.T) {
	err := NewRateLimitError(30 * time.Second)
	if !strings.Contains(err.Suggestion, "30s") {
		t.Errorf("Suggestion should mention the wait, got %q", err.Suggestion)
	}

	err = NewRateLimitError(0)
	if err.Suggestion != "Please wait and try again later" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "nil",
			err:      nil,
			contains: []string{},
		},
		{
			name:     "plain error",
			err:      errors.New("simple error"),
			contains: []string{"Error:", "simple error"},
		},
		{
			name:     "usage error",
			err:      NewUsageError("usage: commitgpt [path]"),
			contains: []string{"Error:", "invalid arguments", "Suggestion:", "usage: commitgpt [path]"},
		},
		{
			name:     "repository error with output",
			err:      NewRepositoryError(errors.New("exit status 1"), "error: pathspec did not match"),
			contains: []string{"git command failed", "Cause: exit status 1", "Output: error: pathspec did not match"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatError(tt.err)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("FormatError() = %q, should contain %q", got, s)
				}
			}
		})
	}
}

func TestFormatError_MasksKeys(t *testing.T) {
	key := "sk-proj-abcdefghijklmnopqrstuvwxyz1234"
	err := NewCompletionError("openai", fmt.Errorf("bad key %s", key))

	got := FormatError(err)
	if strings.Contains(got, key) {
		t.Errorf("FormatError() leaked the key: %q", got)
	}
	if !strings.Contains(got, "1234") {
		t.Errorf("FormatError() should keep the last four characters: %q", got)
	}

	verbose := FormatErrorVerbose(err)
	if strings.Contains(verbose, key) {
		t.Errorf("FormatErrorVerbose() leaked the key: %q", verbose)
	}
	if !strings.Contains(verbose, "CompletionFailed") {
		t.Errorf("FormatErrorVerbose() should name the code: %q", verbose)
	}
}

func TestSanitizeErrorMessage_LeavesShortTokens(t *testing.T) {
	msg := "sk-short is not a key"
	if got := SanitizeErrorMessage(msg); got != msg {
		t.Errorf("SanitizeErrorMessage() = %q, want unchanged", got)
	}
}
