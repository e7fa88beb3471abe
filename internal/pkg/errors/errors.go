// Package errors provides the error taxonomy, exit codes and logging for commitgpt.
package errors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrorCode represents the category of an error.
type ErrorCode int

// User errors (exit code 1).
const (
	ErrInvalidArguments ErrorCode = iota + 100
	ErrMissingConfig
	ErrInvalidConfig
	ErrAborted
)

// ErrEmptyChangeSet is a clean stop, not a failure (exit code 0).
const ErrEmptyChangeSet ErrorCode = 150

// System errors (exit code 2).
const (
	ErrRepositoryFailed ErrorCode = iota + 200
	ErrFileSystemError
)

// External errors (exit code 3).
const (
	ErrCompletionFailed ErrorCode = iota + 300
	ErrAuthenticationFailed
	ErrRateLimited
	ErrTimeout
)

// ExitCode returns the process exit code for an error code.
func (c ErrorCode) ExitCode() int {
	switch {
	case c == ErrEmptyChangeSet:
		return 0
	case c >= 100 && c < 200:
		return 1
	case c >= 200 && c < 300:
		return 2
	case c >= 300:
		return 3
	default:
		return 1
	}
}

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidArguments:
		return "InvalidArguments"
	case ErrMissingConfig:
		return "MissingConfig"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrAborted:
		return "Aborted"
	case ErrEmptyChangeSet:
		return "EmptyChangeSet"
	case ErrRepositoryFailed:
		return "RepositoryFailed"
	case ErrFileSystemError:
		return "FileSystemError"
	case ErrCompletionFailed:
		return "CompletionFailed"
	case ErrAuthenticationFailed:
		return "AuthenticationFailed"
	case ErrRateLimited:
		return "RateLimited"
	case ErrTimeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// IsCompletion reports whether the code belongs to the completion boundary.
func (c ErrorCode) IsCompletion() bool {
	return c >= 300 && c < 400
}

// AppError represents an application error with context.
type AppError struct {
	Code       ErrorCode
	Message    string
	Cause      error
	Context    map[string]interface{}
	Suggestion string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError by code, so sentinel values work with errors.Is.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// WithContext adds context to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with context.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// GetExitCode returns the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code.ExitCode()
	}
	return 1
}

// IsCompletionError reports whether err came from the completion boundary.
func IsCompletionError(err error) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code.IsCompletion()
	}
	return false
}

// Common error constructors with suggestions

// NewUsageError creates an error for a wrong command line.
func NewUsageError(usage string) *AppError {
	return &AppError{
		Code:       ErrInvalidArguments,
		Message:    "invalid arguments",
		Suggestion: usage,
	}
}

// NewMissingConfigError creates an error listing the missing configuration keys.
func NewMissingConfigError(keys []string) *AppError {
	return &AppError{
		Code:       ErrMissingConfig,
		Message:    fmt.Sprintf("missing required configuration: %s", strings.Join(keys, ", ")),
		Context:    map[string]interface{}{"keys": keys},
		Suggestion: "Set the values in a .env file, the environment, or run 'commitgpt config setup'",
	}
}

// NewInvalidConfigError creates an error for invalid configuration.
func NewInvalidConfigError(message string) *AppError {
	return &AppError{
		Code:       ErrInvalidConfig,
		Message:    message,
		Suggestion: "Run 'commitgpt config init' to create a valid configuration file",
	}
}

// NewEmptyChangeSetError creates the clean-stop error for a run with nothing to commit.
func NewEmptyChangeSetError() *AppError {
	return &AppError{
		Code:       ErrEmptyChangeSet,
		Message:    "no modified files found",
		Suggestion: "Use 'git add <files>' to stage the changes you want to commit",
	}
}

// NewAbortedError creates an error for an operator that stopped answering.
func NewAbortedError(cause error) *AppError {
	return &AppError{
		Code:    ErrAborted,
		Message: "input closed before a decision was made",
		Cause:   cause,
	}
}

// NewRepositoryError creates an error for git collaborator failures.
func NewRepositoryError(err error, output string) *AppError {
	appErr := &AppError{
		Code:    ErrRepositoryFailed,
		Message: "git command failed",
		Cause:   err,
	}
	if output != "" {
		appErr.Context = map[string]interface{}{
			"output": strings.TrimSpace(output),
		}
	}
	return appErr
}

// NewCompletionError creates an error for completion service failures.
func NewCompletionError(provider string, err error) *AppError {
	return &AppError{
		Code:       ErrCompletionFailed,
		Message:    fmt.Sprintf("%s completion failed", provider),
		Cause:      err,
		Suggestion: "Check your API key and network connectivity",
	}
}

// NewRateLimitError creates an error for rate limiting.
func NewRateLimitError(retryAfter time.Duration) *AppError {
	suggestion := "Please wait and try again later"
	if retryAfter > 0 {
		suggestion = fmt.Sprintf("Please wait %v and try again", retryAfter)
	}
	return &AppError{
		Code:       ErrRateLimited,
		Message:    "rate limit exceeded",
		Suggestion: suggestion,
	}
}

// NewTimeoutError creates an error for timeouts.
func NewTimeoutError(err error) *AppError {
	return &AppError{
		Code:       ErrTimeout,
		Message:    "request timed out",
		Cause:      err,
		Suggestion: "Please check your network connection or try again later",
	}
}

// NewAuthenticationError creates an error for authentication failures.
func NewAuthenticationError(provider string) *AppError {
	return &AppError{
		Code:       ErrAuthenticationFailed,
		Message:    fmt.Sprintf("authentication failed with %s", provider),
		Suggestion: "Please check your API key and organization are valid",
	}
}

// FormatError formats an error for user display.
// API keys and other sensitive data are masked.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(appErr.Message))

		if appErr.Cause != nil {
			sb.WriteString("\n  Cause: ")
			sb.WriteString(SanitizeErrorMessage(appErr.Cause.Error()))
		}

		if output, ok := appErr.Context["output"]; ok {
			sb.WriteString("\n  Output: ")
			sb.WriteString(SanitizeErrorMessage(fmt.Sprintf("%v", output)))
		}

		if appErr.Suggestion != "" {
			sb.WriteString("\n  Suggestion: ")
			sb.WriteString(appErr.Suggestion)
		}
	} else {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(err.Error()))
	}

	return sb.String()
}

// FormatErrorVerbose formats an error with full details for verbose mode.
func FormatErrorVerbose(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString(fmt.Sprintf("Error [%s]: %s\n", appErr.Code.String(), SanitizeErrorMessage(appErr.Message)))

		if appErr.Cause != nil {
			sb.WriteString(fmt.Sprintf("  Cause: %v\n", SanitizeErrorMessage(appErr.Cause.Error())))
			sb.WriteString("  Error chain:\n")
			printErrorChain(&sb, appErr.Cause, 2)
		}

		if len(appErr.Context) > 0 {
			sb.WriteString("  Context:\n")
			for k, v := range appErr.Context {
				sb.WriteString(fmt.Sprintf("    %s: %v\n", k, SanitizeErrorMessage(fmt.Sprintf("%v", v))))
			}
		}

		if appErr.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("  Suggestion: %s\n", appErr.Suggestion))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %v\n", SanitizeErrorMessage(err.Error())))
		sb.WriteString("  Error chain:\n")
		printErrorChain(&sb, err, 2)
	}

	return sb.String()
}

// printErrorChain prints the error chain with indentation.
func printErrorChain(sb *strings.Builder, err error, indent int) {
	if err == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)
	errMsg := SanitizeErrorMessage(err.Error())
	sb.WriteString(fmt.Sprintf("%s- %T: %v\n", prefix, err, errMsg))

	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		printErrorChain(sb, unwrapped, indent+1)
	}
}

// SanitizeErrorMessage masks any API keys in error messages.
func SanitizeErrorMessage(msg string) string {
	return apiKeyPattern.ReplaceAllStringFunc(msg, func(match string) string {
		if len(match) <= 4 {
			return "****"
		}
		return strings.Repeat("*", len(match)-4) + match[len(match)-4:]
	})
}

// apiKeyPattern matches OpenAI style secret keys, including project keys.
var apiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`)
