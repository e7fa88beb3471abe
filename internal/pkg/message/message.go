// Package message inspects commit messages before they are committed.
// Findings are advisory: an accepted message is committed as written.
package message

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidCommitTypes contains all valid Conventional Commits types.
var ValidCommitTypes = []string{
	"feat", "fix", "docs", "style", "refactor",
	"test", "chore", "perf", "ci", "build", "revert",
}

// MaxSubjectLength is the recommended maximum length for commit subject lines.
const MaxSubjectLength = 72

// subjectRegex matches "<type>(<scope>)!: <subject>" with scope and "!" optional.
var subjectRegex = regexp.MustCompile(`^([a-z]+)(\(([^)]+)\))?(!)?:\s*(.*)$`)

// CommitMessage is a commit message split into its parts.
type CommitMessage struct {
	Type     string
	Scope    string
	Breaking bool
	Subject  string
	// Body is everything after the first line with surrounding blank lines removed.
	Body string

	raw string
}

// Parse splits text into a CommitMessage. Text without a type prefix is
// kept whole in Subject.
func Parse(text string) *CommitMessage {
	cm := &CommitMessage{raw: text}

	first, rest, _ := strings.Cut(strings.TrimSpace(text), "\n")
	first = strings.TrimSpace(first)
	cm.Body = strings.TrimSpace(rest)

	if m := subjectRegex.FindStringSubmatch(first); m != nil {
		cm.Type = m[1]
		cm.Scope = m[3]
		cm.Breaking = m[4] == "!"
		cm.Subject = strings.TrimSpace(m[5])
		return cm
	}
	cm.Subject = first
	return cm
}

// Conventional reports whether the message has a known Conventional Commits type.
func (cm *CommitMessage) Conventional() bool {
	return IsValidCommitType(cm.Type)
}

// SubjectLine returns the first line as it will appear in git log.
func (cm *CommitMessage) SubjectLine() string {
	if cm.Type == "" {
		return cm.Subject
	}

	var sb strings.Builder
	sb.WriteString(cm.Type)
	if cm.Scope != "" {
		sb.WriteString("(" + cm.Scope + ")")
	}
	if cm.Breaking {
		sb.WriteString("!")
	}
	sb.WriteString(": ")
	sb.WriteString(cm.Subject)
	return sb.String()
}

// Lint returns advisory findings about text, in a stable order.
// An empty result means nothing was found.
func Lint(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{"commit message is empty"}
	}

	cm := Parse(text)
	var warnings []string

	switch {
	case cm.Type == "":
		warnings = append(warnings, "subject does not follow Conventional Commits (<type>: <subject>)")
	case !cm.Conventional():
		warnings = append(warnings, fmt.Sprintf("unknown commit type %q (known types: %s)",
			cm.Type, strings.Join(ValidCommitTypes, ", ")))
	}

	if cm.Subject == "" {
		warnings = append(warnings, "commit subject is empty")
	}

	if n := len([]rune(cm.SubjectLine())); n > MaxSubjectLength {
		warnings = append(warnings, fmt.Sprintf("subject line exceeds %d characters (%d chars)", MaxSubjectLength, n))
	}

	if strings.HasSuffix(cm.Subject, ".") {
		warnings = append(warnings, "subject line ends with a period")
	}

	lines := strings.Split(strings.TrimSpace(cm.raw), "\n")
	if len(lines) > 1 && strings.TrimSpace(lines[1]) != "" {
		warnings = append(warnings, "subject and body are not separated by a blank line")
	}

	return warnings
}

// IsValidCommitType checks if the given type is a valid Conventional Commits type.
func IsValidCommitType(commitType string) bool {
	return slices.Contains(ValidCommitTypes, commitType)
}
