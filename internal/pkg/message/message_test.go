package message

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		rawText      string
		wantType     string
		wantScope    string
		wantBreaking bool
		wantSubject  string
		wantBody     string
	}{
		{
			name:        "simple feat commit",
			rawText:     "feat: add new feature",
			wantType:    "feat",
			wantSubject: "add new feature",
		},
		{
			name:        "feat with scope",
			rawText:     "feat(auth): add login functionality",
			wantType:    "feat",
			wantScope:   "auth",
			wantSubject: "add login functionality",
		},
		{
			name:         "breaking change marker",
			rawText:      "refactor(api)!: drop v1 routes",
			wantType:     "refactor",
			wantScope:    "api",
			wantBreaking: true,
			wantSubject:  "drop v1 routes",
		},
		{
			name:        "commit with body",
			rawText:     "feat: add feature\n\nThis is the body.\n\nCloses: #123\n",
			wantType:    "feat",
			wantSubject: "add feature",
			wantBody:    "This is the body.\n\nCloses: #123",
		},
		{
			name:        "free form text",
			rawText:     "Update a.txt and b.txt",
			wantSubject: "Update a.txt and b.txt",
		},
		{
			name:    "empty input",
			rawText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := Parse(tt.rawText)
			if cm.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", cm.Type, tt.wantType)
			}
			if cm.Scope != tt.wantScope {
				t.Errorf("Scope = %q, want %q", cm.Scope, tt.wantScope)
			}
			if cm.Breaking != tt.wantBreaking {
				t.Errorf("Breaking = %v, want %v", cm.Breaking, tt.wantBreaking)
			}
			if cm.Subject != tt.wantSubject {
				t.Errorf("Subject = %q, want %q", cm.Subject, tt.wantSubject)
			}
			if cm.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", cm.Body, tt.wantBody)
			}
		})
	}
}

func TestSubjectLine(t *testing.T) {
	tests := []string{
		"feat: add x",
		"fix(cli): handle eof",
		"feat(api)!: remove v1",
		"plain subject",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			if got := Parse(text).SubjectLine(); got != text {
				t.Errorf("SubjectLine() = %q, want %q", got, text)
			}
		})
	}
}

func TestLint(t *testing.T) {
	longSubject := "feat: " + strings.Repeat("a", MaxSubjectLength)

	tests := []struct {
		name    string
		text    string
		wantAny []string
	}{
		{name: "clean", text: "feat: update a.txt, b.txt"},
		{name: "clean with body", text: "fix(git): trim output\n\nGit appends a newline."},
		{name: "empty", text: "  \n", wantAny: []string{"commit message is empty"}},
		{name: "not conventional", text: "Update files", wantAny: []string{"Conventional Commits"}},
		{name: "unknown type", text: "feature: add x", wantAny: []string{`unknown commit type "feature"`}},
		{name: "empty subject", text: "fix: ", wantAny: []string{"commit subject is empty"}},
		{name: "long subject", text: longSubject, wantAny: []string{"exceeds 72 characters"}},
		{name: "trailing period", text: "docs: fix typo.", wantAny: []string{"ends with a period"}},
		{name: "missing blank line", text: "feat: x\nbody", wantAny: []string{"not separated by a blank line"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := Lint(tt.text)
			if len(tt.wantAny) == 0 {
				if len(warnings) != 0 {
					t.Errorf("Lint(%q) = %v, want none", tt.text, warnings)
				}
				return
			}
			joined := strings.Join(warnings, "\n")
			for _, want := range tt.wantAny {
				if !strings.Contains(joined, want) {
					t.Errorf("Lint(%q) = %v, want a warning containing %q", tt.text, warnings, want)
				}
			}
		})
	}
}

func TestIsValidCommitType(t *testing.T) {
	for _, typ := range ValidCommitTypes {
		if !IsValidCommitType(typ) {
			t.Errorf("IsValidCommitType(%q) = false, want true", typ)
		}
	}
	for _, typ := range []string{"", "Feat", "feature", "update"} {
		if IsValidCommitType(typ) {
			t.Errorf("IsValidCommitType(%q) = true, want false", typ)
		}
	}
}
