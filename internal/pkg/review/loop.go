// Package review implements the generate, present and decide loop that turns
// model output into operator-approved text.
package review

import (
	"context"
	"errors"
	"io"
	"strings"

	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
)

// State is a step of the review state machine.
type State int

const (
	Generating State = iota
	Presenting
	AwaitingDecision
	AwaitingOverride
	Accepted
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case Generating:
		return "generating"
	case Presenting:
		return "presenting"
	case AwaitingDecision:
		return "awaiting-decision"
	case AwaitingOverride:
		return "awaiting-override"
	case Accepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// Decision tokens, compared exactly and case-sensitively.
const (
	DecisionAccept     = "y"
	DecisionRegenerate = "r"
	DecisionCustom     = "c"
)

// Source tells where the accepted text came from.
type Source int

const (
	SourceGenerated Source = iota
	SourceOperator
)

// String returns the source name.
func (s Source) String() string {
	if s == SourceOperator {
		return "operator"
	}
	return "generated"
}

// Stage is one review run: a name for display plus the request sent on
// every attempt.
type Stage struct {
	Name          string
	SystemContext string
	Content       string
}

// Outcome is the accepted text of a stage.
type Outcome struct {
	Text   string
	Source Source
	// Attempts counts completion calls made, failed ones included.
	Attempts int
}

// Completer is the completion call the loop drives.
type Completer interface {
	Complete(ctx context.Context, systemContext, userContent string) (string, error)
}

// Operator is the human side of the loop.
type Operator interface {
	// Present shows generated text verbatim.
	Present(stage Stage, text string)
	// Failed reports a completion failure before asking for manual text.
	Failed(stage Stage, err error)
	// Decide reads one decision line.
	Decide(stage Stage) (string, error)
	// Override reads replacement text.
	Override(stage Stage) (string, error)
	// Invalid reports an unrecognized decision token.
	Invalid(stage Stage, token string)
}

// Progress is implemented by operators that show activity while a
// completion call is in flight. The returned func stops the indicator.
type Progress interface {
	Generating(stage Stage) func()
}

// ErrInputClosed is returned when the operator's input ends before a
// decision is made. Match it with errors.Is.
var ErrInputClosed = apperrors.NewAbortedError(io.EOF)

// Loop runs stages against a completer and an operator.
type Loop struct {
	completer Completer
	operator  Operator
}

// New creates a review loop.
func New(completer Completer, operator Operator) *Loop {
	return &Loop{completer: completer, operator: operator}
}

// Run drives one stage until the operator accepts generated text or
// supplies their own. There is no attempt limit.
func (l *Loop) Run(ctx context.Context, stage Stage) (*Outcome, error) {
	var (
		state   = Generating
		text    string
		outcome *Outcome
		attempt int
	)

	for {
		apperrors.Debug("review %s: %s", stage.Name, state)

		switch state {
		case Generating:
			if err := ctx.Err(); err != nil {
				return nil, apperrors.NewAbortedError(err)
			}
			attempt++

			generated, err := l.generate(ctx, stage)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, apperrors.NewAbortedError(ctxErr)
				}
				apperrors.Debug("review %s: attempt %d failed: %v", stage.Name, attempt, err)
				l.operator.Failed(stage, err)
				state = AwaitingOverride
				continue
			}
			text = generated
			state = Presenting

		case Presenting:
			l.operator.Present(stage, text)
			state = AwaitingDecision

		case AwaitingDecision:
			line, err := l.operator.Decide(stage)
			if err != nil {
				return nil, inputError(err)
			}
			switch token := strings.TrimRight(line, "\r\n"); token {
			case DecisionAccept:
				outcome = &Outcome{Text: text, Source: SourceGenerated, Attempts: attempt}
				state = Accepted
			case DecisionRegenerate:
				state = Generating
			case DecisionCustom:
				state = AwaitingOverride
			default:
				l.operator.Invalid(stage, token)
			}

		case AwaitingOverride:
			line, err := l.operator.Override(stage)
			if err != nil {
				return nil, inputError(err)
			}
			custom := strings.TrimSpace(line)
			if custom == "" {
				continue
			}
			outcome = &Outcome{Text: custom, Source: SourceOperator, Attempts: attempt}
			state = Accepted

		case Accepted:
			return outcome, nil
		}
	}
}

// generate performs one completion call. Any failure, including a
// successful call with blank text, comes back as a completion error.
func (l *Loop) generate(ctx context.Context, stage Stage) (string, error) {
	if p, ok := l.operator.(Progress); ok {
		stop := p.Generating(stage)
		defer stop()
	}

	text, err := l.completer.Complete(ctx, stage.SystemContext, stage.Content)
	if err != nil {
		if !apperrors.IsCompletionError(err) {
			err = apperrors.NewCompletionError("completion", err)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewCompletionError("completion", errors.New("response text was empty"))
	}
	return text, nil
}

func inputError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, ErrInputClosed) {
		return apperrors.NewAbortedError(io.EOF)
	}
	return apperrors.NewAbortedError(err)
}
