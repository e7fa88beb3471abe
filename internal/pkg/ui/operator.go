package ui

import (
	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
	"github.com/commitgpt/commitgpt/internal/pkg/review"
)

// DecisionPrompt is shown before every decision read.
const DecisionPrompt = "Accept (y), regenerate (r) or write your own (c)? "

// ConsoleOperator drives a review loop from the console.
type ConsoleOperator struct {
	console *Console
}

// NewConsoleOperator creates a review operator on top of console.
func NewConsoleOperator(console *Console) *ConsoleOperator {
	return &ConsoleOperator{console: console}
}

// Present shows the generated text verbatim.
func (o *ConsoleOperator) Present(stage review.Stage, text string) {
	o.console.Printf(KindInfo, "Generated %s:", stage.Name)
	o.console.Print(KindPlain, text)
}

// Failed reports why generation failed and that manual text is needed.
func (o *ConsoleOperator) Failed(stage review.Stage, err error) {
	o.console.Print(KindError, apperrors.FormatError(err))
	o.console.Printf(KindWarning, "Could not generate the %s. Please write it yourself.", stage.Name)
}

// Decide reads one decision line.
func (o *ConsoleOperator) Decide(stage review.Stage) (string, error) {
	return o.console.Prompt(DecisionPrompt)
}

// Override reads replacement text.
func (o *ConsoleOperator) Override(stage review.Stage) (string, error) {
	return o.console.Prompt("Enter the " + stage.Name + ": ")
}

// Invalid tells the operator which answers are accepted.
func (o *ConsoleOperator) Invalid(stage review.Stage, token string) {
	o.console.Printf(KindWarning, "Unrecognized answer %q. Type y, r or c.", token)
}

// Generating shows a spinner until the returned func is called.
func (o *ConsoleOperator) Generating(stage review.Stage) func() {
	s := o.console.Spinner("Generating " + stage.Name + "...")
	s.Start()
	return s.Stop
}
