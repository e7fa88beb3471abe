// Package ui provides the terminal console and interactive components for commitgpt.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Kind selects how a console message is styled.
type Kind int

const (
	KindPlain Kind = iota
	KindInfo
	KindSuccess
	KindWarning
	KindError
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindInfo:
		return "info"
	case KindSuccess:
		return "success"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Spinner provides loading animation functionality.
type Spinner interface {
	Start()
	Stop()
}

// Console is line-oriented terminal I/O with styled output.
type Console struct {
	in            *bufio.Reader
	out           io.Writer
	styles        map[Kind]lipgloss.Style
	interactive   bool
	terminalInput bool
}

// NewConsole creates a console reading lines from in and writing to out.
// Colors are used only when colorEnabled is set and out supports them.
func NewConsole(in io.Reader, out io.Writer, colorEnabled bool) *Console {
	c := &Console{
		in:            bufio.NewReader(in),
		out:           out,
		interactive:   isTerminal(out),
		terminalInput: isTerminalReader(in),
	}
	c.initStyles(colorEnabled)
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func isTerminalReader(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// initStyles maps each kind to its style: info bold blue, success bold
// green, warning bold yellow, error bold red, plain unstyled.
func (c *Console) initStyles(colorEnabled bool) {
	r := lipgloss.NewRenderer(c.out)
	c.styles = map[Kind]lipgloss.Style{
		KindPlain:   r.NewStyle(),
		KindInfo:    r.NewStyle(),
		KindSuccess: r.NewStyle(),
		KindWarning: r.NewStyle(),
		KindError:   r.NewStyle(),
	}
	if !colorEnabled {
		return
	}

	c.styles[KindInfo] = r.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	c.styles[KindSuccess] = r.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	c.styles[KindWarning] = r.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	c.styles[KindError] = r.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
}

// Style returns the style used for kind.
func (c *Console) Style(kind Kind) lipgloss.Style {
	if s, ok := c.styles[kind]; ok {
		return s
	}
	return c.styles[KindPlain]
}

// Input returns the reader prompts consume. Forms must read from it so no
// buffered line is lost.
func (c *Console) Input() io.Reader {
	return c.in
}

// Output returns the writer the console prints to.
func (c *Console) Output() io.Writer {
	return c.out
}

// Interactive reports whether output goes to a terminal.
func (c *Console) Interactive() bool {
	return c.interactive
}

// TerminalInput reports whether input comes from a terminal. Piped input
// must only be read line by line through Prompt.
func (c *Console) TerminalInput() bool {
	return c.terminalInput
}

// Print writes text followed by a newline in the style of kind. Plain
// text is written unchanged.
func (c *Console) Print(kind Kind, text string) {
	if kind == KindPlain {
		fmt.Fprintln(c.out, text)
		return
	}
	fmt.Fprintln(c.out, c.Style(kind).Render(text))
}

// Printf formats and prints a message of the given kind.
func (c *Console) Printf(kind Kind, format string, args ...interface{}) {
	c.Print(kind, fmt.Sprintf(format, args...))
}

// Prompt writes label and reads one line. The line terminator is removed
// and nothing else. io.EOF is returned when input ends before any text.
func (c *Console) Prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)

	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Clear clears the screen when output is a terminal.
func (c *Console) Clear() {
	if !c.interactive {
		return
	}
	termenv.NewOutput(c.out).ClearScreen()
}

// Spinner returns an animated spinner on terminals and a no-op otherwise.
func (c *Console) Spinner(text string) Spinner {
	if !c.interactive {
		return noopSpinner{}
	}
	return newBubbleSpinner(c.out, text)
}

// bubbleSpinner implements Spinner using Bubble Tea. It never reads input,
// so line prompts keep working once it stops.
type bubbleSpinner struct {
	out     io.Writer
	model   spinnerModel
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
}

type spinnerModel struct {
	spinner  spinner.Model
	text     string
	quitting bool
}

// spinnerQuitMsg signals the spinner to quit.
type spinnerQuitMsg struct{}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerQuitMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.text)
}

func newBubbleSpinner(out io.Writer, text string) *bubbleSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &bubbleSpinner{
		out:   out,
		model: spinnerModel{spinner: s, text: text},
	}
}

func (s *bubbleSpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program != nil {
		return
	}
	s.program = tea.NewProgram(s.model,
		tea.WithOutput(s.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	s.done = make(chan struct{})
	go func(p *tea.Program, done chan struct{}) {
		defer close(done)
		_, _ = p.Run()
	}(s.program, s.done)
}

// Stop quits the spinner and waits until its line is cleared.
func (s *bubbleSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program == nil {
		return
	}
	s.program.Send(spinnerQuitMsg{})
	<-s.done
	s.program = nil
}

type noopSpinner struct{}

func (noopSpinner) Start() {}
func (noopSpinner) Stop()  {}
