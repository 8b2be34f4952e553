package humaninput

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(2)
	hintStyle     = lipgloss.NewStyle().Faint(true)
)

// TUIPrompter shows each question in a small bubbletea program.
type TUIPrompter struct {
	in  io.Reader
	out io.Writer
}

func NewTUIPrompter(in io.Reader, out io.Writer) *TUIPrompter {
	return &TUIPrompter{in: in, out: out}
}

func (p *TUIPrompter) Prompt(ctx context.Context, title, question string) (string, error) {
	program := tea.NewProgram(
		newPromptModel(title, question),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("run prompt: %w", err)
	}
	m, ok := final.(promptModel)
	if !ok || m.cancelled {
		return "", nil
	}
	return strings.TrimSpace(m.input.Value()), nil
}

type promptModel struct {
	title     string
	question  string
	input     textinput.Model
	cancelled bool
	done      bool
}

func newPromptModel(title, question string) promptModel {
	input := textinput.New()
	input.Placeholder = "your answer (end = no more questions)"
	input.CharLimit = 0
	input.Width = 80
	input.Focus()
	return promptModel{title: title, question: question, input: input}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n",
		titleStyle.Render(m.title),
		questionStyle.Render(m.question),
		m.input.View(),
		hintStyle.Render("enter to send, esc to skip"),
	)
}
