package prompt

import (
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/linear/internal/ui/styles"
)

// TextOptions configures a text prompt.
type TextOptions struct {
	Placeholder string
	// Default is returned when the user submits an empty line.
	Default string
	// Password masks the typed characters.
	Password bool
	// Required rejects an empty submission (after Default is applied).
	Required bool
}

// TextResult holds the result of a text input prompt.
type TextResult struct {
	Value     string
	Cancelled bool
}

type textModel struct {
	input     textinput.Model
	prompt    string
	opts      TextOptions
	invalid   bool
	done      bool
	cancelled bool
}

func newTextModel(prompt string, opts TextOptions) textModel {
	ti := textinput.New()
	ti.Placeholder = opts.Placeholder
	if opts.Password {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.CharLimit = 256
	ti.SetWidth(60)
	ti.Focus()
	return textModel{input: ti, prompt: prompt, opts: opts}
}

func (m textModel) value() string {
	v := strings.TrimSpace(m.input.Value())
	if v == "" {
		return m.opts.Default
	}
	return v
}

func (m textModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyPressMsg); ok {
		switch msg.String() {
		case "enter":
			if m.opts.Required && m.value() == "" {
				m.invalid = true
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
		m.invalid = false
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m textModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	view := fmt.Sprintf("%s\n%s", m.prompt, m.input.View())
	if m.opts.Default != "" {
		view += "\n" + styles.MutedStyle.Render(fmt.Sprintf("(enter keeps %q)", m.opts.Default))
	}
	if m.invalid {
		view += "\n" + styles.ErrorStyle.Render("a value is required")
	}
	return tea.NewView(view + "\n")
}

// Text shows a text input prompt and returns the user's input.
func Text(prompt string, opts TextOptions) (TextResult, error) {
	p := tea.NewProgram(newTextModel(prompt, opts), tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return TextResult{}, err
	}
	m := finalModel.(textModel)
	if m.cancelled {
		return TextResult{Cancelled: true}, nil
	}
	return TextResult{Value: m.value()}, nil
}
