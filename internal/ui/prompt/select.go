package prompt

import (
	"os"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/raphi011/linear/internal/ui/styles"
)

// Choice is one selectable entry.
type Choice struct {
	Value  string
	Detail string
}

// SelectResult holds the result of a selection prompt.
type SelectResult struct {
	Value     string
	Index     int
	Cancelled bool
}

type choiceItem struct {
	Choice
	index int
}

func (i choiceItem) Title() string       { return i.Value }
func (i choiceItem) Description() string { return i.Detail }
func (i choiceItem) FilterValue() string { return i.Value + " " + i.Detail }

type selectModel struct {
	list      list.Model
	done      bool
	cancelled bool
	selected  int
}

func newSelectModel(prompt string, choices []Choice) selectModel {
	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = choiceItem{Choice: c, index: i}
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	delegate.Styles.SelectedDesc = styles.MutedStyle

	l := list.New(items, delegate, 60, min(2*len(choices)+6, 20))
	l.Title = prompt
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	return selectModel{list: l, selected: -1}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		// While filtering, keys belong to the filter input.
		if m.list.FilterState() == list.Filtering && msg.String() != "ctrl+c" {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(choiceItem); ok {
				m.selected = item.index
			}
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	return tea.NewView(m.list.View())
}

func (m selectModel) result(choices []Choice) SelectResult {
	if m.cancelled || m.selected < 0 || m.selected >= len(choices) {
		return SelectResult{Cancelled: true}
	}
	return SelectResult{Value: choices[m.selected].Value, Index: m.selected}
}

// Select shows a filterable list and returns the chosen entry.
// An empty list counts as cancelled.
func Select(prompt string, choices []Choice) (SelectResult, error) {
	if len(choices) == 0 {
		return SelectResult{Cancelled: true}, nil
	}

	p := tea.NewProgram(newSelectModel(prompt, choices), tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return SelectResult{}, err
	}
	return finalModel.(selectModel).result(choices), nil
}
