// Package progress shows a spinner on stderr while a request is in flight.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/linear/internal/ui/styles"
)

type stopMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	message string
	quit    bool
}

func newSpinnerModel(message string) spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle
	return spinnerModel{spinner: sp, message: message}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		m.quit = true
		return m, tea.Quit
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.quit = true
			return m, tea.Quit
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() tea.View {
	if m.quit {
		return tea.NewView("")
	}
	return tea.NewView(fmt.Sprintf("%s %s", m.spinner.View(), styles.MutedStyle.Render(m.message)))
}

// Spinner animates a message until Stop is called.
type Spinner struct {
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

// Start draws a spinner with message to out. The caller decides whether
// out is a terminal.
func Start(out io.Writer, message string) *Spinner {
	s := &Spinner{
		program: tea.NewProgram(newSpinnerModel(message),
			tea.WithoutSignalHandler(),
			tea.WithInput(nil),
			tea.WithOutput(out),
		),
		done: make(chan struct{}),
	}
	go func() {
		_, _ = s.program.Run()
		close(s.done)
	}()
	return s
}

// Stop ends the animation and clears the line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.program.Send(stopMsg{})
		select {
		case <-s.done:
		case <-time.After(500 * time.Millisecond):
			s.program.Kill()
		}
	})
}
