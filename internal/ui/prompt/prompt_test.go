package prompt

import (
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func keyPress(key string) tea.KeyPressMsg {
	switch key {
	case "ctrl+c":
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	default:
		r := []rune(key)[0]
		return tea.KeyPressMsg{Code: r, Text: key}
	}
}

func typeText(t *testing.T, m tea.Model, s string) tea.Model {
	t.Helper()
	for _, r := range s {
		m, _ = m.Update(keyPress(string(r)))
	}
	return m
}

func TestConfirmModel_Update(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		key       string
		confirmed bool
		done      bool
		cancelled bool
		wantCmd   bool
	}{
		{"y confirms", "y", true, true, false, true},
		{"Y confirms", "Y", true, true, false, true},
		{"n declines", "n", false, true, false, true},
		{"enter defaults no", "enter", false, true, false, true},
		{"ctrl+c cancels", "ctrl+c", false, true, true, true},
		{"esc cancels", "esc", false, true, true, true},
		{"q cancels", "q", false, true, true, true},
		{"unhandled is no-op", "x", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := confirmModel{prompt: "Overwrite config?"}
			updated, cmd := m.Update(keyPress(tt.key))
			um := updated.(confirmModel)

			if um.confirmed != tt.confirmed {
				t.Errorf("confirmed = %v, want %v", um.confirmed, tt.confirmed)
			}
			if um.done != tt.done {
				t.Errorf("done = %v, want %v", um.done, tt.done)
			}
			if um.cancelled != tt.cancelled {
				t.Errorf("cancelled = %v, want %v", um.cancelled, tt.cancelled)
			}
			if (cmd != nil) != tt.wantCmd {
				t.Errorf("cmd nil = %v, want nil = %v", cmd == nil, !tt.wantCmd)
			}
		})
	}
}

func TestConfirmModel_View(t *testing.T) {
	t.Parallel()

	m := confirmModel{prompt: "Overwrite config?"}
	if got := viewText(m.View()); !strings.Contains(got, "[y/N]") {
		t.Errorf("View() = %q, want the [y/N] hint", got)
	}
	m.done = true
	if got := viewText(m.View()); got != "" {
		t.Errorf("View() after done = %q, want empty", got)
	}
}

func TestTextModel_TypeAndSubmit(t *testing.T) {
	t.Parallel()

	var m tea.Model = newTextModel("Default team:", TextOptions{})
	m = typeText(t, m, "ENG")
	m, cmd := m.Update(keyPress("enter"))

	tm := m.(textModel)
	if !tm.done || tm.cancelled {
		t.Fatalf("done = %v, cancelled = %v", tm.done, tm.cancelled)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
	if got := tm.value(); got != "ENG" {
		t.Errorf("value = %q, want ENG", got)
	}
}

func TestTextModel_Default(t *testing.T) {
	t.Parallel()

	m, _ := newTextModel("Default team:", TextOptions{Default: "OPS"}).Update(keyPress("enter"))
	if got := m.(textModel).value(); got != "OPS" {
		t.Errorf("value = %q, want OPS", got)
	}
}

func TestTextModel_RequiredBlocksEmptySubmit(t *testing.T) {
	t.Parallel()

	var m tea.Model = newTextModel("API key:", TextOptions{Required: true})
	m, cmd := m.Update(keyPress("enter"))
	tm := m.(textModel)
	if tm.done || cmd != nil {
		t.Fatal("empty required input must not submit")
	}
	if !strings.Contains(viewText(tm.View()), "required") {
		t.Error("view should explain the value is required")
	}

	m = typeText(t, tm, "k")
	if m.(textModel).invalid {
		t.Error("typing should clear the error")
	}
}

func TestTextModel_PasswordIsMasked(t *testing.T) {
	t.Parallel()

	var m tea.Model = newTextModel("API key:", TextOptions{Password: true})
	m = typeText(t, m, "lin_api_secret")

	tm := m.(textModel)
	if got := tm.value(); got != "lin_api_secret" {
		t.Errorf("value = %q", got)
	}
	if strings.Contains(viewText(tm.View()), "secret") {
		t.Error("password input must not be echoed")
	}
}

func TestTextModel_Cancel(t *testing.T) {
	t.Parallel()

	m, cmd := newTextModel("API key:", TextOptions{}).Update(keyPress("esc"))
	tm := m.(textModel)
	if !tm.cancelled || !tm.done || cmd == nil {
		t.Errorf("esc: cancelled = %v, done = %v, cmd nil = %v", tm.cancelled, tm.done, cmd == nil)
	}
}

func TestSelectModel(t *testing.T) {
	t.Parallel()

	choices := []Choice{
		{Value: "ENG", Detail: "Engineering"},
		{Value: "OPS", Detail: "Operations"},
	}

	tests := []struct {
		name string
		keys []string
		want SelectResult
	}{
		{"enter picks first", []string{"enter"}, SelectResult{Value: "ENG", Index: 0}},
		{"down then enter", []string{"j", "enter"}, SelectResult{Value: "OPS", Index: 1}},
		{"esc cancels", []string{"esc"}, SelectResult{Cancelled: true}},
		{"q cancels", []string{"q"}, SelectResult{Cancelled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var m tea.Model = newSelectModel("Default team", choices)
			for _, k := range tt.keys {
				m, _ = m.Update(keyPress(k))
			}
			if got := m.(selectModel).result(choices); got != tt.want {
				t.Errorf("result = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSelect_EmptyIsCancelled(t *testing.T) {
	t.Parallel()

	res, err := Select("Default team", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cancelled {
		t.Error("empty choice list should be cancelled")
	}
}

// viewText returns the plain-string content of a view.
func viewText(v tea.View) string {
	if s, ok := v.Content.(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}
