// Package styles provides shared lipgloss styles for terminal output.
//
// Styles always render color. The output printer downsamples or strips
// the escape sequences to what the terminal supports.
package styles

import (
	"image/color"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
)

// Palette
var (
	// Primary is the main accent color (cyan/teal)
	Primary color.Color = lipgloss.Color("62")

	// Accent highlights the active item in prompts (pink)
	Accent color.Color = lipgloss.Color("212")

	Success color.Color = lipgloss.Color("82")
	Error   color.Color = lipgloss.Color("196")
	Warning color.Color = lipgloss.Color("214")

	// Muted is used for secondary text (gray)
	Muted color.Color = lipgloss.Color("240")

	Info color.Color = lipgloss.Color("244")
)

// ANSI base colors, so the terminal theme decides the exact shade.
var (
	red       = lipgloss.Color("1")
	green     = lipgloss.Color("2")
	yellow    = lipgloss.Color("3")
	blue      = lipgloss.Color("4")
	magenta   = lipgloss.Color("5")
	gray      = lipgloss.Color("8")
	plainText = lipgloss.NewStyle()
)

var (
	Bold         = lipgloss.NewStyle().Bold(true)
	PrimaryStyle = lipgloss.NewStyle().Foreground(Primary)
	AccentStyle  = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)

	// InfoStyle applies the info color with italic
	InfoStyle = lipgloss.NewStyle().
			Foreground(Info).
			Italic(true)

	// HighlightStyle marks fuzzy-matched characters
	HighlightStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true).
			Underline(true)
)

// Priority returns the style for a priority level (1 = Urgent .. 4 = Low).
func Priority(level int) lipgloss.Style {
	switch level {
	case 1:
		return lipgloss.NewStyle().Foreground(red).Bold(true)
	case 2:
		return lipgloss.NewStyle().Foreground(yellow).Bold(true)
	case 3:
		return lipgloss.NewStyle().Foreground(blue)
	case 4:
		return lipgloss.NewStyle().Foreground(gray)
	default:
		return plainText
	}
}

// Status returns the style for a workflow state. The state's own hex color
// wins; without one the name decides.
func Status(name, hex string) lipgloss.Style {
	if c, ok := ParseHex(hex); ok {
		return lipgloss.NewStyle().Foreground(c)
	}

	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "done", "complete", "closed"):
		return lipgloss.NewStyle().Foreground(green)
	case containsAny(lower, "progress", "started"):
		return lipgloss.NewStyle().Foreground(blue)
	case strings.Contains(lower, "review"):
		return lipgloss.NewStyle().Foreground(magenta)
	case containsAny(lower, "blocked", "canceled", "cancelled"):
		return lipgloss.NewStyle().Foreground(red)
	case containsAny(lower, "backlog", "triage"):
		return lipgloss.NewStyle().Foreground(gray)
	default:
		return plainText
	}
}

// ParseHex parses "#rrggbb" (the leading # is optional).
func ParseHex(hex string) (color.Color, bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return nil, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
