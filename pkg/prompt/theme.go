package prompt

import "github.com/charmbracelet/lipgloss"

// Theme styles the messages a session prints between prompts.
type Theme struct {
	Error   lipgloss.Style
	Success lipgloss.Style
}

// DefaultTheme colours errors red and confirmations green.
func DefaultTheme() Theme {
	return Theme{
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#5BD16B")),
	}
}

// PlainTheme renders text unchanged.
func PlainTheme() Theme {
	return Theme{
		Error:   lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
	}
}
