package ui

import "github.com/charmbracelet/lipgloss"

// Theme collects the lipgloss styles used across the views.
type Theme struct {
	Header       lipgloss.Style
	Pane         lipgloss.Style
	PaneFocused  lipgloss.Style
	Selected     lipgloss.Style
	Normal       lipgloss.Style
	Dim          lipgloss.Style
	IndexBadge   lipgloss.Style
	Note         lipgloss.Style
	StatusOK     lipgloss.Style
	StatusError  lipgloss.Style
	SearchPrompt lipgloss.Style
}

// DefaultTheme returns the default color scheme.
func DefaultTheme() Theme {
	return Theme{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1),
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		PaneFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")),
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
		IndexBadge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		Note: lipgloss.NewStyle().
			Foreground(lipgloss.Color("109")).
			Italic(true),
		StatusOK: lipgloss.NewStyle().
			Foreground(lipgloss.Color("35")),
		StatusError: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		SearchPrompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true),
	}
}
