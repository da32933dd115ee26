package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent      = lipgloss.Color("#7D56F4")
	muted       = lipgloss.Color("241")
	border      = lipgloss.Color("238")
	destructive = lipgloss.Color("#E5484D")
	success     = lipgloss.Color("#30A46C")
)

// Styles holds the styled components of the editor screen
type Styles struct {
	Header    lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Pane      lipgloss.Style
	Footer    lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Dialog    lipgloss.Style
	Key       lipgloss.Style
}

// DefaultStyles returns the editor styles
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1),

		Tab: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),

		ActiveTab: lipgloss.NewStyle().
			Background(accent).
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true).
			Padding(0, 1),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border),

		Footer: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),

		Muted: lipgloss.NewStyle().
			Foreground(muted),

		Error: lipgloss.NewStyle().
			Foreground(destructive).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(success).
			Bold(true),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2),

		Key: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
	}
}
