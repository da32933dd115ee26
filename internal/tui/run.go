package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the editor until the user quits or ctx is done.
func Run(ctx context.Context, m *Model) error {
	defer m.session.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
