package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var helpKeys = [][2]string{
	{"F1 / F2 / F3", "edit as JS, JSON or CSS"},
	{"ctrl+s", "apply the editor content"},
	{"ctrl+r", "reset the current mode to the built-in content"},
	{"ctrl+p", "show or hide the preview"},
	{"ctrl+← / ctrl+→", "resize the split"},
	{"F12", "show this help"},
	{"ctrl+q", "quit"},
}

const helpIntro = `Edit your CV on the left and apply it to see the preview on the right.

Unapplied edits are kept as drafts, one per mode, and survive restarts.
JS mode takes comments and one "return { ... };" statement.`

func (m *Model) helpView() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("Welcome to cvedit"))
	sb.WriteString("\n\n")
	sb.WriteString(helpIntro)
	sb.WriteString("\n\n")
	for _, k := range helpKeys {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			m.styles.Key.Width(18).Render(k[0]),
			k[1]))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("Press any key to start."))
	return m.styles.Dialog.Render(sb.String())
}

func (m *Model) confirmView() string {
	what := "the committed CV data and every data draft"
	if !m.session.Mode().DataBearing() {
		what = "the stylesheet"
	}
	body := m.styles.Error.Render("Reset "+m.session.Mode().Label()+"?") +
		"\n\nThis replaces " + what + " with the built-in version.\nIt cannot be undone.\n\n" +
		m.styles.Muted.Render("y to confirm, any other key to cancel")
	return m.styles.Dialog.Render(body)
}
