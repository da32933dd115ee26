package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/damusix/cv.alonso.network/internal/session"
	"github.com/damusix/cv.alonso.network/internal/types"
	"go.uber.org/zap"
)

// resizeStep is how far ctrl+←/→ moves the split, in percent.
const resizeStep = 5

var modeKeys = map[string]types.Mode{
	"f1": types.ModeScript,
	"f2": types.ModeData,
	"f3": types.ModeStylesheet,
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" || key == "ctrl+q" {
		return m, m.quit()
	}

	if m.showHelp {
		m.showHelp = false
		if err := m.session.Drafts().MarkVisited(); err != nil {
			m.logger.Warn("Failed to store first visit", zap.Error(err))
		}
		return m, nil
	}

	if m.confirmReset {
		m.confirmReset = false
		if strings.EqualFold(key, "y") {
			m.dispatch(session.Reset{}, "Reset to the built-in "+m.session.Mode().Label())
		} else {
			m.status = "Reset cancelled"
		}
		return m, nil
	}

	if mode, ok := modeKeys[key]; ok {
		m.dispatch(session.SwitchMode{Mode: mode}, "Switched to "+mode.Label())
		return m, nil
	}

	switch key {
	case "ctrl+s":
		m.dispatch(session.Apply{}, "Applied "+m.session.Mode().Label())
		return m, nil
	case "ctrl+r":
		m.confirmReset = true
		return m, nil
	case "ctrl+p":
		m.paneOpen = !m.paneOpen
		if err := m.session.Drafts().SetPaneOpen(m.paneOpen); err != nil {
			m.logger.Warn("Failed to store pane state", zap.Error(err))
		}
		m.resize()
		return m, nil
	case "ctrl+left", "ctrl+right":
		m.moveSplit(key == "ctrl+right")
		return m, nil
	case "f12":
		m.showHelp = true
		return m, nil
	}

	return m.edit(msg)
}

func (m *Model) moveSplit(right bool) {
	if !m.paneOpen {
		return
	}
	step := -resizeStep
	if right {
		step = resizeStep
	}
	m.layout = types.Layout{Editor: m.layout.Editor + step}.Clamp()
	if err := m.session.Drafts().SaveLayout(m.layout); err != nil {
		m.logger.Warn("Failed to store layout", zap.Error(err))
	}
	m.resize()
}

// edit passes the key to the textarea and reports content and cursor changes
// to the session.
func (m *Model) edit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.editor.Text()
	cursor := m.editor.Cursor()

	var cmd tea.Cmd
	*m.editor.ta, cmd = m.editor.ta.Update(msg)

	if text := m.editor.Text(); text != before {
		m.status, m.err = "", nil
		m.dispatch(session.Edit{Text: text}, "")
	}
	if c := m.editor.Cursor(); c != cursor {
		m.dispatch(session.MoveCursor{Cursor: c}, "")
	}
	return m, cmd
}
