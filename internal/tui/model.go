// Package tui is the terminal editing surface: a text editor next to a
// rendered preview of the committed CV, driven through a session.Session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/damusix/cv.alonso.network/internal/assets"
	"github.com/damusix/cv.alonso.network/internal/modes"
	"github.com/damusix/cv.alonso.network/internal/schemas"
	"github.com/damusix/cv.alonso.network/internal/session"
	"github.com/damusix/cv.alonso.network/internal/store"
	"github.com/damusix/cv.alonso.network/internal/types"
	"go.uber.org/zap"
)

// Deps are the collaborators of the editor screen.
type Deps struct {
	Store    store.Store
	Registry *modes.Registry
	Defaults *assets.Defaults
	Logger   *zap.Logger
}

// Options tune the editor screen.
type Options struct {
	Session session.Options
	// GlamourStyle is passed to the preview renderer; empty picks one from the terminal
	GlamourStyle string
}

// autosaveMsg carries an autosave ticket into the update loop.
type autosaveMsg session.Ticket

// Model is the bubbletea model of the editor screen.
type Model struct {
	session *session.Session
	editor  *textEditor
	preview *preview
	styles  Styles
	logger  *zap.Logger

	width, height int
	layout        types.Layout
	paneOpen      bool
	showHelp      bool
	confirmReset  bool
	drafts        map[types.Mode]bool

	status string
	err    error
}

// New opens an editing session bound to a textarea and a preview pane.
func New(ctx context.Context, deps Deps, opts Options) (*Model, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Model{
		editor:  &textEditor{ta: newTextArea()},
		preview: newPreview(opts.GlamourStyle, logger),
		styles:  DefaultStyles(),
		logger:  logger,
		drafts:  make(map[types.Mode]bool, len(types.AllModes)),
	}

	s, err := session.Open(ctx, session.Deps{
		Store:    deps.Store,
		Editor:   m.editor,
		Renderer: m.preview,
		Styles:   m.preview,
		Registry: deps.Registry,
		Defaults: deps.Defaults,
		Logger:   logger,
	}, opts.Session)
	if err != nil {
		return nil, err
	}
	m.session = s

	if err := m.loadLayout(); err != nil {
		_ = s.Close()
		return nil, err
	}
	m.refreshDrafts()
	if r := s.VerifyReport(); r.Repaired() {
		m.status = "Stored CV code was repaired from the saved CV"
	}
	return m, nil
}

func (m *Model) loadLayout() error {
	st := m.session.Drafts()
	var err error
	if m.layout, err = st.Layout(); err != nil {
		return err
	}
	if m.paneOpen, err = st.PaneOpen(); err != nil {
		return err
	}
	if m.showHelp, err = st.FirstVisit(); err != nil {
		return err
	}
	return nil
}

// Session returns the session driven by the screen.
func (m *Model) Session() *session.Session {
	return m.session
}

// waitForAutosave listens for the next ticket until the session closes.
func waitForAutosave(s *session.Session) tea.Cmd {
	due, done := s.AutosaveDue(), s.Done()
	return func() tea.Msg {
		select {
		case t := <-due:
			return autosaveMsg(t)
		case <-done:
			return nil
		}
	}
}

// Init starts the cursor blink and the autosave listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForAutosave(m.session))
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case autosaveMsg:
		m.dispatch(session.AutosaveTick{Ticket: session.Ticket(msg)}, "")
		return m, waitForAutosave(m.session)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	*m.editor.ta, cmd = m.editor.ta.Update(msg)
	return m, cmd
}

// dispatch runs a command and records the outcome in the status line.
func (m *Model) dispatch(cmd session.Command, okStatus string) bool {
	err := m.session.Dispatch(cmd)
	m.refreshDrafts()
	if err != nil {
		m.err = err
		m.status = ""
		m.logger.Debug("Command failed", zap.String("command", fmt.Sprintf("%T", cmd)), zap.Error(err))
		return false
	}
	if okStatus != "" {
		m.err = nil
		m.status = okStatus
	}
	return true
}

func (m *Model) refreshDrafts() {
	for _, mode := range types.AllModes {
		has, err := m.session.Drafts().HasDraft(mode)
		if err != nil {
			m.logger.Warn("Failed to read draft state", zap.Error(err))
			continue
		}
		m.drafts[mode] = has
	}
}

// quit settles the session before the program exits.
func (m *Model) quit() tea.Cmd {
	if err := m.session.SaveCursor(); err != nil {
		m.logger.Warn("Failed to save cursor", zap.Error(err))
	}
	if err := m.session.Close(); err != nil {
		m.logger.Warn("Failed to close session", zap.Error(err))
	}
	return tea.Quit
}

const (
	headerHeight = 1
	footerHeight = 2
	// rounded border on each side
	frame = 2
)

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	bodyHeight := max(m.height-headerHeight-footerHeight-frame, 1)

	editorWidth := m.width
	if m.paneOpen {
		editorWidth = m.width * m.layout.Editor / 100
		previewWidth := m.width - editorWidth
		m.preview.resize(max(previewWidth-frame, 1), bodyHeight)
	}
	m.editor.ta.SetWidth(max(editorWidth-frame, 1))
	m.editor.ta.SetHeight(bodyHeight)
}

// View renders the screen.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading…"
	}
	if m.showHelp {
		return m.center(m.helpView())
	}
	if m.confirmReset {
		return m.center(m.confirmView())
	}

	editor := m.styles.Pane.Render(m.editor.ta.View())
	body := editor
	if m.paneOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top, editor, m.styles.Pane.Render(m.preview.vp.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), body, m.footerView())
}

func (m *Model) center(s string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

func (m *Model) headerView() string {
	tabs := make([]string, 0, len(types.AllModes))
	for i, mode := range types.AllModes {
		label := fmt.Sprintf("F%d %s", i+1, mode.Label())
		if m.drafts[mode] {
			label += " •"
		}
		style := m.styles.Tab
		if mode == m.session.Mode() {
			style = m.styles.ActiveTab
		}
		tabs = append(tabs, style.Render(label))
	}
	title := m.styles.Header.Render("cvedit")
	right := ""
	if m.paneOpen {
		right = m.styles.Muted.Render(m.preview.title())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, append([]string{title}, append(tabs, "  ", right)...)...)
}

func (m *Model) footerView() string {
	var line string
	switch {
	case m.err != nil:
		line = m.styles.Error.Render(firstLine(errorText(m.err)))
	case m.status != "":
		line = m.styles.Success.Render(m.status)
	case m.session.AutosavePending():
		line = m.styles.Muted.Render("Editing…")
	default:
		line = m.styles.Muted.Render("Saved")
	}
	keys := m.styles.Muted.Render("ctrl+s apply · ctrl+r reset · ctrl+p preview · ctrl+←/→ resize · F12 help · ctrl+q quit")
	return m.styles.Footer.Render(line + "\n" + keys)
}

// errorText lists every validation problem on one line and keeps other
// errors as they are.
func errorText(err error) string {
	var ve *schemas.ValidationError
	if errors.As(err, &ve) {
		parts := make([]string, 0, len(ve.Errors))
		for _, fe := range ve.Errors {
			parts = append(parts, fe.Field+": "+fe.Message)
		}
		return "Validation failed: " + strings.Join(parts, "; ")
	}
	return err.Error()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
