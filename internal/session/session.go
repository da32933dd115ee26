// Package session runs one editing session: it populates the editor on open,
// applies and resets content, switches modes, and autosaves drafts.
//
// A Session is single-threaded. Every operation is expected to be called from
// one host loop; the only background work is the autosave timer, which posts
// a Ticket on AutosaveDue and never touches session state itself.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/damusix/cv.alonso.network/internal/assets"
	"github.com/damusix/cv.alonso.network/internal/drafts"
	"github.com/damusix/cv.alonso.network/internal/modes"
	"github.com/damusix/cv.alonso.network/internal/schemas"
	"github.com/damusix/cv.alonso.network/internal/store"
	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deps are the collaborators of a session. Store and Editor are required.
type Deps struct {
	Store    store.Store
	Editor   Editor
	Renderer Renderer
	Styles   StyleSink
	Registry *modes.Registry
	// Defaults are loaded from the embedded assets when nil
	Defaults *assets.Defaults
	Logger   *zap.Logger
}

// Options tune a session.
type Options struct {
	// DefaultMode is used when no mode was persisted. Script mode when empty.
	DefaultMode   types.Mode
	AutosaveDelay time.Duration
}

// Session holds everything one editing session needs.
type Session struct {
	id       string
	mode     types.Mode
	drafts   *drafts.Reconciler
	registry *modes.Registry
	defaults *assets.Defaults
	editor   Editor
	renderer Renderer
	styles   StyleSink
	logger   *zap.Logger
	autosave *autosave
	report   drafts.Report
	closed   bool
}

// Open starts a session. It migrates legacy state, selects the persisted
// mode, repairs the committed record if needed, and populates the editor
// with the active mode's draft or committed value.
func Open(ctx context.Context, deps Deps, opts Options) (*Session, error) {
	if deps.Store == nil {
		return nil, errors.New("session requires a store")
	}
	if deps.Editor == nil {
		return nil, errors.New("session requires an editor")
	}
	if opts.DefaultMode == "" {
		opts.DefaultMode = types.ModeScript
	}
	if !opts.DefaultMode.Valid() {
		return nil, fmt.Errorf("invalid default mode %q", opts.DefaultMode)
	}
	if opts.AutosaveDelay <= 0 {
		opts.AutosaveDelay = DefaultAutosaveDelay
	}

	if deps.Defaults == nil {
		d, err := assets.LoadEmbedded(ctx)
		if err != nil {
			return nil, err
		}
		deps.Defaults = d
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if deps.Registry == nil {
		deps.Registry = modes.NewRegistry()
	}
	if deps.Renderer == nil {
		deps.Renderer = nopRenderer{}
	}
	if deps.Styles == nil {
		deps.Styles = nopStyles{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	id := uuid.New().String()
	logger := deps.Logger.With(zap.String("session", id))

	s := &Session{
		id:       id,
		drafts:   drafts.New(deps.Store, deps.Registry, deps.Defaults, logger),
		registry: deps.Registry,
		defaults: deps.Defaults,
		editor:   deps.Editor,
		renderer: deps.Renderer,
		styles:   deps.Styles,
		logger:   logger,
		autosave: newAutosave(opts.AutosaveDelay),
	}
	if err := s.load(opts.DefaultMode); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load(fallback types.Mode) error {
	if _, err := s.drafts.MigrateLegacy(); err != nil {
		return fmt.Errorf("failed to migrate legacy state: %w", err)
	}

	mode, err := s.drafts.ActiveMode(fallback)
	if err != nil {
		return err
	}
	s.mode = mode

	if s.report, err = s.drafts.Verify(); err != nil {
		return fmt.Errorf("failed to verify committed state: %w", err)
	}

	text, drafted, err := s.textFor(mode)
	if err != nil {
		return err
	}
	s.editor.SetText(text)

	cv, err := s.drafts.CurrentResult()
	if err != nil {
		return err
	}
	s.renderer.Render(cv)

	css, err := s.drafts.Styles()
	if err != nil {
		return err
	}
	s.styles.ApplyStyles(css)

	if err := s.restoreCursor(mode); err != nil {
		return err
	}

	s.logger.Info("Session opened",
		zap.String("mode", string(mode)),
		zap.Bool("draft", drafted),
		zap.String("verify", string(s.report.Outcome)))
	return nil
}

// textFor returns mode's draft if there is one, else its committed value.
func (s *Session) textFor(mode types.Mode) (string, bool, error) {
	draft, ok, err := s.drafts.LoadDraft(mode)
	if err != nil || ok {
		return draft, ok, err
	}
	text, err := s.drafts.CommittedValueFor(mode)
	return text, false, err
}

func (s *Session) restoreCursor(mode types.Mode) error {
	c, err := s.drafts.Cursor(mode)
	if err != nil {
		return err
	}
	if c != nil {
		s.editor.SetCursor(*c)
	}
	return nil
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Mode is the active mode.
func (s *Session) Mode() types.Mode { return s.mode }

// VerifyReport is what the load-time check of the committed record found.
func (s *Session) VerifyReport() drafts.Report { return s.report }

// Drafts exposes the reconciler for editor state the session does not own,
// such as layout and the first-visit flag.
func (s *Session) Drafts() *drafts.Reconciler { return s.drafts }

// Document returns the committed CV, or the built-in default.
func (s *Session) Document() (*types.CVData, error) {
	return s.drafts.CurrentResult()
}

// SetMode switches the active mode. The outgoing text is reconciled first.
// The incoming text is the target's draft when present, the stylesheet for
// stylesheet mode, else the committed value converted into the target mode.
// On a conversion failure the previous mode stays active and the editor is
// left untouched.
func (s *Session) SetMode(to types.Mode) error {
	if s.closed {
		return ErrClosed
	}
	if !to.Valid() {
		return fmt.Errorf("unknown mode %q", to)
	}
	from := s.mode
	if to == from {
		return nil
	}

	// The outgoing draft is settled right here, so its timer is no longer needed.
	s.autosave.cancel()
	if err := s.drafts.ReconcileOnSwitch(from, s.editor.Text()); err != nil {
		return err
	}
	if err := s.drafts.SaveCursor(from, s.editor.Cursor()); err != nil {
		return err
	}
	if err := s.drafts.SetActiveMode(to); err != nil {
		return err
	}

	text, err := s.incomingText(from, to)
	if err != nil {
		if revertErr := s.drafts.SetActiveMode(from); revertErr != nil {
			s.logger.Error("Failed to revert active mode", zap.Error(revertErr))
		}
		s.logger.Warn("Mode switch aborted", zap.String("from", string(from)), zap.String("to", string(to)), zap.Error(err))
		return err
	}

	s.mode = to
	s.editor.SetText(text)
	if err := s.restoreCursor(to); err != nil {
		return err
	}
	s.logger.Info("Switched mode", zap.String("from", string(from)), zap.String("to", string(to)))
	return nil
}

func (s *Session) incomingText(from, to types.Mode) (string, error) {
	draft, ok, err := s.drafts.LoadDraft(to)
	if err != nil {
		return "", err
	}
	if ok {
		return draft, nil
	}
	if !to.DataBearing() {
		return s.drafts.Styles()
	}

	state, err := s.drafts.Committed()
	if err != nil {
		return "", err
	}
	if state == nil || state.Mode == to {
		return s.drafts.CommittedValueFor(to)
	}
	text, err := s.registry.Convert(state.Mode, to, state.Code)
	if err != nil {
		return "", &ConversionError{From: from, To: to, Cause: err}
	}
	return text, nil
}

// Apply commits the editor text. Stylesheet text is accepted as is. CV data
// is parsed and validated first; a *modes.ParseError or
// *schemas.ValidationError leaves the store and the view unchanged.
func (s *Session) Apply() error {
	if s.closed {
		return ErrClosed
	}
	return s.apply(s.mode, s.editor.Text())
}

// ApplyText runs Apply on text written in mode. The active mode is left as
// it is; when mode is the active one the editor shows text. On failure text
// is kept as mode's draft.
func (s *Session) ApplyText(mode types.Mode, text string) error {
	if s.closed {
		return ErrClosed
	}
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}
	if mode == s.mode {
		s.autosave.cancel()
		s.editor.SetText(text)
	}
	if err := s.apply(mode, text); err != nil {
		if _, derr := s.drafts.Reconcile(mode, text); derr != nil {
			return errors.Join(err, derr)
		}
		return err
	}
	return nil
}

func (s *Session) apply(mode types.Mode, text string) error {
	if !mode.DataBearing() {
		if err := s.drafts.CommitStyles(text); err != nil {
			return err
		}
		s.settle(mode)
		if err := s.drafts.ClearDraft(mode); err != nil {
			return err
		}
		s.styles.ApplyStyles(text)
		s.logger.Info("Applied stylesheet", zap.Int("bytes", len(text)))
		return nil
	}

	cv, err := s.check(mode, text)
	if err != nil {
		return err
	}
	if err := s.commit(mode, text, cv); err != nil {
		return err
	}
	s.settle(mode)
	if err := s.drafts.ClearDraft(mode); err != nil {
		return err
	}
	s.renderer.Render(cv)
	return nil
}

// settle drops the pending autosave once mode's text is committed.
func (s *Session) settle(mode types.Mode) {
	if mode == s.mode {
		s.autosave.cancel()
	}
}

// check runs text through the parse and validate steps of Apply.
func (s *Session) check(mode types.Mode, text string) (*types.CVData, error) {
	cv, err := s.registry.Parse(mode, text)
	if err != nil {
		return nil, err
	}
	return schemas.Validate(cv)
}

func (s *Session) commit(mode types.Mode, text string, cv *types.CVData) error {
	if err := s.drafts.Commit(mode, text, cv); err != nil {
		return err
	}
	s.logger.Info("Applied CV data", zap.String("mode", string(mode)), zap.Int("sections", len(cv.Sections)))
	return nil
}

// Reset restores the built-in content of the active mode and commits it.
// For the data modes the committed record and every data draft are dropped
// first; for stylesheet mode the stylesheet draft is dropped.
func (s *Session) Reset() error {
	if s.closed {
		return ErrClosed
	}
	s.autosave.cancel()

	if !s.mode.DataBearing() {
		css := s.defaults.Stylesheet
		if err := s.drafts.CommitStyles(css); err != nil {
			return err
		}
		if err := s.drafts.ClearDraft(s.mode); err != nil {
			return err
		}
		s.editor.SetText(css)
		s.styles.ApplyStyles(css)
		s.logger.Info("Reset stylesheet")
		return nil
	}

	cv := s.defaults.Document()
	if _, err := schemas.Validate(cv); err != nil {
		return fmt.Errorf("built-in document is invalid: %w", err)
	}
	text, err := s.registry.DefaultText(s.mode, cv)
	if err != nil {
		return err
	}

	if err := s.drafts.ClearCommitted(); err != nil {
		return err
	}
	if err := s.drafts.ClearDrafts(dataModes()...); err != nil {
		return err
	}
	if err := s.commit(s.mode, text, cv); err != nil {
		return err
	}
	s.editor.SetText(text)
	s.renderer.Render(cv)
	s.logger.Info("Reset CV data", zap.String("mode", string(s.mode)))
	return nil
}

// SaveCursor persists the editor cursor for the active mode.
func (s *Session) SaveCursor() error {
	if s.closed {
		return ErrClosed
	}
	return s.drafts.SaveCursor(s.mode, s.editor.Cursor())
}

// Close cancels any pending autosave. It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	if s.autosave.cancel() {
		s.logger.Debug("Cancelled pending autosave on close")
	}
	close(s.autosave.done)
	s.closed = true
	s.logger.Info("Session closed")
	return nil
}

func dataModes() []types.Mode {
	var out []types.Mode
	for _, m := range types.AllModes {
		if m.DataBearing() {
			out = append(out, m)
		}
	}
	return out
}
