package drafts

import (
	"strconv"

	"github.com/damusix/cv.alonso.network/internal/store"
	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Styles returns the saved stylesheet, or the built-in one.
func (r *Reconciler) Styles() (string, error) {
	css, ok, err := r.store.Get(store.KeyStyles)
	if err != nil {
		return "", err
	}
	if !ok {
		return r.defaults.Stylesheet, nil
	}
	return css, nil
}

// HasCustomStyles reports whether a stylesheet was ever saved.
func (r *Reconciler) HasCustomStyles() (bool, error) {
	_, ok, err := r.store.Get(store.KeyStyles)
	return ok, err
}

// CommitStyles saves css as the committed stylesheet.
func (r *Reconciler) CommitStyles(css string) error {
	return r.store.Set(store.KeyStyles, css)
}

// ClearStyles forgets the saved stylesheet.
func (r *Reconciler) ClearStyles() error {
	return r.store.Remove(store.KeyStyles)
}

// ActiveMode returns the persisted mode, or fallback when none (or an unknown
// one) is stored.
func (r *Reconciler) ActiveMode(fallback types.Mode) (types.Mode, error) {
	v, ok, err := r.store.Get(store.KeyActiveMode)
	if err != nil {
		return "", err
	}
	mode := types.Mode(v)
	if !ok || !mode.Valid() {
		return fallback, nil
	}
	return mode, nil
}

// SetActiveMode persists the active mode selection.
func (r *Reconciler) SetActiveMode(mode types.Mode) error {
	return r.store.Set(store.KeyActiveMode, string(mode))
}

// Cursor returns mode's saved cursor. Unreadable entries are treated as absent.
func (r *Reconciler) Cursor(mode types.Mode) (*types.CursorState, error) {
	var c types.CursorState
	ok, err := r.getJSON(store.CursorKey(mode), &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// SaveCursor stores mode's cursor.
func (r *Reconciler) SaveCursor(mode types.Mode, c types.CursorState) error {
	return r.setJSON(store.CursorKey(mode), c)
}

// Layout returns the saved editor/preview split.
func (r *Reconciler) Layout() (types.Layout, error) {
	l := types.DefaultLayout
	ok, err := r.getJSON(store.KeyLayout, &l)
	if err != nil || !ok {
		return types.DefaultLayout, err
	}
	return l.Clamp(), nil
}

// SaveLayout stores the editor/preview split.
func (r *Reconciler) SaveLayout(l types.Layout) error {
	return r.setJSON(store.KeyLayout, l.Clamp())
}

// PaneOpen reports whether the preview pane is shown. Defaults to true.
func (r *Reconciler) PaneOpen() (bool, error) {
	v, ok, err := r.store.Get(store.KeyPaneOpen)
	if err != nil || !ok {
		return true, err
	}
	open, perr := strconv.ParseBool(v)
	if perr != nil {
		return true, nil
	}
	return open, nil
}

// SetPaneOpen stores the preview pane visibility.
func (r *Reconciler) SetPaneOpen(open bool) error {
	return r.store.Set(store.KeyPaneOpen, strconv.FormatBool(open))
}

// FirstVisit reports whether the help overlay has never been dismissed.
func (r *Reconciler) FirstVisit() (bool, error) {
	_, ok, err := r.store.Get(store.KeyFirstVisit)
	return !ok, err
}

// MarkVisited records that the help overlay was dismissed.
func (r *Reconciler) MarkVisited() error {
	return r.store.Set(store.KeyFirstVisit, "true")
}

func (r *Reconciler) getJSON(key string, v any) (bool, error) {
	raw, ok, err := r.store.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		r.logger.Debug("Ignoring unreadable editor state", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (r *Reconciler) setJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.store.Set(key, string(b))
}

// Status summarizes the stored state.
type Status struct {
	ActiveMode    types.Mode
	CommittedMode types.Mode
	HasResult     bool
	Drafts        map[types.Mode]bool
	CustomStyles  bool
}

// Status reads a summary of everything stored. fallback is reported as the
// active mode when none is persisted.
func (r *Reconciler) Status(fallback types.Mode) (*Status, error) {
	active, err := r.ActiveMode(fallback)
	if err != nil {
		return nil, err
	}
	st := &Status{ActiveMode: active, Drafts: make(map[types.Mode]bool, len(types.AllModes))}

	committed, err := r.Committed()
	if err != nil {
		return nil, err
	}
	if committed != nil {
		st.CommittedMode = committed.Mode
		st.HasResult = committed.Result != nil
	}

	for _, m := range types.AllModes {
		if st.Drafts[m], err = r.HasDraft(m); err != nil {
			return nil, err
		}
	}

	if st.CustomStyles, err = r.HasCustomStyles(); err != nil {
		return nil, err
	}
	return st, nil
}
