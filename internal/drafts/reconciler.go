// Package drafts keeps the committed (code, result) pair, the per-mode drafts
// and the small pieces of editor state in the persistent store, and decides
// when a draft exists.
package drafts

import (
	"fmt"

	"github.com/damusix/cv.alonso.network/internal/assets"
	"github.com/damusix/cv.alonso.network/internal/modes"
	"github.com/damusix/cv.alonso.network/internal/schemas"
	"github.com/damusix/cv.alonso.network/internal/store"
	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Reconciler reads and writes editor state through a store.Store. It holds no
// state of its own, so every answer reflects what is stored right now.
type Reconciler struct {
	store    store.Store
	registry *modes.Registry
	defaults *assets.Defaults
	logger   *zap.Logger
}

// New creates a Reconciler.
func New(st store.Store, registry *modes.Registry, defaults *assets.Defaults, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:    st,
		registry: registry,
		defaults: defaults,
		logger:   logger,
	}
}

// record is the stored form of types.CommittedState. Result stays raw so its
// shape can be checked before decoding.
type record struct {
	Mode   types.Mode      `json:"mode"`
	Code   string          `json:"code"`
	Result json.RawMessage `json:"result,omitempty"`
}

// decodeRecord returns nil when the record itself is unreadable. A result
// that fails the shape check is dropped and reported while the code is kept.
func decodeRecord(raw string) (*types.CommittedState, *CorruptionError) {
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, &CorruptionError{Key: store.KeyCommitted, Reason: "record is not valid JSON", Cause: err}
	}
	if !rec.Mode.DataBearing() {
		return nil, &CorruptionError{Key: store.KeyCommitted, Reason: fmt.Sprintf("record has unusable mode %q", rec.Mode)}
	}

	state := &types.CommittedState{Mode: rec.Mode, Code: rec.Code}
	if len(rec.Result) == 0 || string(rec.Result) == "null" {
		return state, nil
	}
	if err := schemas.ValidateCVJSON(string(rec.Result)); err != nil {
		return state, &CorruptionError{Key: store.KeyCommitted, Reason: "stored result has the wrong shape", Cause: err}
	}
	var cv types.CVData
	if err := json.Unmarshal(rec.Result, &cv); err != nil {
		return state, &CorruptionError{Key: store.KeyCommitted, Reason: "stored result cannot be decoded", Cause: err}
	}
	state.Result = &cv
	return state, nil
}

// Committed returns the committed state, or nil when nothing was applied yet.
func (r *Reconciler) Committed() (*types.CommittedState, error) {
	raw, ok, err := r.store.Get(store.KeyCommitted)
	if err != nil || !ok {
		return nil, err
	}
	state, corrupt := decodeRecord(raw)
	if corrupt != nil {
		r.logger.Warn("Ignoring corrupt committed state", zap.Error(corrupt))
	}
	return state, nil
}

// Commit replaces the committed state for mode. Code and result are written as
// one record so readers see both or neither.
func (r *Reconciler) Commit(mode types.Mode, code string, result *types.CVData) error {
	if !mode.DataBearing() {
		return fmt.Errorf("cannot commit CV data in %s mode: %w", mode, modes.ErrNotDataBearing)
	}
	if result == nil {
		return fmt.Errorf("cannot commit without a result")
	}
	if err := r.writeRecord(&types.CommittedState{Mode: mode, Code: code, Result: result}); err != nil {
		return err
	}
	r.logger.Debug("Committed CV data", zap.String("mode", string(mode)), zap.Int("code_bytes", len(code)))
	return nil
}

func (r *Reconciler) writeRecord(state *types.CommittedState) error {
	text, err := modes.Serialize(state)
	if err != nil {
		return fmt.Errorf("failed to serialize committed state: %w", err)
	}
	return r.store.Set(store.KeyCommitted, text)
}

// ClearCommitted removes the committed CV data, including legacy keys.
func (r *Reconciler) ClearCommitted() error {
	for _, key := range []string{store.KeyCommitted, store.KeyLegacyCode, store.KeyLegacyResult} {
		if err := r.store.Remove(key); err != nil {
			return err
		}
	}
	return nil
}

// CurrentResult is the CV the document view should show: the committed
// result, else the committed code re-read, else the built-in default.
func (r *Reconciler) CurrentResult() (*types.CVData, error) {
	state, err := r.Committed()
	if err != nil {
		return nil, err
	}
	return r.resultOf(state), nil
}

func (r *Reconciler) resultOf(state *types.CommittedState) *types.CVData {
	if state == nil {
		return r.defaults.Document()
	}
	if state.Result != nil {
		return state.Result
	}
	cv, err := r.registry.Parse(state.Mode, state.Code)
	if err != nil {
		r.logger.Debug("Committed code unreadable, using default document", zap.Error(err))
		return r.defaults.Document()
	}
	return cv
}

// CommittedValueFor is the text mode shows when it has no draft. For the data
// modes that is the committed code when it was written in mode, else the
// default text generated from the current result. For the stylesheet mode it
// is the saved stylesheet or the built-in one.
func (r *Reconciler) CommittedValueFor(mode types.Mode) (string, error) {
	if mode == types.ModeStylesheet {
		return r.Styles()
	}
	state, err := r.Committed()
	if err != nil {
		return "", err
	}
	if state != nil && state.Mode == mode {
		return state.Code, nil
	}
	return r.registry.DefaultText(mode, r.resultOf(state))
}

// SaveDraft stores text as mode's draft.
func (r *Reconciler) SaveDraft(mode types.Mode, text string) error {
	return r.store.Set(store.DraftKey(mode), text)
}

// LoadDraft returns mode's draft, if any.
func (r *Reconciler) LoadDraft(mode types.Mode) (string, bool, error) {
	return r.store.Get(store.DraftKey(mode))
}

// ClearDraft removes mode's draft.
func (r *Reconciler) ClearDraft(mode types.Mode) error {
	return r.store.Remove(store.DraftKey(mode))
}

// ClearDrafts removes the drafts of every listed mode.
func (r *Reconciler) ClearDrafts(modeList ...types.Mode) error {
	for _, m := range modeList {
		if err := r.ClearDraft(m); err != nil {
			return err
		}
	}
	return nil
}

// HasDraft reports whether mode has a draft.
func (r *Reconciler) HasDraft(mode types.Mode) (bool, error) {
	_, ok, err := r.store.Get(store.DraftKey(mode))
	return ok, err
}

// Reconcile saves text as mode's draft when it differs from the committed
// value and clears the draft when it matches. It reports whether a draft
// exists afterwards.
func (r *Reconciler) Reconcile(mode types.Mode, text string) (bool, error) {
	committed, err := r.CommittedValueFor(mode)
	if err != nil {
		return false, err
	}
	if text == committed {
		return false, r.ClearDraft(mode)
	}
	return true, r.SaveDraft(mode, text)
}

// ReconcileOnSwitch settles the outgoing mode's draft before a mode change.
func (r *Reconciler) ReconcileOnSwitch(from types.Mode, currentText string) error {
	drafted, err := r.Reconcile(from, currentText)
	if err != nil {
		return fmt.Errorf("failed to reconcile %s draft: %w", from, err)
	}
	r.logger.Debug("Reconciled draft on mode switch", zap.String("mode", string(from)), zap.Bool("draft", drafted))
	return nil
}
