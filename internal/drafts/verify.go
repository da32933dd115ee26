package drafts

import (
	"github.com/damusix/cv.alonso.network/internal/schemas"
	"github.com/damusix/cv.alonso.network/internal/store"
	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
)

// Outcome is the result of checking the committed record on load.
type Outcome string

const (
	// OutcomeEmpty: nothing committed yet
	OutcomeEmpty Outcome = "empty"
	// OutcomeUnchecked: code stored without a result; the code is trusted
	OutcomeUnchecked Outcome = "unchecked"
	// OutcomeTrusted: code re-derives the stored result and is kept verbatim
	OutcomeTrusted Outcome = "trusted"
	// OutcomeRepairedMismatch: code derived a different value; regenerated from the result
	OutcomeRepairedMismatch Outcome = "repaired-mismatch"
	// OutcomeRepairedUnreadable: code did not parse; regenerated from the result
	OutcomeRepairedUnreadable Outcome = "repaired-unreadable"
	// OutcomeDiscarded: the record itself was unreadable and was removed
	OutcomeDiscarded Outcome = "discarded"
)

// Report describes what Verify found. Code is the committed code after any repair.
type Report struct {
	Mode    types.Mode
	Outcome Outcome
	Code    string
}

// Repaired reports whether Verify rewrote or removed stored state.
func (r Report) Repaired() bool {
	return r.Outcome == OutcomeRepairedMismatch || r.Outcome == OutcomeRepairedUnreadable || r.Outcome == OutcomeDiscarded
}

// equalCV treats nil and empty slices as equal, matching what a serialize and
// parse cycle preserves.
func equalCV(a, b *types.CVData) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// Verify checks the committed record once, at load. The stored result is the
// ground truth: when the stored code is unreadable or derives a different
// value, the code is regenerated from the result and written back.
func (r *Reconciler) Verify() (Report, error) {
	raw, ok, err := r.store.Get(store.KeyCommitted)
	if err != nil {
		return Report{}, err
	}
	if !ok {
		return Report{Outcome: OutcomeEmpty}, nil
	}

	state, corrupt := decodeRecord(raw)
	if state == nil {
		r.logger.Warn("Discarding unreadable committed state", zap.Error(corrupt))
		if err := r.store.Remove(store.KeyCommitted); err != nil {
			return Report{}, err
		}
		return Report{Outcome: OutcomeDiscarded}, nil
	}

	if corrupt != nil {
		// Keep the code; there is nothing left to check it against.
		r.logger.Warn("Dropping corrupt committed result", zap.Error(corrupt))
		if err := r.writeRecord(state); err != nil {
			return Report{}, err
		}
	}
	if state.Result == nil {
		return Report{Mode: state.Mode, Outcome: OutcomeUnchecked, Code: state.Code}, nil
	}

	derived, parseErr := r.registry.Parse(state.Mode, state.Code)
	if parseErr == nil && equalCV(derived, state.Result) {
		return Report{Mode: state.Mode, Outcome: OutcomeTrusted, Code: state.Code}, nil
	}

	outcome := OutcomeRepairedMismatch
	problem := &CorruptionError{Key: store.KeyCommitted, Reason: "stored code does not reproduce the stored result"}
	if parseErr != nil {
		outcome = OutcomeRepairedUnreadable
		problem = &CorruptionError{Key: store.KeyCommitted, Reason: "stored code is unreadable", Cause: parseErr}
	}

	code, err := r.registry.DefaultText(state.Mode, state.Result)
	if err != nil {
		return Report{}, err
	}
	state.Code = code
	if err := r.writeRecord(state); err != nil {
		return Report{}, err
	}

	r.logger.Warn("Repaired committed code from stored result",
		zap.String("mode", string(state.Mode)),
		zap.String("outcome", string(outcome)),
		zap.Error(problem))

	return Report{Mode: state.Mode, Outcome: outcome, Code: code}, nil
}

// MigrateLegacy folds the separate code/result keys written by earlier
// versions into the single committed record. It does nothing when a record
// already exists or there is nothing to migrate.
func (r *Reconciler) MigrateLegacy() (bool, error) {
	if _, ok, err := r.store.Get(store.KeyCommitted); err != nil || ok {
		return false, err
	}
	code, hasCode, err := r.store.Get(store.KeyLegacyCode)
	if err != nil {
		return false, err
	}
	resultRaw, hasResult, err := r.store.Get(store.KeyLegacyResult)
	if err != nil {
		return false, err
	}
	if !hasCode && !hasResult {
		return false, nil
	}

	mode, err := r.ActiveMode(types.ModeScript)
	if err != nil {
		return false, err
	}
	if !mode.DataBearing() {
		mode = types.ModeScript
	}

	state := &types.CommittedState{Mode: mode, Code: code}
	if hasResult {
		var cv types.CVData
		switch {
		case schemas.ValidateCVJSON(resultRaw) != nil:
			r.logger.Warn("Legacy result has the wrong shape, migrating code only")
		case json.Unmarshal([]byte(resultRaw), &cv) != nil:
			r.logger.Warn("Legacy result cannot be decoded, migrating code only")
		default:
			state.Result = &cv
		}
	}

	switch {
	case !hasCode && state.Result == nil:
		// Only an unusable result was stored; nothing worth keeping.
		return r.removeLegacy()
	case !hasCode:
		if state.Code, err = r.registry.DefaultText(mode, state.Result); err != nil {
			return false, err
		}
	}

	if err := r.writeRecord(state); err != nil {
		return false, err
	}
	if _, err := r.removeLegacy(); err != nil {
		return false, err
	}

	r.logger.Info("Migrated legacy committed state", zap.String("mode", string(mode)), zap.Bool("result", state.Result != nil))
	return true, nil
}

func (r *Reconciler) removeLegacy() (bool, error) {
	for _, key := range []string{store.KeyLegacyCode, store.KeyLegacyResult} {
		if err := r.store.Remove(key); err != nil {
			return false, err
		}
	}
	return false, nil
}
