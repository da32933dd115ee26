package store

import "github.com/damusix/cv.alonso.network/internal/types"

// Storage keys. The draft and cursor keys are per mode, see DraftKey and CursorKey.
const (
	KeyCommitted  = "cv-committed"
	KeyActiveMode = "cv-editor-mode"
	KeyStyles     = "cv-styles"
	KeyLayout     = "cv-split-pane-widths"
	KeyPaneOpen   = "cv-editor-pane-open"
	KeyFirstVisit = "cv-first-visit"

	// Written by earlier versions as two independent keys; migrated into KeyCommitted.
	KeyLegacyCode   = "cv-data-code"
	KeyLegacyResult = "cv-data-result"

	draftPrefix  = "cv-editor-draft-"
	cursorPrefix = "cv-editor-cursor-"
)

// DraftKey is the key of mode's draft slot.
func DraftKey(mode types.Mode) string {
	return draftPrefix + string(mode)
}

// CursorKey is the key of mode's saved cursor.
func CursorKey(mode types.Mode) string {
	return cursorPrefix + string(mode)
}
