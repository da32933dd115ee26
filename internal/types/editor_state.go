package types

// CommittedState is the last successfully applied (code, result) pair.
// Mode names the representation Code is written in. Result is nil only for
// records migrated from storage that never kept a result.
type CommittedState struct {
	Mode   Mode    `json:"mode"`
	Code   string  `json:"code"`
	Result *CVData `json:"result,omitempty"`
}

// Position is a zero-based line/column location in the editing surface
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// CursorState is best-effort UI state restored when a mode is re-entered
type CursorState struct {
	Position     Position `json:"position"`
	ScrollOffset int      `json:"scrollOffset"`
}

// Layout is the editor/preview split, in percent of the available width
type Layout struct {
	Editor  int `json:"editor"`
	Preview int `json:"preview"`
}

// DefaultLayout splits the screen evenly.
var DefaultLayout = Layout{Editor: 50, Preview: 50}

// Clamp keeps both panes at least 20% wide and summing to 100.
func (l Layout) Clamp() Layout {
	e := l.Editor
	if e < 20 {
		e = 20
	}
	if e > 80 {
		e = 80
	}
	return Layout{Editor: e, Preview: 100 - e}
}
