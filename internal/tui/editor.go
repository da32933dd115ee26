package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/damusix/cv.alonso.network/internal/types"
)

// textEditor adapts a textarea to session.Editor. The textarea does not
// expose its scroll position, so the restored offset is carried as is.
type textEditor struct {
	ta     *textarea.Model
	scroll int
}

func newTextArea() *textarea.Model {
	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.MaxWidth = 0
	ta.Focus()
	return &ta
}

func (e *textEditor) Text() string {
	return e.ta.Value()
}

func (e *textEditor) SetText(text string) {
	e.ta.SetValue(text)
}

func (e *textEditor) Cursor() types.CursorState {
	li := e.ta.LineInfo()
	return types.CursorState{
		Position:     types.Position{Line: e.ta.Line(), Column: li.StartColumn + li.ColumnOffset},
		ScrollOffset: e.scroll,
	}
}

func (e *textEditor) SetCursor(c types.CursorState) {
	line := min(max(c.Position.Line, 0), e.ta.LineCount()-1)

	// CursorUp and CursorDown move by visual row; bound the walk by the text size.
	for steps := e.ta.Length() + 1; e.ta.Line() > line && steps > 0; steps-- {
		e.ta.CursorUp()
	}
	for steps := e.ta.Length() + 1; e.ta.Line() < line && steps > 0; steps-- {
		e.ta.CursorDown()
	}
	e.ta.SetCursor(max(c.Position.Column, 0))
	e.scroll = c.ScrollOffset
}
