package session

import "github.com/damusix/cv.alonso.network/internal/types"

// Editor is the editing surface the session drives.
type Editor interface {
	Text() string
	SetText(text string)
	Cursor() types.CursorState
	SetCursor(c types.CursorState)
}

// Renderer shows a committed CV. It is called after every successful commit,
// reset or import and once on open; never after a failure.
type Renderer interface {
	Render(cv *types.CVData)
}

// StyleSink receives the stylesheet whenever it is applied.
type StyleSink interface {
	ApplyStyles(css string)
}

// Buffer is an in-memory Editor for headless use.
type Buffer struct {
	text   string
	cursor types.CursorState
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Text() string { return b.text }

func (b *Buffer) SetText(text string) { b.text = text }

func (b *Buffer) Cursor() types.CursorState { return b.cursor }

func (b *Buffer) SetCursor(c types.CursorState) { b.cursor = c }

type nopRenderer struct{}

func (nopRenderer) Render(*types.CVData) {}

type nopStyles struct{}

func (nopStyles) ApplyStyles(string) {}
