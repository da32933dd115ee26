package session

import (
	"fmt"

	"github.com/damusix/cv.alonso.network/internal/exports"
	"github.com/damusix/cv.alonso.network/internal/types"
)

// Command is an event handed to Dispatch. The set is closed.
type Command interface {
	command()
}

// Edit reports new editor content. The editor is updated when it does not
// already hold Text, and the autosave window restarts.
type Edit struct {
	Text string
}

// MoveCursor persists the cursor of the active mode.
type MoveCursor struct {
	Cursor types.CursorState
}

// SwitchMode changes the active mode.
type SwitchMode struct {
	Mode types.Mode
}

// Apply commits the editor content.
type Apply struct{}

// Reset restores the built-in content of the active mode.
type Reset struct{}

// AutosaveTick carries a ticket received from AutosaveDue.
type AutosaveTick struct {
	Ticket Ticket
}

// Import commits a decoded bundle.
type Import struct {
	Bundle *exports.Bundle
}

func (Edit) command()         {}
func (MoveCursor) command()   {}
func (SwitchMode) command()   {}
func (Apply) command()        {}
func (Reset) command()        {}
func (AutosaveTick) command() {}
func (Import) command()       {}

// Dispatch runs one command. It is the single entry point for host loops.
func (s *Session) Dispatch(cmd Command) error {
	if s.closed {
		return ErrClosed
	}
	switch c := cmd.(type) {
	case Edit:
		if s.editor.Text() != c.Text {
			s.editor.SetText(c.Text)
		}
		s.Edited()
		return nil
	case MoveCursor:
		s.editor.SetCursor(c.Cursor)
		return s.SaveCursor()
	case SwitchMode:
		return s.SetMode(c.Mode)
	case Apply:
		return s.Apply()
	case Reset:
		return s.Reset()
	case AutosaveTick:
		_, err := s.HandleAutosave(c.Ticket)
		return err
	case Import:
		return s.Import(c.Bundle)
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
}
