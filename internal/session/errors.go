package session

import (
	"errors"
	"fmt"

	"github.com/damusix/cv.alonso.network/internal/types"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session is closed")

// ConversionError reports a mode switch that could not derive the incoming
// text. The switch is abandoned and the previous mode stays active.
type ConversionError struct {
	From  types.Mode
	To    types.Mode
	Cause error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot switch from %s to %s: %v", e.From.Label(), e.To.Label(), e.Cause)
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// ImportError wraps a failure in one section of an imported bundle.
type ImportError struct {
	Section string
	Cause   error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import failed in %s: %v", e.Section, e.Cause)
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}
