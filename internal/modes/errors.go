package modes

import (
	"errors"
	"fmt"

	"github.com/damusix/cv.alonso.network/internal/types"
)

// ErrNotDataBearing is returned when a CVData operation is asked of the stylesheet mode.
var ErrNotDataBearing = errors.New("mode does not carry CV data")

// ParseError represents text that could not be turned into a CVData value.
// Line is 1-based and zero when unknown.
type ParseError struct {
	Mode    types.Mode
	Line    int
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	where := string(e.Mode)
	if e.Line > 0 {
		where = fmt.Sprintf("%s, line %d", e.Mode, e.Line)
	}
	if e.Cause != nil {
		return fmt.Sprintf("parse error (%s): %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error (%s): %s", where, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
