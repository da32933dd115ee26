package drafts

import "fmt"

// CorruptionError describes stored state that disagrees with itself or cannot
// be read. It is logged and healed, never shown to the user.
type CorruptionError struct {
	Key    string
	Reason string
	Cause  error
}

func (e *CorruptionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("corrupt %s: %s: %v", e.Key, e.Reason, e.Cause)
	}
	return fmt.Sprintf("corrupt %s: %s", e.Key, e.Reason)
}

func (e *CorruptionError) Unwrap() error {
	return e.Cause
}
