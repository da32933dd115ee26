package types

import "fmt"

// Mode identifies which representation the editing surface currently holds.
// The string values are the ones persisted under the active-mode key.
type Mode string

const (
	// ModeScript is the comment-friendly "return { ... };" notation
	ModeScript Mode = "javascript"
	// ModeData is plain JSON
	ModeData Mode = "json"
	// ModeStylesheet holds the raw stylesheet and carries no CVData
	ModeStylesheet Mode = "css"
)

// AllModes lists every mode in switcher order.
var AllModes = []Mode{ModeScript, ModeData, ModeStylesheet}

// DataBearing reports whether text in this mode encodes a CVData value.
func (m Mode) DataBearing() bool {
	return m == ModeScript || m == ModeData
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeScript, ModeData, ModeStylesheet:
		return true
	}
	return false
}

// Label is the short name shown in the mode switcher.
func (m Mode) Label() string {
	switch m {
	case ModeScript:
		return "JS"
	case ModeData:
		return "JSON"
	case ModeStylesheet:
		return "CSS"
	}
	return string(m)
}

// ParseMode accepts the persisted value as well as a few friendly aliases.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "javascript", "js", "script":
		return ModeScript, nil
	case "json", "data":
		return ModeData, nil
	case "css", "stylesheet", "styles":
		return ModeStylesheet, nil
	}
	return "", fmt.Errorf("unknown mode %q (want javascript, json or css)", s)
}
