// Package modes defines the editing modes and the rules for turning CV data
// into editable text and back.
package modes

import (
	"fmt"

	"github.com/damusix/cv.alonso.network/internal/types"
)

// Rule describes how one mode produces and reads its text.
// DefaultText and Parse are nil for modes that do not carry CV data.
type Rule struct {
	Mode        types.Mode
	DataBearing bool
	// Language is the syntax hint passed to the editing surface
	Language    string
	DefaultText func(*types.CVData) (string, error)
	Parse       func(string) (*types.CVData, error)
}

// Registry is the static mode table.
type Registry struct {
	rules map[types.Mode]Rule
}

// NewRegistry returns the registry for the script, data and stylesheet modes.
func NewRegistry() *Registry {
	return &Registry{rules: map[types.Mode]Rule{
		types.ModeScript: {
			Mode:        types.ModeScript,
			DataBearing: true,
			Language:    "javascript",
			DefaultText: scriptText,
			Parse:       parseScript,
		},
		types.ModeData: {
			Mode:        types.ModeData,
			DataBearing: true,
			Language:    "json",
			DefaultText: dataText,
			Parse:       parseData,
		},
		types.ModeStylesheet: {
			Mode:     types.ModeStylesheet,
			Language: "css",
		},
	}}
}

// Rule returns the rule for mode.
func (r *Registry) Rule(mode types.Mode) (Rule, error) {
	rule, ok := r.rules[mode]
	if !ok {
		return Rule{}, fmt.Errorf("unknown mode %q", mode)
	}
	return rule, nil
}

// DefaultText renders cv as the editable default text of mode.
func (r *Registry) DefaultText(mode types.Mode, cv *types.CVData) (string, error) {
	rule, err := r.dataRule(mode)
	if err != nil {
		return "", err
	}
	return rule.DefaultText(cv)
}

// Parse reads text written in mode. Failures are *ParseError.
func (r *Registry) Parse(mode types.Mode, text string) (*types.CVData, error) {
	rule, err := r.dataRule(mode)
	if err != nil {
		return nil, err
	}
	return rule.Parse(text)
}

// Convert re-expresses text written in from as the default text of to.
// Comments and formatting of the source are not carried over.
func (r *Registry) Convert(from, to types.Mode, text string) (string, error) {
	if from == to {
		return text, nil
	}
	cv, err := r.Parse(from, text)
	if err != nil {
		return "", err
	}
	return r.DefaultText(to, cv)
}

func (r *Registry) dataRule(mode types.Mode) (Rule, error) {
	rule, err := r.Rule(mode)
	if err != nil {
		return Rule{}, err
	}
	if !rule.DataBearing {
		return Rule{}, fmt.Errorf("%s: %w", mode, ErrNotDataBearing)
	}
	return rule, nil
}
