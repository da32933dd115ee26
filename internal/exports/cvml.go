// Package exports reads and writes .cvml bundles: a flat text file with a
// bracketed header per section followed by that section's raw text.
package exports

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/damusix/cv.alonso.network/internal/types"
)

// Extension is the file extension of an exported bundle.
const Extension = ".cvml"

const (
	HeaderScript = "[cv-data js]"
	HeaderData   = "[cv-data json]"
	HeaderStyles = "[cv-styles]"
)

// ErrNoData is returned when a bundle has no CV data section.
var ErrNoData = errors.New("no valid CV data found in file")

var headers = map[string]types.Mode{
	HeaderScript: types.ModeScript,
	HeaderData:   types.ModeData,
	HeaderStyles: types.ModeStylesheet,
}

// Section is one framed block of a bundle.
type Section struct {
	Mode types.Mode
	Text string
}

// Bundle is the decoded content of a .cvml file, in file order.
type Bundle struct {
	Sections []Section
}

// Data returns the first CV data section.
func (b *Bundle) Data() (Section, bool) {
	for _, s := range b.Sections {
		if s.Mode.DataBearing() {
			return s, true
		}
	}
	return Section{}, false
}

// Styles returns the stylesheet section.
func (b *Bundle) Styles() (string, bool) {
	for _, s := range b.Sections {
		if s.Mode == types.ModeStylesheet {
			return s.Text, true
		}
	}
	return "", false
}

// FormatError reports a bundle that cannot be framed.
type FormatError struct {
	Line    int
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid bundle (line %d): %s", e.Line, e.Message)
}

// HeaderFor returns the section header used for mode.
func HeaderFor(mode types.Mode) string {
	switch mode {
	case types.ModeScript:
		return HeaderScript
	case types.ModeData:
		return HeaderData
	default:
		return HeaderStyles
	}
}

// Encode writes the bundle. Each section is its header line, its text and a
// blank line.
func Encode(b *Bundle) string {
	var sb strings.Builder
	for i, s := range b.Sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(HeaderFor(s.Mode))
		sb.WriteString("\n")
		sb.WriteString(strings.TrimSpace(s.Text))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Decode splits content into sections. A section runs from its header line up
// to the next known header line or the end of the file, and is trimmed. Other
// bracketed lines, such as a CSS attribute selector, are section text.
// Text before the first header is ignored.
func Decode(content string) (*Bundle, error) {
	b := &Bundle{}
	seen := make(map[types.Mode]bool)

	var (
		current *Section
		body    []string
	)
	flush := func() {
		if current != nil {
			current.Text = strings.TrimSpace(strings.Join(body, "\n"))
			b.Sections = append(b.Sections, *current)
		}
		current, body = nil, nil
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		header := strings.TrimSpace(text)
		if mode, known := headers[header]; known {
			flush()
			if seen[mode] {
				return nil, &FormatError{Line: line, Message: fmt.Sprintf("duplicate section %s", header)}
			}
			seen[mode] = true
			current = &Section{Mode: mode}
			continue
		}
		if current != nil {
			body = append(body, text)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &FormatError{Line: line, Message: err.Error()}
	}
	flush()

	if seen[types.ModeScript] && seen[types.ModeData] {
		return nil, &FormatError{Line: line, Message: "bundle carries CV data twice"}
	}
	return b, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9 ._-]+`)

// FileName derives the export file name from the CV owner, e.g.
// "Jane Anderson - Senior Engineer.cvml".
func FileName(p types.Personal) string {
	title := strings.TrimSpace(p.Name)
	if title == "" {
		title = "cv"
	}
	if p.Title != "" {
		title += " - " + strings.TrimSpace(p.Title)
	}
	title = strings.TrimSpace(unsafeName.ReplaceAllString(title, ""))
	return title + Extension
}
