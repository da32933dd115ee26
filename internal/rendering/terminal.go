package rendering

import (
	"github.com/charmbracelet/glamour"
	"github.com/damusix/cv.alonso.network/internal/types"
)

// Terminal renders CVs as styled terminal text.
type Terminal struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewTerminal creates a Terminal that wraps at width. An empty style picks
// one from the terminal background; "notty" yields plain text.
func NewTerminal(width int, style string) (*Terminal, error) {
	if width <= 0 {
		width = 80
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStylePath(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, &RenderError{Message: "failed to create terminal renderer", Cause: err}
	}
	return &Terminal{renderer: r, width: width}, nil
}

// Width is the wrap width.
func (t *Terminal) Width() int { return t.width }

// Render renders cv for the terminal.
func (t *Terminal) Render(cv *types.CVData) (string, error) {
	md, err := Markdown(cv)
	if err != nil {
		return "", err
	}
	return t.RenderMarkdown(md)
}

// RenderMarkdown styles already rendered markdown, such as the output of a
// custom template.
func (t *Terminal) RenderMarkdown(md string) (string, error) {
	out, err := t.renderer.Render(md)
	if err != nil {
		return "", &RenderError{Message: "failed to render markdown", Cause: err}
	}
	return out, nil
}
