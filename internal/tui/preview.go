package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/damusix/cv.alonso.network/internal/rendering"
	"github.com/damusix/cv.alonso.network/internal/types"
	"go.uber.org/zap"
)

// preview shows the committed CV. It is the session's Renderer and StyleSink.
type preview struct {
	vp     viewport.Model
	term   *rendering.Terminal
	style  string
	cv     *types.CVData
	css    string
	logger *zap.Logger
}

func newPreview(style string, logger *zap.Logger) *preview {
	return &preview{vp: viewport.New(0, 0), style: style, logger: logger}
}

func (p *preview) Render(cv *types.CVData) {
	p.cv = cv
	p.refresh()
}

// ApplyStyles keeps the stylesheet. A terminal preview cannot use it, so it
// is only reported in the pane title.
func (p *preview) ApplyStyles(css string) {
	p.css = css
}

func (p *preview) resize(width, height int) {
	p.vp.Width = width
	p.vp.Height = height
	if p.term == nil || p.term.Width() != width {
		term, err := rendering.NewTerminal(width, p.style)
		if err != nil {
			p.logger.Warn("Failed to create preview renderer", zap.Error(err))
			return
		}
		p.term = term
	}
	p.refresh()
}

func (p *preview) refresh() {
	if p.cv == nil || p.term == nil {
		return
	}
	out, err := p.term.Render(p.cv)
	if err != nil {
		p.logger.Warn("Failed to render preview", zap.Error(err))
		out = fmt.Sprintf("Preview unavailable: %v", err)
	}
	p.vp.SetContent(out)
}

func (p *preview) title() string {
	if p.cv == nil {
		return "Preview"
	}
	return fmt.Sprintf("Preview · %s · %d bytes of CSS", p.cv.Personal.Name, len(p.css))
}
