package session

import (
	"github.com/damusix/cv.alonso.network/internal/exports"
	"github.com/damusix/cv.alonso.network/internal/types"
	"go.uber.org/zap"
)

// Import commits a decoded bundle through the same parse and validate steps
// as Apply. Every section is checked before anything is written, so a bad
// section leaves the store untouched.
func (s *Session) Import(b *exports.Bundle) error {
	if s.closed {
		return ErrClosed
	}
	if b == nil {
		return exports.ErrNoData
	}
	data, ok := b.Data()
	if !ok {
		return exports.ErrNoData
	}
	cv, err := s.check(data.Mode, data.Text)
	if err != nil {
		return &ImportError{Section: exports.HeaderFor(data.Mode), Cause: err}
	}
	css, hasStyles := b.Styles()

	s.autosave.cancel()
	if err := s.commit(data.Mode, data.Text, cv); err != nil {
		return err
	}
	if err := s.drafts.ClearDrafts(dataModes()...); err != nil {
		return err
	}
	if hasStyles {
		if err := s.drafts.CommitStyles(css); err != nil {
			return err
		}
		if err := s.drafts.ClearDraft(types.ModeStylesheet); err != nil {
			return err
		}
		s.styles.ApplyStyles(css)
	}

	if s.mode.DataBearing() || hasStyles {
		text, err := s.drafts.CommittedValueFor(s.mode)
		if err != nil {
			return err
		}
		s.editor.SetText(text)
	}
	s.renderer.Render(cv)
	s.logger.Info("Imported bundle", zap.String("data", string(data.Mode)), zap.Bool("styles", hasStyles))
	return nil
}

// Export builds a bundle of the committed CV data and, when one was saved,
// the custom stylesheet. Drafts are not exported.
func (s *Session) Export() (*exports.Bundle, error) {
	b := &exports.Bundle{}

	state, err := s.drafts.Committed()
	if err != nil {
		return nil, err
	}
	if state != nil && state.Code != "" {
		b.Sections = append(b.Sections, exports.Section{Mode: state.Mode, Text: state.Code})
	}

	custom, err := s.drafts.HasCustomStyles()
	if err != nil {
		return nil, err
	}
	if custom {
		css, err := s.drafts.Styles()
		if err != nil {
			return nil, err
		}
		b.Sections = append(b.Sections, exports.Section{Mode: types.ModeStylesheet, Text: css})
	}
	return b, nil
}
