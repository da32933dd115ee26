package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/damusix/cv.alonso.network/internal/assets"
	"github.com/damusix/cv.alonso.network/internal/drafts"
	"github.com/damusix/cv.alonso.network/internal/exports"
	"github.com/damusix/cv.alonso.network/internal/modes"
	"github.com/damusix/cv.alonso.network/internal/schemas"
	"github.com/damusix/cv.alonso.network/internal/store"
	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	rendered []*types.CVData
	styles   []string
}

func (r *recorder) Render(cv *types.CVData) { r.rendered = append(r.rendered, cv) }

func (r *recorder) ApplyStyles(css string) { r.styles = append(r.styles, css) }

func (r *recorder) lastRendered(t *testing.T) *types.CVData {
	t.Helper()
	require.NotEmpty(t, r.rendered)
	return r.rendered[len(r.rendered)-1]
}

type harness struct {
	session  *Session
	editor   *Buffer
	view     *recorder
	store    *store.MemoryStore
	defaults *assets.Defaults
	registry *modes.Registry
}

func loadDefaults(t *testing.T) *assets.Defaults {
	t.Helper()
	d, err := assets.LoadEmbedded(context.Background())
	require.NoError(t, err)
	return d
}

func open(t *testing.T, st *store.MemoryStore, opts Options) *harness {
	t.Helper()
	if opts.AutosaveDelay == 0 {
		opts.AutosaveDelay = 10 * time.Millisecond
	}
	h := &harness{
		editor:   NewBuffer(),
		view:     &recorder{},
		store:    st,
		defaults: loadDefaults(t),
		registry: modes.NewRegistry(),
	}
	s, err := Open(context.Background(), Deps{
		Store:    st,
		Editor:   h.editor,
		Renderer: h.view,
		Styles:   h.view,
		Registry: h.registry,
		Defaults: h.defaults,
	}, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	h.session = s
	return h
}

func (h *harness) text(t *testing.T, mode types.Mode, cv *types.CVData) string {
	t.Helper()
	text, err := h.registry.DefaultText(mode, cv)
	require.NoError(t, err)
	return text
}

func waitTicket(t *testing.T, s *Session) Ticket {
	t.Helper()
	select {
	case tk := <-s.AutosaveDue():
		return tk
	case <-time.After(2 * time.Second):
		t.Fatal("autosave did not fire")
		return Ticket{}
	}
}

// editAndTick types text and runs the autosave that follows. Tickets left
// over from cancelled windows are skipped.
func editAndTick(t *testing.T, s *Session, text string) {
	t.Helper()
	require.NoError(t, s.Dispatch(Edit{Text: text}))
	for {
		handled, err := s.HandleAutosave(waitTicket(t, s))
		require.NoError(t, err)
		if handled {
			return
		}
	}
}

func experienceCV(title string) *types.CVData {
	return &types.CVData{
		Personal: types.Personal{Name: "Jane", Email: "jane@example.com", Phone: "1", Location: "Here"},
		Sections: []types.Section{
			{ID: "experience", Heading: "Experience", Items: []types.Item{{Title: title}}},
		},
	}
}

func storeRecord(t *testing.T, st store.Store, state *types.CommittedState) {
	t.Helper()
	text, err := modes.Serialize(state)
	require.NoError(t, err)
	require.NoError(t, st.Set(store.KeyCommitted, text))
}

func committed(t *testing.T, h *harness) *types.CommittedState {
	t.Helper()
	state, err := h.session.Drafts().Committed()
	require.NoError(t, err)
	return state
}

func TestOpen_FreshStore(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{})

	assert.Equal(t, types.ModeScript, h.session.Mode())
	assert.Equal(t, h.text(t, types.ModeScript, h.defaults.Document()), h.editor.Text())
	assert.Equal(t, h.defaults.Document(), h.view.lastRendered(t))
	assert.Equal(t, []string{h.defaults.Stylesheet}, h.view.styles)
	assert.Equal(t, drafts.OutcomeEmpty, h.session.VerifyReport().Outcome)
	assert.NotEmpty(t, h.session.ID())
	assert.Empty(t, h.store.Snapshot(), "opening writes nothing")
}

func TestOpen_DefaultModeOption(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{DefaultMode: types.ModeData})

	assert.Equal(t, types.ModeData, h.session.Mode())
	assert.Equal(t, h.text(t, types.ModeData, h.defaults.Document()), h.editor.Text())
}

func TestOpen_PersistedModeDraftAndCursor(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(store.KeyActiveMode, "json"))
	require.NoError(t, st.Set(store.DraftKey(types.ModeData), `{"draft": true}`))
	require.NoError(t, st.Set(store.CursorKey(types.ModeData), `{"position": {"line": 3, "column": 7}, "scrollOffset": 2}`))

	h := open(t, st, Options{DefaultMode: types.ModeScript})

	assert.Equal(t, types.ModeData, h.session.Mode())
	assert.Equal(t, `{"draft": true}`, h.editor.Text(), "draft wins at open")
	assert.Equal(t, types.CursorState{Position: types.Position{Line: 3, Column: 7}, ScrollOffset: 2}, h.editor.Cursor())
}

func TestOpen_RejectsMissingDeps(t *testing.T) {
	_, err := Open(context.Background(), Deps{Editor: NewBuffer()}, Options{})
	assert.Error(t, err)

	_, err = Open(context.Background(), Deps{Store: store.NewMemoryStore()}, Options{})
	assert.Error(t, err)

	_, err = Open(context.Background(), Deps{Store: store.NewMemoryStore(), Editor: NewBuffer()}, Options{DefaultMode: "cobol"})
	assert.Error(t, err)
}

func TestOpen_LoadsEmbeddedDefaults(t *testing.T) {
	editor := NewBuffer()
	s, err := Open(context.Background(), Deps{Store: store.NewMemoryStore(), Editor: editor}, Options{})
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, strings.HasPrefix(editor.Text(), modes.ScriptHeader))
}

func TestOpen_CorruptionSelfHeal(t *testing.T) {
	// The stored code was edited outside the editor.
	st := store.NewMemoryStore()
	result := experienceCV("TechCorp")
	reg := modes.NewRegistry()
	tampered, err := reg.DefaultText(types.ModeScript, experienceCV("Elsewhere"))
	require.NoError(t, err)
	storeRecord(t, st, &types.CommittedState{Mode: types.ModeScript, Code: tampered, Result: result})

	h := open(t, st, Options{})

	assert.Equal(t, drafts.OutcomeRepairedMismatch, h.session.VerifyReport().Outcome)
	want := h.text(t, types.ModeScript, result)
	assert.Equal(t, want, h.editor.Text())

	state := committed(t, h)
	assert.Equal(t, want, state.Code, "stored code is rewritten")
	derived, err := reg.Parse(types.ModeScript, state.Code)
	require.NoError(t, err)
	assert.Equal(t, result, derived)
	assert.Equal(t, result, h.view.lastRendered(t))
}

func TestOpen_TrustedCodeKeepsComments(t *testing.T) {
	st := store.NewMemoryStore()
	result := experienceCV("TechCorp")
	generated, err := modes.NewRegistry().DefaultText(types.ModeScript, result)
	require.NoError(t, err)
	code := "/* mine */\n" + generated
	storeRecord(t, st, &types.CommittedState{Mode: types.ModeScript, Code: code, Result: result})

	h := open(t, st, Options{})
	assert.Equal(t, drafts.OutcomeTrusted, h.session.VerifyReport().Outcome)
	assert.Equal(t, code, h.editor.Text())
}

func TestOpen_MigratesLegacyKeys(t *testing.T) {
	st := store.NewMemoryStore()
	result := experienceCV("TechCorp")
	resultJSON, err := modes.Serialize(result)
	require.NoError(t, err)
	require.NoError(t, st.Set(store.KeyLegacyCode, "return "+resultJSON))
	require.NoError(t, st.Set(store.KeyLegacyResult, resultJSON))

	h := open(t, st, Options{})

	assert.Equal(t, "return "+resultJSON, h.editor.Text())
	assert.Equal(t, result, h.view.lastRendered(t))
	_, ok, _ := st.Get(store.KeyLegacyCode)
	assert.False(t, ok)
}

func TestAutosave_MatchingTextClearsDraft(t *testing.T) {
	for _, mode := range types.AllModes {
		t.Run(string(mode), func(t *testing.T) {
			h := open(t, store.NewMemoryStore(), Options{DefaultMode: mode})
			committedText := h.editor.Text()

			editAndTick(t, h.session, committedText+"\n// changed")
			editAndTick(t, h.session, committedText)

			has, err := h.session.Drafts().HasDraft(mode)
			require.NoError(t, err)
			assert.False(t, has)
		})
	}
}

func TestAutosave_DifferentTextSavesDraft(t *testing.T) {
	for _, mode := range types.AllModes {
		t.Run(string(mode), func(t *testing.T) {
			h := open(t, store.NewMemoryStore(), Options{DefaultMode: mode})
			text := h.editor.Text() + "\n/* edited */"

			editAndTick(t, h.session, text)

			draft, ok, err := h.session.Drafts().LoadDraft(mode)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, text, draft)
		})
	}
}

func TestAutosave_OnlyLatestTicketIsHonored(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{})
	s := h.session

	require.NoError(t, s.Dispatch(Edit{Text: "first"}))
	stale := waitTicket(t, s)
	require.NoError(t, s.Dispatch(Edit{Text: "second"}))

	handled, err := s.HandleAutosave(stale)
	require.NoError(t, err)
	assert.False(t, handled)
	has, _ := s.Drafts().HasDraft(types.ModeScript)
	assert.False(t, has, "stale ticket writes nothing")

	require.NoError(t, s.Dispatch(AutosaveTick{Ticket: waitTicket(t, s)}))
	draft, _, _ := s.Drafts().LoadDraft(types.ModeScript)
	assert.Equal(t, "second", draft)
	assert.False(t, s.AutosavePending())
}

func TestAutosave_Flush(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{AutosaveDelay: time.Hour})

	require.NoError(t, h.session.Dispatch(Edit{Text: "pending"}))
	assert.True(t, h.session.AutosavePending())
	require.NoError(t, h.session.FlushAutosave())

	draft, ok, err := h.session.Drafts().LoadDraft(types.ModeScript)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pending", draft)
	assert.False(t, h.session.AutosavePending())
}

func TestApply_EditDraftApplyCycle(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{})
	s := h.session

	require.NoError(t, s.Dispatch(Edit{Text: h.text(t, types.ModeScript, experienceCV("TechCorp"))}))
	require.NoError(t, s.Dispatch(Apply{}))
	assert.Equal(t, "TechCorp", committed(t, h).Result.Sections[0].Items[0].Title)

	renamed := strings.Replace(h.editor.Text(), `"title": "TechCorp"`, `"title": "TechCorp Inc."`, 1)
	require.NotEqual(t, h.editor.Text(), renamed)
	editAndTick(t, s, renamed)

	draft, ok, err := s.Drafts().LoadDraft(types.ModeScript)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, draft, "TechCorp Inc.")

	require.NoError(t, s.Dispatch(Apply{}))

	state := committed(t, h)
	assert.Equal(t, "TechCorp Inc.", state.Result.Sections[0].Items[0].Title)
	assert.Equal(t, renamed, state.Code)
	has, _ := s.Drafts().HasDraft(types.ModeScript)
	assert.False(t, has)
	assert.Equal(t, "TechCorp Inc.", h.view.lastRendered(t).Sections[0].Items[0].Title)
	assert.False(t, s.AutosavePending())
}

func TestApply_ParseErrorChangesNothing(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{AutosaveDelay: time.Hour})
	before := h.store.Snapshot()
	renders := len(h.view.rendered)

	require.NoError(t, h.session.Dispatch(Edit{Text: "return {personal: {name: 'Jane'};"}))
	err := h.session.Dispatch(Apply{})

	var pe *modes.ParseError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, types.ModeScript, pe.Mode)
	assert.Equal(t, before, h.store.Snapshot())
	assert.Len(t, h.view.rendered, renders)
}

func TestApply_ValidationErrorChangesNothing(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{AutosaveDelay: time.Hour})
	cv := experienceCV("TechCorp")
	cv.Personal.Email = ""

	require.NoError(t, h.session.Dispatch(Edit{Text: h.text(t, types.ModeScript, cv)}))
	err := h.session.Dispatch(Apply{})

	var ve *schemas.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Contains(t, ve.Errors, schemas.FieldError{Field: "personal.email", Message: "Invalid email address"})
	assert.Contains(t, err.Error(), "personal.email: Invalid email address")
	assert.Nil(t, committed(t, h))
	assert.Len(t, h.view.rendered, 1)
}

func TestApply_DataMode(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{DefaultMode: types.ModeData})

	text := h.text(t, types.ModeData, experienceCV("Acme"))
	require.NoError(t, h.session.Dispatch(Edit{Text: text}))
	require.NoError(t, h.session.Dispatch(Apply{}))

	state := committed(t, h)
	assert.Equal(t, types.ModeData, state.Mode)
	assert.Equal(t, text, state.Code)
}

func TestApply_Stylesheet(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{DefaultMode: types.ModeStylesheet})

	editAndTick(t, h.session, "body { color: red; }")
	require.NoError(t, h.session.Dispatch(Apply{}))

	css, ok, _ := h.store.Get(store.KeyStyles)
	assert.True(t, ok)
	assert.Equal(t, "body { color: red; }", css)
	assert.Equal(t, "body { color: red; }", h.view.styles[len(h.view.styles)-1])
	has, _ := h.session.Drafts().HasDraft(types.ModeStylesheet)
	assert.False(t, has)
}

func TestReset_IsIdempotent(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{})
	s := h.session

	require.NoError(t, s.Dispatch(Edit{Text: h.text(t, types.ModeScript, experienceCV("TechCorp"))}))
	require.NoError(t, s.Dispatch(Apply{}))
	require.NoError(t, s.Drafts().SaveDraft(types.ModeData, "{}"))

	require.NoError(t, s.Dispatch(Reset{}))
	once := h.store.Snapshot()
	require.NoError(t, s.Dispatch(Reset{}))
	assert.Equal(t, once, h.store.Snapshot())

	state := committed(t, h)
	assert.Equal(t, h.defaults.Document(), state.Result)
	assert.Equal(t, h.text(t, types.ModeScript, h.defaults.Document()), state.Code)
	assert.Equal(t, state.Code, h.editor.Text())
	for _, m := range []types.Mode{types.ModeScript, types.ModeData} {
		has, _ := s.Drafts().HasDraft(m)
		assert.False(t, has, m)
	}
	assert.Equal(t, h.defaults.Document(), h.view.lastRendered(t))
}

func TestReset_Stylesheet(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{DefaultMode: types.ModeStylesheet})
	require.NoError(t, h.session.Dispatch(Edit{Text: "p {}"}))
	require.NoError(t, h.session.Dispatch(Apply{}))

	require.NoError(t, h.session.Dispatch(Reset{}))

	assert.Equal(t, h.defaults.Stylesheet, h.editor.Text())
	css, _, _ := h.store.Get(store.KeyStyles)
	assert.Equal(t, h.defaults.Stylesheet, css)
	assert.Equal(t, h.defaults.Stylesheet, h.view.styles[len(h.view.styles)-1])
}

func TestSetMode_StylesheetRoundTripIsByteIdentical(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{})
	s := h.session

	code := "// my own notes\nreturn {\n  personal: {name: 'Jane', email: 'jane@example.com', phone: '1', location: 'Here'},\n  sections: [{id: 'x', heading: 'X', items: [{title: 'T'}]}],\n};"
	require.NoError(t, s.Dispatch(Edit{Text: code}))
	require.NoError(t, s.Dispatch(Apply{}))

	require.NoError(t, s.Dispatch(SwitchMode{Mode: types.ModeStylesheet}))
	assert.Equal(t, h.defaults.Stylesheet, h.editor.Text())
	require.NoError(t, s.Dispatch(SwitchMode{Mode: types.ModeScript}))

	assert.Equal(t, code, h.editor.Text())
	for _, m := range types.AllModes {
		has, _ := s.Drafts().HasDraft(m)
		assert.False(t, has, m)
	}
}

func TestSetMode_ConvertsCommittedValue(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{})
	cv := experienceCV("TechCorp")
	require.NoError(t, h.session.Dispatch(Edit{Text: h.text(t, types.ModeScript, cv)}))
	require.NoError(t, h.session.Dispatch(Apply{}))

	require.NoError(t, h.session.Dispatch(SwitchMode{Mode: types.ModeData}))

	assert.Equal(t, types.ModeData, h.session.Mode())
	assert.Equal(t, h.text(t, types.ModeData, cv), h.editor.Text())
	mode, _, _ := h.store.Get(store.KeyActiveMode)
	assert.Equal(t, "json", mode)
}

func TestSetMode_KeepsOutgoingDraft(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{AutosaveDelay: time.Hour})
	s := h.session
	committedJSON := h.text(t, types.ModeData, h.defaults.Document())

	require.NoError(t, s.Dispatch(Edit{Text: "return {unfinished"}))
	require.NoError(t, s.Dispatch(MoveCursor{Cursor: types.CursorState{Position: types.Position{Line: 1, Column: 9}}}))
	require.NoError(t, s.Dispatch(SwitchMode{Mode: types.ModeData}))

	assert.False(t, s.AutosavePending(), "switch cancels the outgoing autosave")
	assert.Equal(t, committedJSON, h.editor.Text(), "conversion uses the committed value, not the draft")

	require.NoError(t, s.Dispatch(SwitchMode{Mode: types.ModeScript}))
	assert.Equal(t, "return {unfinished", h.editor.Text())
	assert.Equal(t, types.Position{Line: 1, Column: 9}, h.editor.Cursor().Position)
}

func TestSetMode_ConversionFailureRevertsMode(t *testing.T) {
	st := store.NewMemoryStore()
	storeRecord(t, st, &types.CommittedState{Mode: types.ModeScript, Code: "return {broken"})
	h := open(t, st, Options{})
	require.Equal(t, drafts.OutcomeUnchecked, h.session.VerifyReport().Outcome)
	require.Equal(t, "return {broken", h.editor.Text())

	err := h.session.Dispatch(SwitchMode{Mode: types.ModeData})

	var ce *ConversionError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, types.ModeScript, ce.From)
	assert.Equal(t, types.ModeData, ce.To)
	var pe *modes.ParseError
	assert.True(t, errors.As(err, &pe))

	assert.Equal(t, types.ModeScript, h.session.Mode())
	assert.Equal(t, "return {broken", h.editor.Text())
	mode, _, _ := st.Get(store.KeyActiveMode)
	assert.Equal(t, "javascript", mode)
}

func TestSetMode_DraftWinsOverConversion(t *testing.T) {
	st := store.NewMemoryStore()
	storeRecord(t, st, &types.CommittedState{Mode: types.ModeScript, Code: "return {broken"})
	require.NoError(t, st.Set(store.DraftKey(types.ModeData), `{"mine": 1}`))
	h := open(t, st, Options{})

	require.NoError(t, h.session.Dispatch(SwitchMode{Mode: types.ModeData}))
	assert.Equal(t, `{"mine": 1}`, h.editor.Text())
}

func TestSetMode_UnknownMode(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{})
	assert.Error(t, h.session.SetMode("cobol"))
	assert.Equal(t, types.ModeScript, h.session.Mode())
}

func TestImport(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{})
	cv := experienceCV("Imported")
	require.NoError(t, h.session.Drafts().SaveDraft(types.ModeScript, "old draft"))

	b := &exports.Bundle{Sections: []exports.Section{
		{Mode: types.ModeData, Text: h.text(t, types.ModeData, cv)},
		{Mode: types.ModeStylesheet, Text: "h1 {}"},
	}}
	require.NoError(t, h.session.Dispatch(Import{Bundle: b}))

	state := committed(t, h)
	assert.Equal(t, types.ModeData, state.Mode)
	assert.Equal(t, cv, state.Result)
	css, _, _ := h.store.Get(store.KeyStyles)
	assert.Equal(t, "h1 {}", css)
	assert.Equal(t, h.text(t, types.ModeScript, cv), h.editor.Text())
	assert.Equal(t, cv, h.view.lastRendered(t))
	has, _ := h.session.Drafts().HasDraft(types.ModeScript)
	assert.False(t, has)
}

func TestImport_RejectsBeforeWriting(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{})
	before := h.store.Snapshot()
	bad := experienceCV("")

	err := h.session.Import(&exports.Bundle{Sections: []exports.Section{
		{Mode: types.ModeStylesheet, Text: "h1 {}"},
		{Mode: types.ModeScript, Text: h.text(t, types.ModeScript, bad)},
	}})
	var ie *ImportError
	require.True(t, errors.As(err, &ie), "got %v", err)
	assert.Equal(t, exports.HeaderScript, ie.Section)
	var ve *schemas.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, before, h.store.Snapshot())

	assert.ErrorIs(t, h.session.Import(&exports.Bundle{Sections: []exports.Section{{Mode: types.ModeStylesheet, Text: "a {}"}}}), exports.ErrNoData)
	assert.ErrorIs(t, h.session.Import(nil), exports.ErrNoData)
}

func TestExport(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{})

	b, err := h.session.Export()
	require.NoError(t, err)
	assert.Empty(t, b.Sections)

	code := h.text(t, types.ModeScript, experienceCV("TechCorp"))
	require.NoError(t, h.session.Dispatch(Edit{Text: code}))
	require.NoError(t, h.session.Dispatch(Apply{}))
	require.NoError(t, h.session.Drafts().CommitStyles("p {}"))

	b, err = h.session.Export()
	require.NoError(t, err)
	assert.Equal(t, []exports.Section{
		{Mode: types.ModeScript, Text: code},
		{Mode: types.ModeStylesheet, Text: "p {}"},
	}, b.Sections)
}

func TestClose(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{AutosaveDelay: time.Hour})

	require.NoError(t, h.session.Dispatch(Edit{Text: "unsaved"}))
	require.True(t, h.session.AutosavePending())
	require.NoError(t, h.session.Close())
	require.NoError(t, h.session.Close())

	assert.False(t, h.session.AutosavePending())
	assert.ErrorIs(t, h.session.Dispatch(Apply{}), ErrClosed)
	assert.ErrorIs(t, h.session.SetMode(types.ModeData), ErrClosed)
	has, _ := h.session.Drafts().HasDraft(types.ModeScript)
	assert.False(t, has)
}

func TestApplyText_KeepsActiveMode(t *testing.T) {
	st := store.NewMemoryStore()
	// A code-only record nothing can convert out of script mode.
	storeRecord(t, st, &types.CommittedState{Mode: types.ModeScript, Code: "return {broken"})
	h := open(t, st, Options{AutosaveDelay: time.Hour})
	s := h.session
	editorBefore := h.editor.Text()

	require.Error(t, s.SetMode(types.ModeData), "switching needs a convertible record")

	text := h.text(t, types.ModeData, experienceCV("TechCorp"))
	require.NoError(t, s.ApplyText(types.ModeData, text))

	assert.Equal(t, types.ModeScript, s.Mode())
	mode, err := s.Drafts().ActiveMode(types.ModeStylesheet)
	require.NoError(t, err)
	assert.Equal(t, types.ModeScript, mode)
	assert.Equal(t, editorBefore, h.editor.Text())

	state := committed(t, h)
	assert.Equal(t, types.ModeData, state.Mode)
	assert.Equal(t, text, state.Code)
	assert.Equal(t, "TechCorp", h.view.lastRendered(t).Sections[0].Items[0].Title)
}

func TestApplyText_FailureKeepsDraft(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{AutosaveDelay: time.Hour})
	s := h.session
	bad := experienceCV("TechCorp")
	bad.Personal.Email = ""
	text := h.text(t, types.ModeData, bad)

	err := s.ApplyText(types.ModeData, text)
	var ve *schemas.ValidationError
	require.ErrorAs(t, err, &ve)

	draft, ok, err := s.Drafts().LoadDraft(types.ModeData)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, text, draft)
	assert.Nil(t, committed(t, h))
	assert.Equal(t, types.ModeScript, s.Mode())
}

func TestApplyText_ActiveModeUpdatesEditor(t *testing.T) {
	h := open(t, store.NewMemoryStore(), Options{})
	s := h.session
	require.NoError(t, s.Dispatch(Edit{Text: "// unsaved"}))
	require.True(t, s.AutosavePending())

	text := h.text(t, types.ModeScript, experienceCV("TechCorp"))
	require.NoError(t, s.ApplyText(types.ModeScript, text))

	assert.Equal(t, text, h.editor.Text())
	assert.False(t, s.AutosavePending())
	has, err := s.Drafts().HasDraft(types.ModeScript)
	require.NoError(t, err)
	assert.False(t, has)

	assert.Error(t, s.ApplyText(types.Mode("yaml"), text))
}
