package drafts

import (
	"context"
	"testing"

	"github.com/damusix/cv.alonso.network/internal/assets"
	"github.com/damusix/cv.alonso.network/internal/modes"
	"github.com/damusix/cv.alonso.network/internal/store"
	"github.com/damusix/cv.alonso.network/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestReconciler(t *testing.T) (*Reconciler, *store.MemoryStore, *assets.Defaults) {
	t.Helper()
	defaults, err := assets.LoadEmbedded(context.Background())
	require.NoError(t, err)
	st := store.NewMemoryStore()
	return New(st, modes.NewRegistry(), defaults, zap.NewNop()), st, defaults
}

func experienceCV(title string) *types.CVData {
	return &types.CVData{
		Personal: types.Personal{Name: "Jane", Email: "jane@example.com", Phone: "1", Location: "Here"},
		Sections: []types.Section{
			{ID: "experience", Heading: "Experience", Items: []types.Item{{Title: title}}},
		},
	}
}

func TestCommittedValueFor_NothingStored(t *testing.T) {
	r, _, defaults := newTestReconciler(t)
	reg := modes.NewRegistry()

	for _, mode := range []types.Mode{types.ModeScript, types.ModeData} {
		got, err := r.CommittedValueFor(mode)
		require.NoError(t, err)
		want, err := reg.DefaultText(mode, defaults.Document())
		require.NoError(t, err)
		assert.Equal(t, want, got, mode)
	}

	css, err := r.CommittedValueFor(types.ModeStylesheet)
	require.NoError(t, err)
	assert.Equal(t, defaults.Stylesheet, css)
}

func TestCommit_CommittedValueFor(t *testing.T) {
	r, _, _ := newTestReconciler(t)
	reg := modes.NewRegistry()

	cv := experienceCV("TechCorp")
	code := "// mine\nreturn {personal: {name: 'Jane', email: 'jane@example.com', phone: '1', location: 'Here'}, sections: [{id: 'experience', heading: 'Experience', items: [{title: 'TechCorp'}]}]};"
	require.NoError(t, r.Commit(types.ModeScript, code, cv))

	got, err := r.CommittedValueFor(types.ModeScript)
	require.NoError(t, err)
	assert.Equal(t, code, got, "committed code is returned verbatim in its own mode")

	got, err = r.CommittedValueFor(types.ModeData)
	require.NoError(t, err)
	want, err := reg.DefaultText(types.ModeData, cv)
	require.NoError(t, err)
	assert.Equal(t, want, got, "other data modes are generated from the result")

	state, err := r.Committed()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, types.ModeScript, state.Mode)
	assert.Equal(t, cv, state.Result)

	current, err := r.CurrentResult()
	require.NoError(t, err)
	assert.Equal(t, "TechCorp", current.Sections[0].Items[0].Title)
}

func TestCommit_RejectsStylesheetAndNil(t *testing.T) {
	r, _, _ := newTestReconciler(t)

	err := r.Commit(types.ModeStylesheet, "body {}", experienceCV("x"))
	assert.ErrorIs(t, err, modes.ErrNotDataBearing)

	err = r.Commit(types.ModeData, "{}", nil)
	assert.Error(t, err)
}

func TestCommit_IsASingleRecord(t *testing.T) {
	r, st, _ := newTestReconciler(t)
	require.NoError(t, r.Commit(types.ModeData, "{}", experienceCV("x")))

	snap := st.Snapshot()
	assert.Len(t, snap, 1)
	assert.Contains(t, snap, store.KeyCommitted)
	assert.Contains(t, snap[store.KeyCommitted], "\n    \"mode\": \"json\"", "records use four-space indentation")
}

func TestReconcile_DraftExistsOnlyWhenTextDiffers(t *testing.T) {
	for _, mode := range types.AllModes {
		t.Run(string(mode), func(t *testing.T) {
			r, _, _ := newTestReconciler(t)

			committed, err := r.CommittedValueFor(mode)
			require.NoError(t, err)

			drafted, err := r.Reconcile(mode, committed+"\n// edit")
			require.NoError(t, err)
			assert.True(t, drafted)
			draft, ok, err := r.LoadDraft(mode)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, committed+"\n// edit", draft)

			drafted, err = r.Reconcile(mode, committed)
			require.NoError(t, err)
			assert.False(t, drafted)
			has, err := r.HasDraft(mode)
			require.NoError(t, err)
			assert.False(t, has)
		})
	}
}

func TestReconcileOnSwitch(t *testing.T) {
	r, _, _ := newTestReconciler(t)

	require.NoError(t, r.ReconcileOnSwitch(types.ModeStylesheet, "body { color: red; }"))
	has, err := r.HasDraft(types.ModeStylesheet)
	require.NoError(t, err)
	assert.True(t, has)

	css, err := r.CommittedValueFor(types.ModeStylesheet)
	require.NoError(t, err)
	require.NoError(t, r.ReconcileOnSwitch(types.ModeStylesheet, css))
	has, err = r.HasDraft(types.ModeStylesheet)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestDraftSlots(t *testing.T) {
	r, _, _ := newTestReconciler(t)

	require.NoError(t, r.SaveDraft(types.ModeScript, "a"))
	require.NoError(t, r.SaveDraft(types.ModeScript, "b"))
	require.NoError(t, r.SaveDraft(types.ModeData, "c"))

	draft, ok, err := r.LoadDraft(types.ModeScript)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", draft, "one slot per mode, overwritten")

	require.NoError(t, r.ClearDrafts(types.ModeScript, types.ModeData))
	for _, m := range []types.Mode{types.ModeScript, types.ModeData} {
		has, err := r.HasDraft(m)
		require.NoError(t, err)
		assert.False(t, has)
	}
}

func TestClearCommitted(t *testing.T) {
	r, st, _ := newTestReconciler(t)
	require.NoError(t, r.Commit(types.ModeData, "{}", experienceCV("x")))
	require.NoError(t, st.Set(store.KeyLegacyCode, "return {};"))

	require.NoError(t, r.ClearCommitted())
	state, err := r.Committed()
	require.NoError(t, err)
	assert.Nil(t, state)
	_, ok, _ := st.Get(store.KeyLegacyCode)
	assert.False(t, ok)
}

func TestCommitted_IgnoresCorruptRecord(t *testing.T) {
	r, st, defaults := newTestReconciler(t)
	require.NoError(t, st.Set(store.KeyCommitted, "{not json"))

	state, err := r.Committed()
	require.NoError(t, err)
	assert.Nil(t, state)

	current, err := r.CurrentResult()
	require.NoError(t, err)
	assert.Equal(t, defaults.Document(), current)
}

func TestStylesAndEditorState(t *testing.T) {
	r, _, defaults := newTestReconciler(t)

	css, err := r.Styles()
	require.NoError(t, err)
	assert.Equal(t, defaults.Stylesheet, css)
	custom, err := r.HasCustomStyles()
	require.NoError(t, err)
	assert.False(t, custom)

	require.NoError(t, r.CommitStyles("body {}"))
	css, err = r.Styles()
	require.NoError(t, err)
	assert.Equal(t, "body {}", css)
	require.NoError(t, r.ClearStyles())
	css, _ = r.Styles()
	assert.Equal(t, defaults.Stylesheet, css)

	mode, err := r.ActiveMode(types.ModeScript)
	require.NoError(t, err)
	assert.Equal(t, types.ModeScript, mode)
	require.NoError(t, r.SetActiveMode(types.ModeStylesheet))
	mode, err = r.ActiveMode(types.ModeScript)
	require.NoError(t, err)
	assert.Equal(t, types.ModeStylesheet, mode)

	cursor, err := r.Cursor(types.ModeData)
	require.NoError(t, err)
	assert.Nil(t, cursor)
	want := types.CursorState{Position: types.Position{Line: 4, Column: 2}, ScrollOffset: 1}
	require.NoError(t, r.SaveCursor(types.ModeData, want))
	cursor, err = r.Cursor(types.ModeData)
	require.NoError(t, err)
	assert.Equal(t, &want, cursor)

	layout, err := r.Layout()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultLayout, layout)
	require.NoError(t, r.SaveLayout(types.Layout{Editor: 70}))
	layout, err = r.Layout()
	require.NoError(t, err)
	assert.Equal(t, types.Layout{Editor: 70, Preview: 30}, layout)

	open, err := r.PaneOpen()
	require.NoError(t, err)
	assert.True(t, open)
	require.NoError(t, r.SetPaneOpen(false))
	open, _ = r.PaneOpen()
	assert.False(t, open)

	first, err := r.FirstVisit()
	require.NoError(t, err)
	assert.True(t, first)
	require.NoError(t, r.MarkVisited())
	first, _ = r.FirstVisit()
	assert.False(t, first)
}

func TestEditorState_UnreadableEntriesAreAbsent(t *testing.T) {
	r, st, _ := newTestReconciler(t)
	require.NoError(t, st.Set(store.CursorKey(types.ModeScript), "garbage"))
	require.NoError(t, st.Set(store.KeyActiveMode, "yaml"))

	cursor, err := r.Cursor(types.ModeScript)
	require.NoError(t, err)
	assert.Nil(t, cursor)

	mode, err := r.ActiveMode(types.ModeData)
	require.NoError(t, err)
	assert.Equal(t, types.ModeData, mode)
}

func TestStatus(t *testing.T) {
	r, _, _ := newTestReconciler(t)
	require.NoError(t, r.Commit(types.ModeData, "{}", experienceCV("x")))
	require.NoError(t, r.SaveDraft(types.ModeScript, "return {};"))
	require.NoError(t, r.CommitStyles("body {}"))

	st, err := r.Status(types.ModeScript)
	require.NoError(t, err)
	assert.Equal(t, types.ModeScript, st.ActiveMode)
	assert.Equal(t, types.ModeData, st.CommittedMode)
	assert.True(t, st.HasResult)
	assert.Equal(t, map[types.Mode]bool{types.ModeScript: true, types.ModeData: false, types.ModeStylesheet: false}, st.Drafts)
	assert.True(t, st.CustomStyles)
}
