package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfields/gst/internal/git"
)

func entry(path string) git.FileEntry {
	return git.FileEntry{Path: path, Status: git.StatusModified, Added: 1, HasCounts: true}
}

func testModel(staged, unstaged []git.FileEntry) Model {
	m := newModel(nil, nil)
	return m.applyStatus(&git.StatusResult{
		StagedFiles:   staged,
		UnstagedFiles: unstaged,
		Staged:        len(staged),
		Unstaged:      len(unstaged),
	})
}

func TestBuildVisibleRowsConcatenatesSections(t *testing.T) {
	staged := []git.FileEntry{entry("a.go"), entry("b.go")}
	unstaged := []git.FileEntry{entry("c.go")}

	rows := buildVisibleRows(staged, unstaged)
	require.Len(t, rows, 3)
	assert.Equal(t, git.SectionStaged, rows[0].Section)
	assert.Equal(t, git.SectionStaged, rows[1].Section)
	assert.Equal(t, git.SectionUnstaged, rows[2].Section)
	assert.Equal(t, 0, rows[2].Index)
	assert.Equal(t, "c.go", rows[2].Path)
}

func TestBuildVisibleRowsEmpty(t *testing.T) {
	assert.Empty(t, buildVisibleRows(nil, nil))
}

func TestInitialStateWithEntries(t *testing.T) {
	m := testModel([]git.FileEntry{entry("a.go")}, nil)
	assert.Equal(t, 0, m.highlight)
	assert.Nil(t, m.focus)
	assert.Equal(t, git.DiffEmpty, m.diff.Kind)
}

func TestInitialStateClean(t *testing.T) {
	m := testModel(nil, nil)
	assert.Equal(t, -1, m.highlight)
	assert.Nil(t, m.focus)
	assert.Equal(t, git.DiffClean, m.diff.Kind)
}

func TestMoveHighlightClamps(t *testing.T) {
	m := testModel([]git.FileEntry{entry("a.go"), entry("b.go")}, nil)

	m = m.moveHighlight(-1)
	assert.Equal(t, 0, m.highlight)
	m = m.moveHighlight(1)
	assert.Equal(t, 1, m.highlight)
	m = m.moveHighlight(10)
	assert.Equal(t, 1, m.highlight)
}

func TestMoveHighlightEmptyListIsNoop(t *testing.T) {
	m := testModel(nil, nil)
	m = m.moveHighlight(1)
	assert.Equal(t, -1, m.highlight)
}

func TestToggleMultiSelect(t *testing.T) {
	m := testModel([]git.FileEntry{entry("a.go")}, []git.FileEntry{entry("b.go")})

	m = m.toggleMultiSelect()
	assert.Len(t, m.multi, 1)
	m = m.toggleMultiSelect()
	assert.Empty(t, m.multi)
}

func TestActionTargetsPrefersMultiSelect(t *testing.T) {
	m := testModel([]git.FileEntry{entry("a.go"), entry("b.go")}, nil)

	targets := m.actionTargets()
	require.Len(t, targets, 1)
	assert.Equal(t, "a.go", targets[0].path)

	m = m.toggleMultiSelect()
	m = m.moveHighlight(1)
	m = m.toggleMultiSelect()
	targets = m.actionTargets()
	assert.Len(t, targets, 2)
}

func TestRefreshClampsHighlightByIndex(t *testing.T) {
	m := testModel([]git.FileEntry{entry("a.go"), entry("b.go"), entry("c.go")}, nil)
	m = m.moveHighlight(2)
	require.Equal(t, 2, m.highlight)

	m = m.applyStatus(&git.StatusResult{StagedFiles: []git.FileEntry{entry("a.go")}, Staged: 1})
	assert.Equal(t, 0, m.highlight)
}

func TestRefreshPreservesFocusByIdentity(t *testing.T) {
	m := testModel([]git.FileEntry{entry("a.go")}, []git.FileEntry{entry("b.go")})
	m.focus = &selKey{section: git.SectionUnstaged, path: "b.go"}

	// b.go survives the refresh, so the focus does too.
	m = m.applyStatus(&git.StatusResult{
		UnstagedFiles: []git.FileEntry{entry("b.go"), entry("z.go")},
		Unstaged:      2,
	})
	require.NotNil(t, m.focus)
	assert.Equal(t, "b.go", m.focus.path)

	// Once it disappears the focus clears and the diff empties.
	m = m.applyStatus(&git.StatusResult{
		UnstagedFiles: []git.FileEntry{entry("z.go")},
		Unstaged:      1,
	})
	assert.Nil(t, m.focus)
	assert.Equal(t, git.DiffEmpty, m.diff.Kind)
	assert.Zero(t, m.diffScroll)
}

func TestRefreshPrunesMultiSelect(t *testing.T) {
	m := testModel([]git.FileEntry{entry("a.go")}, []git.FileEntry{entry("b.go")})
	m = m.toggleMultiSelect()
	m = m.moveHighlight(1)
	m = m.toggleMultiSelect()
	require.Len(t, m.multi, 2)

	m = m.applyStatus(&git.StatusResult{
		StagedFiles: []git.FileEntry{entry("a.go")},
		Staged:      1,
	})
	require.Len(t, m.multi, 1)
	_, ok := m.multi[selKey{section: git.SectionStaged, path: "a.go"}]
	assert.True(t, ok)
}

func TestRefreshToCleanResetsEverything(t *testing.T) {
	m := testModel([]git.FileEntry{entry("a.go")}, []git.FileEntry{entry("b.go")})
	m = m.toggleMultiSelect()
	m.focus = &selKey{section: git.SectionStaged, path: "a.go"}

	m = m.applyStatus(&git.StatusResult{})
	assert.Equal(t, -1, m.highlight)
	assert.Nil(t, m.focus)
	assert.Empty(t, m.multi)
	assert.Equal(t, git.DiffClean, m.diff.Kind)
}

func TestHeadersBefore(t *testing.T) {
	m := testModel([]git.FileEntry{entry("a.go")}, []git.FileEntry{entry("b.go")})
	assert.Equal(t, 1, m.headersBefore(0))
	assert.Equal(t, 2, m.headersBefore(1))

	m = testModel(nil, []git.FileEntry{entry("b.go")})
	assert.Equal(t, 1, m.headersBefore(0))
}

func TestPullConflictRaisesPrompt(t *testing.T) {
	m := newModel(nil, nil)
	m.checkPullConflicts = true

	conflicted := git.FileEntry{Path: "file.txt", Status: git.StatusConflict}
	m = m.applyStatus(&git.StatusResult{
		UnstagedFiles: []git.FileEntry{conflicted},
		Unstaged:      1,
	})
	require.NotNil(t, m.confirm)
	assert.Equal(t, confirmAbortMerge, m.confirm.action)
	assert.Equal(t, "Pull resulted in conflicts. Abort merge? [y/N]", m.confirm.message)
	assert.False(t, m.checkPullConflicts)
}

func TestPullWithoutConflictsRaisesNoPrompt(t *testing.T) {
	m := newModel(nil, nil)
	m.checkPullConflicts = true
	m = m.applyStatus(&git.StatusResult{UnstagedFiles: []git.FileEntry{entry("a.go")}, Unstaged: 1})
	assert.Nil(t, m.confirm)
}

func TestFlashExpiryIgnoresStaleSequence(t *testing.T) {
	m := newModel(nil, nil)
	fm, _ := m.withFlash("one", false)
	fm, _ = fm.withFlash("two", false)

	updated, _ := fm.Update(flashExpiredMsg{seq: 1})
	m2 := updated.(Model)
	require.NotNil(t, m2.flash)
	assert.Equal(t, "two", m2.flash.text)

	updated, _ = m2.Update(flashExpiredMsg{seq: 2})
	m3 := updated.(Model)
	assert.Nil(t, m3.flash)
}

func TestUndoIsSingleUse(t *testing.T) {
	m := newModel(nil, nil)
	assert.Nil(t, m.undo)

	// With no outstanding record, undo is a no-op that touches nothing.
	fm, cmd := m.applyUndo()
	assert.Nil(t, fm.undo)
	assert.Nil(t, cmd)
}

func TestPushFromDetachedHeadIsRejected(t *testing.T) {
	m := newModel(nil, nil)
	m.branch = git.BranchIdentity{Short: "abc1234", Detached: true}

	fm, _ := m.startPush()
	require.NotNil(t, fm.flash)
	assert.True(t, fm.flash.isError)
	assert.Equal(t, "Cannot push from detached HEAD; create a branch first (b)", fm.flash.text)
	assert.Equal(t, modalNone, fm.modal)
}

func TestDiscardPromptCountsTargets(t *testing.T) {
	m := testModel(nil, []git.FileEntry{entry("a.go"), entry("b.go")})
	m = m.toggleMultiSelect()
	m = m.moveHighlight(1)
	m = m.toggleMultiSelect()

	fm, _ := m.promptDiscardSelected()
	require.NotNil(t, fm.confirm)
	assert.Equal(t, "Discard 2 changes? [y/N]", fm.confirm.message)
	assert.Len(t, fm.confirm.paths, 2)
}

func TestDiscardPromptUntrackedWording(t *testing.T) {
	u := git.FileEntry{Path: "new.txt", Status: git.StatusUntracked, HasCounts: true, Added: 2}
	m := testModel(nil, []git.FileEntry{u})

	fm, _ := m.promptDiscardSelected()
	require.NotNil(t, fm.confirm)
	assert.Equal(t, "Delete untracked file? [y/N]", fm.confirm.message)
}

func TestDiscardPromptRefusesConflicts(t *testing.T) {
	c := git.FileEntry{Path: "file.txt", Status: git.StatusConflict}
	m := testModel(nil, []git.FileEntry{c})

	fm, _ := m.promptDiscardSelected()
	assert.Nil(t, fm.confirm)
	require.NotNil(t, fm.flash)
	assert.True(t, fm.flash.isError)
}

func TestDiscardPromptIgnoresStagedTargets(t *testing.T) {
	m := testModel([]git.FileEntry{entry("a.go")}, nil)
	fm, _ := m.promptDiscardSelected()
	assert.Nil(t, fm.confirm)
}

func TestConfirmDismissedByAnyOtherKey(t *testing.T) {
	m := testModel(nil, []git.FileEntry{entry("a.go")})
	fm, _ := m.promptDiscardSelected()
	require.NotNil(t, fm.confirm)

	updated, _ := fm.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m2 := updated.(Model)
	assert.Nil(t, m2.confirm)
}

func TestNavigationKeysDispatch(t *testing.T) {
	m := testModel(nil, []git.FileEntry{entry("a.go"), entry("b.go")})

	updated, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	m2 := updated.(Model)
	assert.Equal(t, 1, m2.highlight)

	updated, _ = m2.handleKey(tea.KeyMsg{Type: tea.KeySpace})
	m3 := updated.(Model)
	assert.Len(t, m3.multi, 1)

	updated, _ = m3.handleKey(tea.KeyMsg{Type: tea.KeyEscape})
	m4 := updated.(Model)
	assert.Empty(t, m4.multi)
}

func TestProgressSwallowsAllButCancel(t *testing.T) {
	m := testModel(nil, []git.FileEntry{entry("a.go")})
	m.modal = modalProgress
	m.opLabel = "Pushing…"

	updated, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m2 := updated.(Model)
	assert.Equal(t, modalProgress, m2.modal)
	assert.False(t, m2.cancelling)

	updated, _ = m2.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	m3 := updated.(Model)
	assert.Equal(t, modalProgress, m3.modal)
	assert.True(t, m3.cancelling)
}

func TestRefreshTickDuringProgressCoalesces(t *testing.T) {
	m := testModel(nil, []git.FileEntry{entry("a.go")})
	m.modal = modalProgress

	updated, _ := m.Update(refreshTickMsg{})
	m2 := updated.(Model)
	assert.True(t, m2.pendingRefresh)
}
