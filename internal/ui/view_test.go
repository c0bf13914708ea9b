package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfields/gst/internal/git"
)

func TestSharedPrefixDepth(t *testing.T) {
	assert.Equal(t, 0, sharedPrefixDepth("", "a/b.go"))
	assert.Equal(t, 0, sharedPrefixDepth("x.go", "y.go"))
	assert.Equal(t, 1, sharedPrefixDepth("pkg/a.go", "pkg/b.go"))
	assert.Equal(t, 2, sharedPrefixDepth("pkg/sub/a.go", "pkg/sub/b.go"))
	assert.Equal(t, 1, sharedPrefixDepth("pkg/one/a.go", "pkg/two/b.go"))
	assert.Equal(t, 0, sharedPrefixDepth("pkg/a.go", "other/b.go"))
}

func TestFitPathDegradation(t *testing.T) {
	path := "internal/ui/view.go"

	// Plenty of room: full path plus counts.
	name, counts := fitPath(path, path, 5, 40)
	assert.Equal(t, path, name)
	assert.True(t, counts)

	// Path fits alone: counts are dropped first.
	name, counts = fitPath(path, path, 5, 20)
	assert.Equal(t, path, name)
	assert.False(t, counts)

	// Left truncation keeps the last directory and filename.
	name, counts = fitPath(path, path, 0, 12)
	assert.Equal(t, "…/ui/view.go", name)
	assert.False(t, counts)

	// Filename only.
	name, _ = fitPath(path, path, 0, 8)
	assert.Equal(t, "view.go", name)

	// Not even the filename fits.
	name, _ = fitPath(path, path, 0, 1)
	assert.Empty(t, name)
}

func TestFormatCounts(t *testing.T) {
	assert.Equal(t, "+3/-1", formatCounts(git.FileEntry{Added: 3, Deleted: 1, HasCounts: true}))
	assert.Equal(t, "-/-", formatCounts(git.FileEntry{Binary: true}))
	assert.Empty(t, formatCounts(git.FileEntry{}))
}

func TestBuildDiffRowsNumbersAndGutters(t *testing.T) {
	diff := git.DiffContent{Kind: git.DiffText, Lines: []git.DiffLine{
		{Kind: git.LineHeader, Content: "diff --git a/x b/x"},
		{Kind: git.LineHunk, Content: "@@ -1 +1,2 @@"},
		{Kind: git.LineContext, Content: "ctx", NewLine: 1},
		{Kind: git.LineAdded, Content: "new", NewLine: 2},
		{Kind: git.LineDeleted, Content: "gone"},
	}}

	rows := buildDiffRows(diff, 80)
	require.Len(t, rows, 5)

	assert.Equal(t, "   ", rows[0].gutter)
	assert.Equal(t, "  1", rows[2].gutter)
	assert.Equal(t, " ", rows[2].prefix)
	assert.Equal(t, "  2", rows[3].gutter)
	assert.Equal(t, "+", rows[3].prefix)
	assert.Equal(t, "  -", rows[4].gutter)
	assert.Equal(t, "-", rows[4].prefix)
}

func TestBuildDiffRowsWrapsLongLines(t *testing.T) {
	long := strings.Repeat("x", 50)
	diff := git.DiffContent{Kind: git.DiffText, Lines: []git.DiffLine{
		{Kind: git.LineAdded, Content: long, NewLine: 7},
	}}

	// inner width 26 leaves 20 columns of content per visual row.
	rows := buildDiffRows(diff, 26)
	require.Len(t, rows, 3)

	assert.Equal(t, "  7", rows[0].gutter)
	assert.Equal(t, strings.Repeat("x", 20), rows[0].content)
	assert.Equal(t, "   ", rows[1].gutter, "continuation rows carry a blank gutter")
	assert.Equal(t, strings.Repeat("x", 20), rows[1].content)
	assert.Equal(t, strings.Repeat("x", 10), rows[2].content)
}

func TestBuildDiffRowsNonTextKinds(t *testing.T) {
	assert.Nil(t, buildDiffRows(git.DiffContent{Kind: git.DiffBinary}, 80))
	assert.Nil(t, buildDiffRows(git.DiffContent{Kind: git.DiffClean}, 80))
}

func TestMaxDiffScrollClamps(t *testing.T) {
	lines := make([]git.DiffLine, 30)
	for i := range lines {
		lines[i] = git.DiffLine{Kind: git.LineContext, Content: "x", NewLine: i + 1}
	}
	m := newModel(nil, nil)
	m.width = 80
	m.height = 30
	m.diff = git.DiffContent{Kind: git.DiffText, Lines: lines}

	maxScroll := m.maxDiffScroll()
	assert.Equal(t, 30-m.diffInnerHeight(), maxScroll)

	m = m.scrollDiff(1000)
	assert.Equal(t, maxScroll, m.diffScroll)
	m = m.scrollDiff(-1000)
	assert.Zero(t, m.diffScroll)
}

func TestViewTooSmall(t *testing.T) {
	m := newModel(nil, nil)
	m.width = 20
	m.height = 6

	out := m.View()
	assert.Contains(t, out, "Terminal too small")
	assert.Contains(t, out, "needs at least 30x10")
}

func TestViewBeforeFirstResizeIsBlank(t *testing.T) {
	m := newModel(nil, nil)
	assert.Empty(t, m.View())
}

func TestRenderFileRowRenameArrow(t *testing.T) {
	m := testModel([]git.FileEntry{{
		Path:      "renamed.txt",
		OldPath:   "file.txt",
		Status:    git.StatusRenamed,
		HasCounts: true,
	}}, nil)
	m.width = 80
	m.height = 30

	row := m.renderFileRow(m.staged[0], git.SectionStaged, 0, "", 78)
	assert.Contains(t, row, "file.txt → renamed.txt")
	assert.Contains(t, row, "R")
}

func TestRenderFileListShowsSectionHeaders(t *testing.T) {
	m := testModel([]git.FileEntry{entry("a.go")}, []git.FileEntry{entry("b.go")})
	m.width = 80
	m.height = 30

	out := m.renderFileList()
	assert.Contains(t, out, "[STAGED]")
	assert.Contains(t, out, "[UNSTAGED]")

	m = testModel(nil, []git.FileEntry{entry("b.go")})
	m.width = 80
	m.height = 30
	out = m.renderFileList()
	assert.NotContains(t, out, "[STAGED]")
	assert.Contains(t, out, "[UNSTAGED]")
}

func TestStatusBarShowsBranchAndCounts(t *testing.T) {
	m := newModel(nil, nil)
	m.width = 80
	m.height = 30
	m.branch = git.BranchIdentity{Name: "main"}
	m.stagedCount = 2
	m.unstagedCount = 3
	m.untrackedCount = 1

	out := m.renderStatusBar()
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "S:")
	assert.Contains(t, out, "2")
	assert.Contains(t, out, "U:")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "?:")
}

func TestBottomLinePrecedence(t *testing.T) {
	m := newModel(nil, nil)
	m.width = 80
	m.height = 30

	fm, _ := m.withFlash("✓ Staged 1 file", false)
	assert.Contains(t, fm.renderBottomLine(), "✓ Staged 1 file")

	// A prompt hides the flash.
	fm.confirm = &confirmPrompt{message: "Discard changes? [y/N]"}
	line := fm.renderBottomLine()
	assert.Contains(t, line, "Discard changes?")
	assert.NotContains(t, line, "Staged")
}

func TestDiffPanelPlaceholders(t *testing.T) {
	m := newModel(nil, nil)
	m.width = 80
	m.height = 30

	cases := []struct {
		kind git.DiffKind
		want string
	}{
		{git.DiffClean, "No changes"},
		{git.DiffBinary, "Binary file"},
		{git.DiffInvalidUTF8, "invalid UTF-8"},
		{git.DiffConflict, "Conflict"},
	}
	for _, tc := range cases {
		m.diff = git.DiffContent{Kind: tc.kind}
		assert.Contains(t, m.renderDiffPanel(), tc.want)
	}

	m.diff = git.DiffContent{Kind: git.DiffEmpty}
	m.diffErr = "diff generation failed"
	assert.Contains(t, m.renderDiffPanel(), "diff generation failed")
}

func TestHelpModalListsCategories(t *testing.T) {
	m := newModel(nil, nil)
	m.width = 100
	m.height = 40
	m.modal = modalHelp

	out := m.View()
	for _, cat := range []string{"Navigation", "Staging", "Actions", "Remote", "Other"} {
		assert.Contains(t, out, cat)
	}
}

func TestProgressModalShowsLabelAndCancelling(t *testing.T) {
	m := newModel(nil, nil)
	m.width = 80
	m.height = 30
	m.modal = modalProgress
	m.opLabel = "Pushing…"

	assert.Contains(t, m.View(), "Pushing…")

	m.cancelling = true
	assert.Contains(t, m.View(), "Cancelling…")
}
