package ui

import (
	"time"

	"github.com/mfields/gst/internal/git"
)

// VisibleRow is the flattened projection the cursor moves over: staged
// entries first, then unstaged. Section headers never occupy a row.
type VisibleRow struct {
	Section git.Section
	Path    string
	Index   int // index into the source section's list
}

func buildVisibleRows(staged, unstaged []git.FileEntry) []VisibleRow {
	rows := make([]VisibleRow, 0, len(staged)+len(unstaged))
	for i, f := range staged {
		rows = append(rows, VisibleRow{Section: git.SectionStaged, Path: f.Path, Index: i})
	}
	for i, f := range unstaged {
		rows = append(rows, VisibleRow{Section: git.SectionUnstaged, Path: f.Path, Index: i})
	}
	return rows
}

// selKey identifies a file entry across refreshes: diff focus and
// multi-select both key on it.
type selKey struct {
	section git.Section
	path    string
}

type confirmAction int

const (
	confirmStageAll confirmAction = iota
	confirmUnstageAll
	confirmDiscardAll
	confirmDiscardSelected
	confirmForcePush
	confirmAbortMerge
)

// confirmPrompt blocks ordinary key handling until y/Y confirms or any
// other key dismisses. At most one is active.
type confirmPrompt struct {
	message string
	action  confirmAction
	paths   []selKey // targets captured when the prompt was raised
}

// flashMessage is the transient bottom-line banner.
type flashMessage struct {
	text    string
	isError bool
	shownAt time.Time
}

const flashTimeout = 2500 * time.Millisecond

type undoKind int

const (
	undoStage undoKind = iota
	undoUnstage
)

// undoRecord is the single outstanding reversible staging action. Any other
// mutating operation clears it.
type undoRecord struct {
	kind  undoKind
	paths []string
}

type modalKind int

const (
	modalNone modalKind = iota
	modalCommit
	modalBranch
	modalHelp
	modalProgress
)

// Messages multiplexed by the event loop.

type refreshTickMsg struct{}

type statusMsg struct {
	status *git.StatusResult
	err    error
}

type remoteOp int

const (
	remotePush remoteOp = iota
	remoteForcePush
	remotePull
)

type remoteDoneMsg struct {
	op  remoteOp
	err error
}

type flashExpiredMsg struct{ seq int }
