package ui

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mfields/gst/internal/git"
	"github.com/mfields/gst/internal/watch"
)

// Model is the single authoritative application state. The bubbletea loop
// serializes every mutation; the watcher and remote commands only feed it
// messages.
type Model struct {
	repo    *git.Repo
	watcher *watch.Watcher

	staged         []git.FileEntry
	unstaged       []git.FileEntry
	stagedCount    int
	unstagedCount  int
	untrackedCount int
	branch         git.BranchIdentity

	rows      []VisibleRow
	highlight int // index into rows, -1 when the list is empty
	focus     *selKey
	multi     map[selKey]struct{}
	listScroll int

	diff       git.DiffContent
	diffErr    string
	diffScroll int

	width  int
	height int

	modal    modalKind
	commit   commitModal
	branches branchModal
	confirm  *confirmPrompt
	flash    *flashMessage
	flashSeq int
	undo     *undoRecord

	spin       spinner.Model
	opLabel    string
	cancelling bool

	// A tick that arrives while a remote operation runs collapses into one
	// refresh applied after completion.
	pendingRefresh     bool
	checkPullConflicts bool
	fatalErr           error

	th theme
}

// Run opens the repository at path, starts the watcher and drives the
// program until quit.
func Run(path string) error {
	repo, err := git.Open(path)
	if err != nil {
		return err
	}
	status, err := repo.GetStatus()
	if err != nil {
		return err
	}

	watcher, werr := watch.New(repo.Root())
	if werr != nil {
		fmt.Fprintf(os.Stderr, "Warning: file watcher initialization failed: %v. Falling back to polling.\n", werr)
		watcher = watch.NewPolling()
	}
	defer watcher.Close()

	m := newModel(repo, watcher)
	m = m.applyStatus(status)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.fatalErr != nil {
		return fm.fatalErr
	}
	return nil
}

func newModel(repo *git.Repo, watcher *watch.Watcher) Model {
	th := newTheme()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = th.header

	return Model{
		repo:      repo,
		watcher:   watcher,
		highlight: -1,
		multi:     map[selKey]struct{}{},
		diff:      git.DiffContent{Kind: git.DiffEmpty},
		spin:      sp,
		th:        th,
	}
}

func (m Model) Init() tea.Cmd {
	return m.waitForTick()
}

func (m Model) waitForTick() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ticks := m.watcher.Ticks
	return func() tea.Msg {
		<-ticks
		return refreshTickMsg{}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		status, err := repo.GetStatus()
		return statusMsg{status: status, err: err}
	}
}

// applyStatus replaces the file lists wholesale and reconciles the three
// cursors: highlight by index (clamped), diff focus by identity,
// multi-select by identity.
func (m Model) applyStatus(s *git.StatusResult) Model {
	m.staged = s.StagedFiles
	m.unstaged = s.UnstagedFiles
	m.stagedCount = s.Staged
	m.unstagedCount = s.Unstaged
	m.untrackedCount = s.Untracked
	m.branch = s.Branch
	m.rows = buildVisibleRows(m.staged, m.unstaged)

	if len(m.rows) == 0 {
		m.highlight = -1
		m.focus = nil
		m.multi = map[selKey]struct{}{}
		m.diff = git.DiffContent{Kind: git.DiffClean}
		m.diffErr = ""
		m.diffScroll = 0
		m.listScroll = 0
	} else {
		for k := range m.multi {
			if !m.rowExists(k) {
				delete(m.multi, k)
			}
		}

		if m.highlight < 0 {
			m.highlight = 0
		} else if m.highlight >= len(m.rows) {
			m.highlight = len(m.rows) - 1
		}

		if m.focus != nil {
			if m.rowExists(*m.focus) {
				m = m.recomputeDiff()
			} else {
				m.focus = nil
				m.diff = git.DiffContent{Kind: git.DiffEmpty}
				m.diffErr = ""
				m.diffScroll = 0
			}
		} else {
			m.diff = git.DiffContent{Kind: git.DiffEmpty}
			m.diffErr = ""
		}

		m = m.scrollListToHighlight()
	}

	if m.checkPullConflicts {
		m.checkPullConflicts = false
		if s.HasConflicts() {
			m.confirm = &confirmPrompt{
				message: "Pull resulted in conflicts. Abort merge? [y/N]",
				action:  confirmAbortMerge,
			}
		}
	}
	return m
}

func (m Model) rowExists(k selKey) bool {
	for _, r := range m.rows {
		if r.Section == k.section && r.Path == k.path {
			return true
		}
	}
	return false
}

func (m Model) entryFor(k selKey) (git.FileEntry, bool) {
	list := m.unstaged
	if k.section == git.SectionStaged {
		list = m.staged
	}
	for _, f := range list {
		if f.Path == k.path {
			return f, true
		}
	}
	return git.FileEntry{}, false
}

// focusHighlighted sets the diff focus to the highlighted row and resets
// the diff scroll.
func (m Model) focusHighlighted() Model {
	if m.highlight < 0 || m.highlight >= len(m.rows) {
		return m
	}
	row := m.rows[m.highlight]
	k := selKey{section: row.Section, path: row.Path}
	m.focus = &k
	m.diffScroll = 0
	return m.recomputeDiff()
}

func (m Model) recomputeDiff() Model {
	if m.focus == nil || m.repo == nil {
		return m
	}
	entry, ok := m.entryFor(*m.focus)
	if !ok {
		return m
	}
	m.diffErr = ""
	dc, err := m.repo.GetDiff(entry, m.focus.section)
	if err != nil {
		m.diffErr = err.Error()
		m.diff = git.DiffContent{Kind: git.DiffEmpty}
		return m
	}
	m.diff = dc
	return m
}

func (m Model) toggleMultiSelect() Model {
	if m.highlight < 0 || m.highlight >= len(m.rows) {
		return m
	}
	row := m.rows[m.highlight]
	k := selKey{section: row.Section, path: row.Path}
	if _, ok := m.multi[k]; ok {
		delete(m.multi, k)
	} else {
		m.multi[k] = struct{}{}
	}
	return m
}

// actionTargets is the target set for stage/unstage/discard: the
// multi-select set when non-empty, else the highlighted row.
func (m Model) actionTargets() []selKey {
	if len(m.multi) > 0 {
		keys := make([]selKey, 0, len(m.multi))
		for k := range m.multi {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].section != keys[j].section {
				return keys[i].section < keys[j].section
			}
			return keys[i].path < keys[j].path
		})
		return keys
	}
	if m.highlight >= 0 && m.highlight < len(m.rows) {
		row := m.rows[m.highlight]
		return []selKey{{section: row.Section, path: row.Path}}
	}
	return nil
}

func (m Model) moveHighlight(delta int) Model {
	if len(m.rows) == 0 {
		return m
	}
	idx := m.highlight
	if idx < 0 {
		idx = 0
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.rows) {
		idx = len(m.rows) - 1
	}
	m.highlight = idx
	return m.scrollListToHighlight()
}

// headersBefore counts the section header lines drawn above the given row
// index, for translating between row and visual positions.
func (m Model) headersBefore(idx int) int {
	headers := 0
	if len(m.staged) > 0 {
		headers++
	}
	if len(m.unstaged) > 0 && idx >= len(m.staged) {
		headers++
	}
	return headers
}

func (m Model) scrollListToHighlight() Model {
	if m.highlight < 0 {
		return m
	}
	visual := m.highlight + m.headersBefore(m.highlight)
	height := m.fileListInnerHeight()
	if visual < m.listScroll {
		m.listScroll = visual
	} else if height > 0 && visual >= m.listScroll+height {
		m.listScroll = visual - height + 1
	}
	return m
}

func (m Model) scrollDiff(delta int) Model {
	maxScroll := m.maxDiffScroll()
	next := m.diffScroll + delta
	if next < 0 {
		next = 0
	}
	if next > maxScroll {
		next = maxScroll
	}
	m.diffScroll = next
	return m
}

func (m Model) withFlash(text string, isError bool) (Model, tea.Cmd) {
	m.flashSeq++
	m.flash = &flashMessage{text: text, isError: isError, shownAt: time.Now()}
	seq := m.flashSeq
	return m, tea.Tick(flashTimeout, func(time.Time) tea.Msg { return flashExpiredMsg{seq: seq} })
}

func (m Model) withError(err error) (Model, tea.Cmd) {
	return m.withFlash(err.Error(), true)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// ---- staging actions ----

func (m Model) stageSelected() (Model, tea.Cmd) {
	var paths []string
	for _, k := range m.actionTargets() {
		if k.section == git.SectionUnstaged {
			paths = append(paths, k.path)
		}
	}
	if len(paths) == 0 {
		return m, nil
	}
	if err := m.repo.Stage(paths); err != nil {
		return m.withError(err)
	}
	m.undo = &undoRecord{kind: undoStage, paths: paths}
	m.multi = map[selKey]struct{}{}
	fm, cmd := m.withFlash(fmt.Sprintf("✓ Staged %d file%s", len(paths), plural(len(paths))), false)
	return fm, tea.Batch(cmd, fm.refreshCmd())
}

func (m Model) unstageSelected() (Model, tea.Cmd) {
	var paths []string
	for _, k := range m.actionTargets() {
		if k.section == git.SectionStaged {
			paths = append(paths, k.path)
		}
	}
	if len(paths) == 0 {
		return m, nil
	}
	if err := m.repo.Unstage(paths); err != nil {
		return m.withError(err)
	}
	m.undo = &undoRecord{kind: undoUnstage, paths: paths}
	m.multi = map[selKey]struct{}{}
	fm, cmd := m.withFlash(fmt.Sprintf("✓ Unstaged %d file%s", len(paths), plural(len(paths))), false)
	return fm, tea.Batch(cmd, fm.refreshCmd())
}

func (m Model) applyUndo() (Model, tea.Cmd) {
	if m.undo == nil {
		return m, nil
	}
	record := *m.undo
	n := len(record.paths)
	switch record.kind {
	case undoStage:
		if err := m.repo.Unstage(record.paths); err != nil {
			return m.withError(err)
		}
		m.undo = nil
		fm, cmd := m.withFlash(fmt.Sprintf("✓ Undid stage of %d file%s", n, plural(n)), false)
		return fm, tea.Batch(cmd, fm.refreshCmd())
	default:
		if err := m.repo.Stage(record.paths); err != nil {
			return m.withError(err)
		}
		m.undo = nil
		fm, cmd := m.withFlash(fmt.Sprintf("✓ Undid unstage of %d file%s", n, plural(n)), false)
		return fm, tea.Batch(cmd, fm.refreshCmd())
	}
}

// ---- confirmation prompts ----

func (m Model) promptStageAll() Model {
	n := len(m.unstaged)
	if n == 0 {
		return m
	}
	m.confirm = &confirmPrompt{
		message: fmt.Sprintf("Stage %d file%s? [y/N]", n, plural(n)),
		action:  confirmStageAll,
	}
	return m
}

func (m Model) promptUnstageAll() Model {
	n := len(m.staged)
	if n == 0 {
		return m
	}
	m.confirm = &confirmPrompt{
		message: fmt.Sprintf("Unstage %d file%s? [y/N]", n, plural(n)),
		action:  confirmUnstageAll,
	}
	return m
}

func (m Model) promptDiscardSelected() (Model, tea.Cmd) {
	var targets []selKey
	for _, k := range m.actionTargets() {
		if k.section == git.SectionUnstaged {
			targets = append(targets, k)
		}
	}
	if len(targets) == 0 {
		return m, nil
	}

	hasUntracked := false
	for _, k := range targets {
		entry, ok := m.entryFor(k)
		if !ok {
			continue
		}
		if entry.Status == git.StatusConflict {
			return m.withFlash("Cannot discard conflicted files. Resolve conflicts first.", true)
		}
		if entry.Status == git.StatusUntracked {
			hasUntracked = true
		}
	}

	n := len(targets)
	var message string
	switch {
	case n == 1 && hasUntracked:
		message = "Delete untracked file? [y/N]"
	case n == 1:
		message = "Discard changes? [y/N]"
	case hasUntracked:
		message = fmt.Sprintf("Discard %d changes (including untracked files)? [y/N]", n)
	default:
		message = fmt.Sprintf("Discard %d changes? [y/N]", n)
	}

	m.confirm = &confirmPrompt{message: message, action: confirmDiscardSelected, paths: targets}
	return m, nil
}

func (m Model) promptDiscardAll() Model {
	n := len(m.unstaged)
	if n == 0 {
		return m
	}
	hasUntracked := false
	for _, f := range m.unstaged {
		if f.Status == git.StatusUntracked {
			hasUntracked = true
			break
		}
	}
	message := fmt.Sprintf("Discard all changes (%d files)? [y/N]", n)
	if hasUntracked {
		message = fmt.Sprintf("Discard all changes and delete untracked files (%d files)? [y/N]", n)
	}
	m.confirm = &confirmPrompt{message: message, action: confirmDiscardAll}
	return m
}

func (m Model) promptForcePush() Model {
	m.confirm = &confirmPrompt{
		message: "Force push? This may overwrite remote commits. [y/N]",
		action:  confirmForcePush,
	}
	return m
}

// applyConfirm consumes the active prompt. A dismissal simply drops it.
func (m Model) applyConfirm(confirmed bool) (Model, tea.Cmd) {
	prompt := m.confirm
	m.confirm = nil
	if prompt == nil || !confirmed {
		return m, nil
	}

	switch prompt.action {
	case confirmStageAll:
		paths, err := m.repo.StageAll()
		if err != nil {
			return m.withError(err)
		}
		if len(paths) > 0 {
			m.undo = &undoRecord{kind: undoStage, paths: paths}
		}
		m.multi = map[selKey]struct{}{}
		fm, cmd := m.withFlash(fmt.Sprintf("✓ Staged %d file%s", len(paths), plural(len(paths))), false)
		return fm, tea.Batch(cmd, fm.refreshCmd())

	case confirmUnstageAll:
		paths, err := m.repo.UnstageAll()
		if err != nil {
			return m.withError(err)
		}
		if len(paths) > 0 {
			m.undo = &undoRecord{kind: undoUnstage, paths: paths}
		}
		m.multi = map[selKey]struct{}{}
		fm, cmd := m.withFlash(fmt.Sprintf("✓ Unstaged %d file%s", len(paths), plural(len(paths))), false)
		return fm, tea.Batch(cmd, fm.refreshCmd())

	case confirmDiscardSelected:
		return m.discardTargets(prompt.paths)

	case confirmDiscardAll:
		discarded, skipped, err := m.repo.DiscardAllUnstaged()
		m.undo = nil
		m.multi = map[selKey]struct{}{}
		if err != nil {
			fm, cmd := m.withError(err)
			return fm, tea.Batch(cmd, fm.refreshCmd())
		}
		n := len(discarded)
		var fm Model
		var cmd tea.Cmd
		switch {
		case n > 0 && skipped > 0:
			fm, cmd = m.withFlash(fmt.Sprintf("✓ Discarded %d file%s (%d conflict%s skipped)", n, plural(n), skipped, plural(skipped)), false)
		case n > 0:
			fm, cmd = m.withFlash(fmt.Sprintf("✓ Discarded %d file%s", n, plural(n)), false)
		default:
			fm, cmd = m.withFlash(fmt.Sprintf("No files discarded (%d conflict%s skipped)", skipped, plural(skipped)), true)
		}
		return fm, tea.Batch(cmd, fm.refreshCmd())

	case confirmForcePush:
		return m.startRemote(remoteForcePush)

	case confirmAbortMerge:
		if err := m.repo.AbortMerge(); err != nil {
			fm, cmd := m.withError(err)
			return fm, tea.Batch(cmd, fm.refreshCmd())
		}
		fm, cmd := m.withFlash("✓ Merge aborted", false)
		return fm, tea.Batch(cmd, fm.refreshCmd())
	}
	return m, nil
}

func (m Model) discardTargets(targets []selKey) (Model, tea.Cmd) {
	count := 0
	for _, k := range targets {
		if k.section != git.SectionUnstaged {
			continue
		}
		entry, ok := m.entryFor(k)
		if !ok {
			continue
		}
		var err error
		if entry.Status == git.StatusUntracked {
			err = m.repo.DiscardUntracked(entry.Path)
		} else {
			err = m.repo.DiscardUnstaged(entry.Path, entry.OldPath)
		}
		if err != nil {
			fm, cmd := m.withError(err)
			return fm, tea.Batch(cmd, fm.refreshCmd())
		}
		count++
	}
	m.undo = nil
	m.multi = map[selKey]struct{}{}
	if count == 0 {
		return m, m.refreshCmd()
	}
	fm, cmd := m.withFlash(fmt.Sprintf("✓ Discarded %d file%s", count, plural(count)), false)
	return fm, tea.Batch(cmd, fm.refreshCmd())
}

// ---- remote operations ----

func (m Model) startPush() (Model, tea.Cmd) {
	if m.branch.Detached {
		return m.withFlash("Cannot push from detached HEAD; create a branch first (b)", true)
	}
	if !m.repo.HasRemoteOrigin() {
		return m.withFlash("No remote \"origin\" configured", true)
	}
	return m.startRemote(remotePush)
}

func (m Model) startForcePush() (Model, tea.Cmd) {
	if m.branch.Detached {
		return m.withFlash("Cannot push from detached HEAD; create a branch first (b)", true)
	}
	if !m.repo.HasRemoteOrigin() {
		return m.withFlash("No remote \"origin\" configured", true)
	}
	return m.promptForcePush(), nil
}

func (m Model) startPull() (Model, tea.Cmd) {
	if !m.repo.HasRemoteOrigin() {
		return m.withFlash("No remote \"origin\" configured", true)
	}
	return m.startRemote(remotePull)
}

func (m Model) startRemote(op remoteOp) (Model, tea.Cmd) {
	m.modal = modalProgress
	m.cancelling = false
	switch op {
	case remotePush:
		m.opLabel = "Pushing…"
	case remoteForcePush:
		m.opLabel = "Force pushing…"
	default:
		m.opLabel = "Pulling…"
	}

	repo := m.repo
	runOp := func() tea.Msg {
		var err error
		switch op {
		case remotePush:
			err = repo.Push()
		case remoteForcePush:
			err = repo.ForcePush()
		default:
			err = repo.Pull()
		}
		return remoteDoneMsg{op: op, err: err}
	}
	return m, tea.Batch(m.spin.Tick, runOp)
}

func (m Model) finishRemote(msg remoteDoneMsg) (Model, tea.Cmd) {
	m.modal = modalNone
	m.cancelling = false
	m.opLabel = ""
	m.undo = nil
	m.pendingRefresh = false
	if msg.op == remotePull {
		m.checkPullConflicts = true
	}

	if msg.err != nil {
		fm, cmd := m.withError(msg.err)
		return fm, tea.Batch(cmd, fm.refreshCmd())
	}

	var text string
	switch msg.op {
	case remotePush:
		text = "✓ Pushed"
	case remoteForcePush:
		text = "✓ Force pushed"
	default:
		text = "✓ Pulled"
	}
	fm, cmd := m.withFlash(text, false)
	return fm, tea.Batch(cmd, fm.refreshCmd())
}

// ---- stash ----

func (m Model) stashPush() (Model, tea.Cmd) {
	dirty, err := m.repo.HasUncommittedChanges()
	if err != nil {
		return m.withError(err)
	}
	if !dirty {
		return m.withFlash("Nothing to stash", true)
	}
	if err := m.repo.StashPushIncludingUntracked(); err != nil {
		return m.withError(err)
	}
	m.undo = nil
	fm, cmd := m.withFlash("✓ Stashed changes", false)
	return fm, tea.Batch(cmd, fm.refreshCmd())
}

func (m Model) stashPop() (Model, tea.Cmd) {
	if !m.repo.HasStashes() {
		return m.withFlash("No stashes to pop", true)
	}
	if err := m.repo.StashPop(); err != nil {
		fm, cmd := m.withError(err)
		return fm, tea.Batch(cmd, fm.refreshCmd())
	}
	m.undo = nil
	fm, cmd := m.withFlash("✓ Stash popped", false)
	return fm, tea.Batch(cmd, fm.refreshCmd())
}
