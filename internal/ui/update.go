package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mfields/gst/internal/git"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.scrollListToHighlight(), nil

	case refreshTickMsg:
		if m.modal == modalProgress {
			m.pendingRefresh = true
			return m, m.waitForTick()
		}
		return m, tea.Batch(m.refreshCmd(), m.waitForTick())

	case statusMsg:
		if msg.err != nil {
			if m.watcher.Polling {
				if _, openErr := git.Open(m.repo.Root()); openErr != nil {
					m.fatalErr = openErr
					return m, tea.Quit
				}
			}
			fm, cmd := m.withError(msg.err)
			return fm, cmd
		}
		return m.applyStatus(msg.status), nil

	case remoteDoneMsg:
		return m.finishRemote(msg)

	case flashExpiredMsg:
		if m.flash != nil && msg.seq == m.flashSeq {
			m.flash = nil
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	default:
		if m.modal == modalProgress {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m.updateModal(msg)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// The progress overlay swallows everything except the cancellation
	// signal; the child process is never interrupted.
	if m.modal == modalProgress {
		if key == "ctrl+c" {
			m.cancelling = true
		}
		return m, nil
	}

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.confirm != nil {
		if key == "q" {
			return m, tea.Quit
		}
		confirmed := key == "y" || key == "Y"
		return m.applyConfirm(confirmed)
	}

	switch m.modal {
	case modalCommit:
		return m.updateCommitModal(msg)
	case modalBranch:
		return m.updateBranchModal(msg)
	case modalHelp:
		if key == "q" {
			return m, tea.Quit
		}
		if key == "esc" || key == "?" {
			m.modal = modalNone
		}
		return m, nil
	}

	// Any key press clears the current flash before it is handled.
	m.flash = nil

	switch key {
	case "q":
		return m, tea.Quit

	case "up", "k":
		return m.moveHighlight(-1), nil
	case "down", "j":
		return m.moveHighlight(1), nil

	case "enter":
		return m.focusHighlighted(), nil

	case " ":
		return m.toggleMultiSelect(), nil

	case "esc":
		m.multi = map[selKey]struct{}{}
		return m, nil

	case "pgdown":
		return m.scrollDiff(m.diffInnerHeight()), nil
	case "pgup":
		return m.scrollDiff(-m.diffInnerHeight()), nil

	case "s":
		return m.stageSelected()
	case "u":
		return m.unstageSelected()
	case "d":
		return m.promptDiscardSelected()
	case "S":
		return m.promptStageAll(), nil
	case "U":
		return m.promptUnstageAll(), nil
	case "D":
		return m.promptDiscardAll(), nil

	case "c":
		return m.openCommitModal()
	case "b":
		return m.openBranchModal()

	case "p":
		return m.startPush()
	case "P":
		return m.startForcePush()
	case "l":
		return m.startPull()

	case "z":
		return m.stashPush()
	case "Z":
		return m.stashPop()

	case "ctrl+z":
		return m.applyUndo()

	case "r":
		return m, m.refreshCmd()

	case "?":
		m.modal = modalHelp
		return m, nil
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.modal != modalNone || m.confirm != nil {
		return m, nil
	}
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if m.inFileList(msg.Y) {
			return m.clickFileList(msg.Y), nil
		}
		return m, nil
	}
	if msg.Button != tea.MouseButtonWheelUp && msg.Button != tea.MouseButtonWheelDown {
		return m, nil
	}
	delta := 3
	if msg.Button == tea.MouseButtonWheelUp {
		delta = -3
	}
	switch {
	case m.inFileList(msg.Y):
		return m.moveHighlight(delta), nil
	case m.inDiff(msg.Y):
		return m.scrollDiff(delta), nil
	}
	return m, nil
}

func (m Model) inFileList(y int) bool {
	return y >= 1 && y < 1+m.fileListHeight()
}

func (m Model) inDiff(y int) bool {
	top := 1 + m.fileListHeight()
	return y >= top && y < top+m.diffHeight()
}

// clickFileList maps a terminal row inside the file list to a visible row,
// accounting for the border, scroll offset and section headers.
func (m Model) clickFileList(y int) Model {
	inner := y - 2 // status bar + top border
	if inner < 0 {
		return m
	}
	visual := m.listScroll + inner

	idx := visual
	if len(m.staged) > 0 {
		if visual == 0 {
			return m // staged header
		}
		idx = visual - 1
	}
	if len(m.staged) > 0 && len(m.unstaged) > 0 {
		unstagedHeader := 1 + len(m.staged)
		if visual == unstagedHeader {
			return m
		}
		if visual > unstagedHeader {
			idx = visual - 2
		}
	} else if len(m.staged) == 0 && len(m.unstaged) > 0 {
		if visual == 0 {
			return m
		}
		idx = visual - 1
	}

	if idx < 0 || idx >= len(m.rows) {
		return m
	}
	m.highlight = idx
	return m.focusHighlighted()
}

// updateModal forwards non-key messages (cursor blink and friends) to the
// active modal's widgets.
func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalCommit:
		return m.updateCommitWidgets(msg)
	case modalBranch:
		return m.updateBranchWidgets(msg)
	}
	return m, nil
}
