package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// branchModal is the branch picker: a substring filter over the local
// branches plus a synthetic create row when the typed name is new.
type branchModal struct {
	filter  textinput.Model
	all     []string // alphabetical
	current string
	cursor  int
	err     string
}

// branchRow is one selectable row of the picker.
type branchRow struct {
	name   string
	create bool
}

func (m Model) openBranchModal() (Model, tea.Cmd) {
	branches, err := m.repo.ListLocalBranches()
	if err != nil {
		return m.withError(err)
	}

	fi := textinput.New()
	fi.Placeholder = "filter or new branch name"
	fi.CharLimit = 100
	fi.Width = 40
	fi.Focus()

	m.branches = branchModal{
		filter:  fi,
		all:     branches,
		current: m.repo.CurrentBranch(),
	}
	m.modal = modalBranch
	return m, textinput.Blink
}

// visibleRows filters case-insensitively by substring and appends the
// create row when the exact typed name does not exist.
func (b branchModal) visibleRows() []branchRow {
	filter := strings.TrimSpace(b.filter.Value())
	lower := strings.ToLower(filter)

	var rows []branchRow
	exact := false
	for _, name := range b.all {
		if lower == "" || strings.Contains(strings.ToLower(name), lower) {
			rows = append(rows, branchRow{name: name})
		}
		if name == filter {
			exact = true
		}
	}
	if filter != "" && !exact {
		rows = append(rows, branchRow{name: filter, create: true})
	}
	return rows
}

func (m Model) updateBranchModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.branches

	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil

	case "up":
		if b.cursor > 0 {
			b.cursor--
		}
		m.branches = b
		return m, nil

	case "down":
		if b.cursor < len(b.visibleRows())-1 {
			b.cursor++
		}
		m.branches = b
		return m, nil

	case "enter":
		return m.chooseBranch()
	}

	before := b.filter.Value()
	var cmd tea.Cmd
	b.filter, cmd = b.filter.Update(msg)
	if b.filter.Value() != before {
		b.cursor = 0
		b.err = ""
	}
	m.branches = b
	return m, cmd
}

func (m Model) updateBranchWidgets(msg tea.Msg) (tea.Model, tea.Cmd) {
	b := m.branches
	var cmd tea.Cmd
	b.filter, cmd = b.filter.Update(msg)
	m.branches = b
	return m, cmd
}

func (m Model) chooseBranch() (tea.Model, tea.Cmd) {
	b := m.branches
	rows := b.visibleRows()
	if len(rows) == 0 {
		return m, nil
	}
	if b.cursor >= len(rows) {
		b.cursor = len(rows) - 1
	}
	row := rows[b.cursor]

	if row.create {
		if err := m.repo.CreateAndSwitchBranch(row.name); err != nil {
			b.err = err.Error()
			m.branches = b
			return m, nil
		}
		m.modal = modalNone
		m.undo = nil
		fm, cmd := m.withFlash(fmt.Sprintf("✓ Created branch %s", row.name), false)
		return fm, tea.Batch(cmd, fm.refreshCmd())
	}

	if row.name == b.current {
		m.modal = modalNone
		return m.withFlash(fmt.Sprintf("Already on branch %s", row.name), false)
	}

	if err := m.repo.SwitchBranch(row.name); err != nil {
		b.err = err.Error()
		m.branches = b
		return m, nil
	}
	m.modal = modalNone
	m.undo = nil
	fm, cmd := m.withFlash(fmt.Sprintf("✓ Switched to %s", row.name), false)
	return fm, tea.Batch(cmd, fm.refreshCmd())
}

func (m Model) renderBranchModal() string {
	b := m.branches
	var sb strings.Builder

	sb.WriteString(m.th.modalTitle.Render("Switch branch") + "\n\n")
	sb.WriteString(b.filter.View() + "\n\n")

	rows := b.visibleRows()
	if len(rows) == 0 {
		sb.WriteString(m.th.dim.Render("No matching branches") + "\n")
	}

	const maxVisible = 12
	start := 0
	if b.cursor >= maxVisible {
		start = b.cursor - maxVisible + 1
	}
	for i := start; i < len(rows) && i < start+maxVisible; i++ {
		row := rows[i]

		prefix := "  "
		if i == b.cursor {
			prefix = "> "
		}
		marker := "  "
		if !row.create && row.name == b.current {
			marker = "* "
		}

		label := row.name
		style := m.th.text
		if row.create {
			label = "Create: " + row.name
			style = m.th.added
		}
		if i == b.cursor {
			style = style.Bold(true)
		}
		sb.WriteString(style.Render(prefix+marker+label) + "\n")
	}

	if b.err != "" {
		sb.WriteString("\n" + m.th.errorText.Render(b.err) + "\n")
	}
	sb.WriteString("\n" + m.th.help.Render("↑/↓: move · enter: switch · esc: cancel"))

	box := m.th.modalBox.Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
