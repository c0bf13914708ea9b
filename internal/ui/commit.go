package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const commitTitleSoftLimit = 50

const (
	commitFocusTitle = iota
	commitFocusBody
	commitFocusAmend
)

// commitModal holds the commit form. Validation failures and command errors
// render inline and keep the fields intact.
type commitModal struct {
	title textinput.Model
	body  textarea.Model
	focus int
	amend bool
	err   string
}

func (m Model) openCommitModal() (Model, tea.Cmd) {
	ti := textinput.New()
	ti.Placeholder = "Commit title"
	ti.CharLimit = 200
	ti.Width = 56
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Body (optional)"
	ta.SetWidth(58)
	ta.SetHeight(5)
	ta.ShowLineNumbers = false

	m.commit = commitModal{title: ti, body: ta}
	m.modal = modalCommit
	return m, textinput.Blink
}

func (m Model) updateCommitModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.commit

	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil

	case "ctrl+s":
		return m.submitCommit()

	case "tab":
		c.focus = (c.focus + 1) % 3
		m.commit = syncCommitFocus(c)
		return m, nil

	case "shift+tab":
		c.focus = (c.focus + 2) % 3
		m.commit = syncCommitFocus(c)
		return m, nil

	case "enter":
		switch c.focus {
		case commitFocusTitle:
			c.focus = commitFocusBody
			m.commit = syncCommitFocus(c)
			return m, nil
		case commitFocusAmend:
			return m.toggleAmend()
		}

	case " ":
		if c.focus == commitFocusAmend {
			return m.toggleAmend()
		}
	}

	var cmd tea.Cmd
	switch c.focus {
	case commitFocusTitle:
		c.title, cmd = c.title.Update(msg)
	case commitFocusBody:
		c.body, cmd = c.body.Update(msg)
	}
	m.commit = c
	return m, cmd
}

// updateCommitWidgets forwards non-key messages such as cursor blinks.
func (m Model) updateCommitWidgets(msg tea.Msg) (tea.Model, tea.Cmd) {
	c := m.commit
	var cmd tea.Cmd
	switch c.focus {
	case commitFocusTitle:
		c.title, cmd = c.title.Update(msg)
	case commitFocusBody:
		c.body, cmd = c.body.Update(msg)
	}
	m.commit = c
	return m, cmd
}

func syncCommitFocus(c commitModal) commitModal {
	c.title.Blur()
	c.body.Blur()
	switch c.focus {
	case commitFocusTitle:
		c.title.Focus()
	case commitFocusBody:
		c.body.Focus()
	}
	return c
}

// toggleAmend flips the amend flag; switching it on prefills empty fields
// from the tip commit message.
func (m Model) toggleAmend() (Model, tea.Cmd) {
	c := m.commit
	c.amend = !c.amend
	if c.amend && c.title.Value() == "" && c.body.Value() == "" {
		title, body := m.repo.TipMessage()
		c.title.SetValue(title)
		c.body.SetValue(body)
	}
	m.commit = c
	return m, nil
}

func (m Model) submitCommit() (Model, tea.Cmd) {
	c := m.commit
	title := strings.TrimSpace(c.title.Value())

	if title == "" {
		c.err = "Commit title cannot be empty"
		m.commit = c
		return m, nil
	}
	if len(m.staged) == 0 && !c.amend {
		c.err = "No staged changes to commit"
		m.commit = c
		return m, nil
	}

	if err := m.repo.Commit(title, strings.TrimRight(c.body.Value(), "\n"), c.amend); err != nil {
		c.err = err.Error()
		m.commit = c
		return m, nil
	}

	m.modal = modalNone
	m.undo = nil
	fm, cmd := m.withFlash(fmt.Sprintf("Committed: %q", title), false)
	return fm, tea.Batch(cmd, fm.refreshCmd())
}

func (m Model) renderCommitModal() string {
	c := m.commit
	var b strings.Builder

	b.WriteString(m.th.modalTitle.Render("Commit") + "\n\n")

	if len(m.staged) > 0 {
		b.WriteString(m.th.dim.Render("Staged:") + "\n")
		const maxListed = 8
		for i, f := range m.staged {
			if i == maxListed {
				b.WriteString(m.th.dim.Render(fmt.Sprintf("  … and %d more", len(m.staged)-maxListed)) + "\n")
				break
			}
			line := fmt.Sprintf("  %s %s", f.Status.Symbol(), f.Path)
			b.WriteString(m.th.statusStyle(f.Status).Render(line) + "\n")
		}
		b.WriteString("\n")
	}

	counter := fmt.Sprintf("%d/%d", len([]rune(c.title.Value())), commitTitleSoftLimit)
	counterStyle := m.th.dim
	if len([]rune(c.title.Value())) > commitTitleSoftLimit {
		counterStyle = m.th.modified
	}
	b.WriteString(m.th.text.Render("Title ") + counterStyle.Render(counter) + "\n")
	b.WriteString(c.title.View() + "\n\n")

	b.WriteString(m.th.text.Render("Body") + "\n")
	b.WriteString(c.body.View() + "\n\n")

	check := "[ ]"
	if c.amend {
		check = "[x]"
	}
	amendLine := fmt.Sprintf("%s Amend last commit", check)
	if c.focus == commitFocusAmend {
		amendLine = "> " + amendLine
	} else {
		amendLine = "  " + amendLine
	}
	b.WriteString(m.th.text.Render(amendLine) + "\n")

	if c.err != "" {
		b.WriteString("\n" + m.th.errorText.Render(c.err) + "\n")
	}

	b.WriteString("\n" + m.th.help.Render("tab: next field · ctrl+s: commit · esc: cancel"))

	box := m.th.modalBox.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
