package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpEntry struct {
	key  string
	desc string
}

type helpCategory struct {
	name    string
	entries []helpEntry
}

var helpCategories = []helpCategory{
	{"Navigation", []helpEntry{
		{"↑/↓", "move highlight"},
		{"enter", "show diff for highlighted file"},
		{"pgup/pgdn", "scroll diff"},
		{"space", "toggle multi-select"},
		{"esc", "clear multi-select"},
	}},
	{"Staging", []helpEntry{
		{"s / u", "stage / unstage selection"},
		{"S / U", "stage all / unstage all"},
		{"d / D", "discard selection / discard all unstaged"},
		{"ctrl+z", "undo last stage or unstage"},
	}},
	{"Actions", []helpEntry{
		{"c", "commit staged changes"},
		{"b", "switch or create branch"},
		{"z / Z", "stash push / stash pop"},
	}},
	{"Remote", []helpEntry{
		{"p / P", "push / force push"},
		{"l", "pull"},
	}},
	{"Other", []helpEntry{
		{"r", "refresh now"},
		{"?", "toggle this help"},
		{"q", "quit"},
	}},
}

func (m Model) renderHelpModal() string {
	var b strings.Builder
	b.WriteString(m.th.modalTitle.Render("Keybindings") + "\n")

	for _, cat := range helpCategories {
		b.WriteString("\n" + m.th.header.Render(cat.name) + "\n")
		for _, e := range cat.entries {
			key := e.key + strings.Repeat(" ", maxInt(0, 10-len([]rune(e.key))))
			b.WriteString("  " + m.th.text.Bold(true).Render(key) + m.th.dim.Render(e.desc) + "\n")
		}
	}

	b.WriteString("\n" + m.th.help.Render("esc or ? to close"))

	box := m.th.modalBox.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
