package ui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfields/gst/internal/git"
)

// theme maps the Catppuccin Mocha flavour onto the semantic roles the
// renderer needs. Built once at startup.
type theme struct {
	added     lipgloss.Style
	deleted   lipgloss.Style
	modified  lipgloss.Style
	renamed   lipgloss.Style
	untracked lipgloss.Style
	conflict  lipgloss.Style

	header lipgloss.Style // diff file headers and hunks, branch name
	text   lipgloss.Style
	dim    lipgloss.Style

	statusBar lipgloss.Style
	border    lipgloss.Style
	highlight lipgloss.Style

	flashOK  lipgloss.Style
	flashErr lipgloss.Style
	prompt   lipgloss.Style

	modalBox   lipgloss.Style
	modalTitle lipgloss.Style
	errorText  lipgloss.Style
	help       lipgloss.Style
}

func newTheme() theme {
	mocha := catppuccin.Mocha

	green := lipgloss.Color(mocha.Green().Hex)
	red := lipgloss.Color(mocha.Red().Hex)
	yellow := lipgloss.Color(mocha.Yellow().Hex)
	blue := lipgloss.Color(mocha.Blue().Hex)
	gray := lipgloss.Color(mocha.Overlay2().Hex)
	pink := lipgloss.Color(mocha.Pink().Hex)
	teal := lipgloss.Color(mocha.Teal().Hex)
	text := lipgloss.Color(mocha.Text().Hex)
	surface := lipgloss.Color(mocha.Surface0().Hex)
	overlay := lipgloss.Color(mocha.Overlay0().Hex)

	return theme{
		added:     lipgloss.NewStyle().Foreground(green),
		deleted:   lipgloss.NewStyle().Foreground(red),
		modified:  lipgloss.NewStyle().Foreground(yellow),
		renamed:   lipgloss.NewStyle().Foreground(blue),
		untracked: lipgloss.NewStyle().Foreground(gray),
		conflict:  lipgloss.NewStyle().Foreground(pink),

		header: lipgloss.NewStyle().Foreground(teal),
		text:   lipgloss.NewStyle().Foreground(text),
		dim:    lipgloss.NewStyle().Foreground(gray),

		statusBar: lipgloss.NewStyle().Background(surface),
		border:    lipgloss.NewStyle().Foreground(overlay),
		highlight: lipgloss.NewStyle().Foreground(text).Bold(true),

		flashOK:  lipgloss.NewStyle().Foreground(green),
		flashErr: lipgloss.NewStyle().Foreground(red).Bold(true),
		prompt:   lipgloss.NewStyle().Foreground(yellow).Bold(true),

		modalBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(overlay).
			Padding(0, 1),
		modalTitle: lipgloss.NewStyle().Foreground(teal).Bold(true),
		errorText:  lipgloss.NewStyle().Foreground(red),
		help:       lipgloss.NewStyle().Foreground(gray),
	}
}

// statusStyle picks the colour for a status letter.
func (t theme) statusStyle(s git.FileStatus) lipgloss.Style {
	switch s {
	case git.StatusAdded:
		return t.added
	case git.StatusDeleted:
		return t.deleted
	case git.StatusRenamed:
		return t.renamed
	case git.StatusUntracked:
		return t.untracked
	case git.StatusConflict:
		return t.conflict
	default:
		return t.modified
	}
}
