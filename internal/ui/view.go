package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/mfields/gst/internal/git"
)

const (
	minWidth  = 30
	minHeight = 10
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.width < minWidth || m.height < minHeight {
		return m.renderTooSmall()
	}

	switch m.modal {
	case modalCommit:
		return m.renderCommitModal()
	case modalBranch:
		return m.renderBranchModal()
	case modalHelp:
		return m.renderHelpModal()
	case modalProgress:
		return m.renderProgressModal()
	}

	return strings.Join([]string{
		m.renderStatusBar(),
		m.renderFileList(),
		m.renderDiffPanel(),
		m.renderBottomLine(),
	}, "\n")
}

// ---- layout ----

// fileListHeight is the total bordered height of the file list, capped at a
// third of the screen.
func (m Model) fileListHeight() int {
	needed := 0
	if len(m.staged) > 0 {
		needed += 1 + len(m.staged)
	}
	if len(m.unstaged) > 0 {
		needed += 1 + len(m.unstaged)
	}
	if needed == 0 {
		needed = 1
	}
	maxH := m.height / 3
	if maxH < 5 {
		maxH = 5
	}
	h := needed + 2
	if h > maxH {
		h = maxH
	}
	return h
}

func (m Model) fileListInnerHeight() int {
	h := m.fileListHeight() - 2
	if h < 1 {
		h = 1
	}
	return h
}

// diffHeight is the bordered height of the diff panel: everything between
// the status bar and the bottom line.
func (m Model) diffHeight() int {
	h := m.height - 2 - m.fileListHeight()
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) diffInnerHeight() int {
	h := m.diffHeight() - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) diffInnerWidth() int {
	w := m.width - 2
	if w < 1 {
		w = 1
	}
	return w
}

func (m Model) renderTooSmall() string {
	msg := m.th.dim.Render("Terminal too small") + "\n" +
		m.th.dim.Render(fmt.Sprintf("needs at least %dx%d", minWidth, minHeight))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}

// ---- status bar ----

func (m Model) renderStatusBar() string {
	bar := m.th.statusBar
	left := bar.Inherit(m.th.header).Bold(true).Render(" "+m.branch.Display()) +
		bar.Render("  ") +
		bar.Inherit(m.th.text).Render("S:") +
		bar.Inherit(m.th.added).Render(fmt.Sprintf("%d", m.stagedCount)) +
		bar.Render(" ") +
		bar.Inherit(m.th.text).Render("U:") +
		bar.Inherit(m.th.modified).Render(fmt.Sprintf("%d", m.unstagedCount)) +
		bar.Render(" ") +
		bar.Inherit(m.th.text).Render("?:") +
		bar.Inherit(m.th.untracked).Render(fmt.Sprintf("%d", m.untrackedCount))

	right := bar.Inherit(m.th.dim).Render("? help  q quit ")

	gap := m.width - ansi.PrintableRuneWidth(left) - ansi.PrintableRuneWidth(right)
	if gap < 1 {
		right = ""
		gap = m.width - ansi.PrintableRuneWidth(left)
	}
	if gap < 0 {
		gap = 0
	}
	return left + bar.Render(strings.Repeat(" ", gap)) + right
}

// ---- file list ----

func (m Model) renderFileList() string {
	inner := m.fileListInnerWidth()
	var lines []string

	appendSection := func(section git.Section, header string, files []git.FileEntry, base int) {
		if len(files) == 0 {
			return
		}
		lines = append(lines, m.th.header.Bold(true).Render(header))
		prevPath := ""
		for i, f := range files {
			idx := base + i
			lines = append(lines, m.renderFileRow(f, section, idx, prevPath, inner))
			prevPath = f.Path
		}
	}

	appendSection(git.SectionStaged, "[STAGED]", m.staged, 0)
	appendSection(git.SectionUnstaged, "[UNSTAGED]", m.unstaged, len(m.staged))

	if len(lines) == 0 {
		lines = []string{m.th.dim.Render("working tree clean")}
	}

	height := m.fileListInnerHeight()
	start := m.listScroll
	if start > len(lines)-1 {
		start = len(lines) - 1
	}
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > len(lines) {
		end = len(lines)
	}

	content := strings.Join(lines[start:end], "\n")
	return m.panelBox().Width(inner).Height(height).Render(content)
}

func (m Model) fileListInnerWidth() int {
	w := m.width - 2
	if w < 1 {
		w = 1
	}
	return w
}

func (m Model) panelBox() lipgloss.Style {
	return m.th.modalBox.Padding(0)
}

// renderFileRow builds one row: marker (2 cells), status letter, visual
// indent, path (with "old → new" for renames) and right-justified counts.
func (m Model) renderFileRow(f git.FileEntry, section git.Section, idx int, prevPath string, width int) string {
	key := selKey{section: section, path: f.Path}
	highlighted := idx == m.highlight
	_, multiSelected := m.multi[key]
	focused := m.focus != nil && *m.focus == key

	marker := " "
	if highlighted {
		marker = ">"
	}
	glyph := " "
	switch {
	case multiSelected:
		glyph = "◆"
	case focused:
		glyph = "●"
	}

	indent := strings.Repeat("  ", minInt(sharedPrefixDepth(prevPath, f.Path), 4))

	name := f.Path
	if f.Status == git.StatusRenamed && f.OldPath != "" {
		name = f.OldPath + " → " + f.Path
	}

	counts := formatCounts(f)
	avail := width - 4 - len(indent)
	name, showCounts := fitPath(name, f.Path, len([]rune(counts)), avail)

	rowStyle := m.th.text
	if highlighted {
		rowStyle = m.th.highlight
	}

	var b strings.Builder
	b.WriteString(rowStyle.Render(marker))
	b.WriteString(m.th.header.Render(glyph))
	b.WriteString(m.th.statusStyle(f.Status).Render(f.Status.Symbol()))
	b.WriteString(" ")
	b.WriteString(indent)
	b.WriteString(rowStyle.Render(name))

	if showCounts && counts != "" {
		pad := avail - len([]rune(name)) - len([]rune(counts))
		if pad < 1 {
			pad = 1
		}
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(m.th.dim.Render(counts))
	}
	return b.String()
}

func formatCounts(f git.FileEntry) string {
	if f.Binary {
		return "-/-"
	}
	if !f.HasCounts {
		return ""
	}
	return fmt.Sprintf("+%d/-%d", f.Added, f.Deleted)
}

// sharedPrefixDepth counts the leading directory components two paths have
// in common; it drives the purely visual indentation.
func sharedPrefixDepth(prev, cur string) int {
	if prev == "" {
		return 0
	}
	prevDirs := strings.Split(prev, "/")
	curDirs := strings.Split(cur, "/")
	prevDirs = prevDirs[:len(prevDirs)-1]
	curDirs = curDirs[:len(curDirs)-1]

	depth := 0
	for depth < len(prevDirs) && depth < len(curDirs) && prevDirs[depth] == curDirs[depth] {
		depth++
	}
	return depth
}

// fitPath degrades the displayed path when width runs out: first the counts
// go, then the path is truncated from the left keeping at least the last
// directory and filename, then the filename alone, then nothing (the status
// symbol still shows).
func fitPath(display, path string, countsLen, avail int) (string, bool) {
	runes := []rune(display)
	if len(runes)+countsLen+1 <= avail {
		return display, true
	}
	if len(runes) <= avail {
		return display, false
	}

	parts := strings.Split(path, "/")
	tail := parts[len(parts)-1]
	if len(parts) >= 2 {
		withDir := "…/" + parts[len(parts)-2] + "/" + tail
		if len([]rune(withDir)) <= avail {
			return withDir, false
		}
	}
	if len([]rune(tail)) <= avail {
		return tail, false
	}
	if avail > 1 {
		return truncate.String(tail, uint(avail)), false
	}
	return "", false
}

// ---- diff panel ----

// diffRow is one visual (wrapped) row of the panel. Continuation rows carry
// an empty gutter.
type diffRow struct {
	gutter  string
	prefix  string
	content string
	kind    git.DiffLineKind
}

// buildDiffRows wraps every logical diff line to the panel width, attaching
// the new-side line number to the first visual row only.
func buildDiffRows(diff git.DiffContent, innerWidth int) []diffRow {
	if diff.Kind != git.DiffText {
		return nil
	}

	maxLine := 0
	for _, l := range diff.Lines {
		if l.NewLine > maxLine {
			maxLine = l.NewLine
		}
	}
	gutterWidth := len(fmt.Sprintf("%d", maxLine))
	if gutterWidth < 3 {
		gutterWidth = 3
	}

	contentWidth := innerWidth - gutterWidth - 3
	if contentWidth < 1 {
		contentWidth = 1
	}

	var rows []diffRow
	for _, l := range diff.Lines {
		gutter := strings.Repeat(" ", gutterWidth)
		prefix := ""
		switch l.Kind {
		case git.LineAdded:
			gutter = fmt.Sprintf("%*d", gutterWidth, l.NewLine)
			prefix = "+"
		case git.LineContext:
			if l.NewLine > 0 {
				gutter = fmt.Sprintf("%*d", gutterWidth, l.NewLine)
			}
			prefix = " "
		case git.LineDeleted:
			gutter = fmt.Sprintf("%*s", gutterWidth, "-")
			prefix = "-"
		}

		chunks := wrapRunes(l.Content, contentWidth)
		for i, chunk := range chunks {
			row := diffRow{content: chunk, kind: l.Kind, prefix: prefix}
			if i == 0 {
				row.gutter = gutter
			} else {
				row.gutter = strings.Repeat(" ", gutterWidth)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func wrapRunes(s string, width int) []string {
	runes := []rune(s)
	if len(runes) <= width {
		return []string{s}
	}
	var chunks []string
	for len(runes) > width {
		chunks = append(chunks, string(runes[:width]))
		runes = runes[width:]
	}
	chunks = append(chunks, string(runes))
	return chunks
}

func (m Model) maxDiffScroll() int {
	total := len(buildDiffRows(m.diff, m.diffInnerWidth()))
	max := total - m.diffInnerHeight()
	if max < 0 {
		return 0
	}
	return max
}

func (m Model) renderDiffPanel() string {
	inner := m.diffInnerWidth()
	height := m.diffInnerHeight()

	var content string
	switch {
	case m.diffErr != "":
		content = m.diffPlaceholder(m.th.errorText.Render(m.diffErr))
	case m.diff.Kind == git.DiffEmpty:
		content = m.diffPlaceholder(m.th.dim.Render("↑/↓ navigate, enter to view diff"))
	case m.diff.Kind == git.DiffClean:
		content = m.diffPlaceholder(m.th.dim.Render("No changes (q to quit)"))
	case m.diff.Kind == git.DiffBinary:
		content = m.diffPlaceholder(m.th.dim.Render("Binary file"))
	case m.diff.Kind == git.DiffInvalidUTF8:
		content = m.diffPlaceholder(m.th.dim.Render("File contains invalid UTF-8 encoding"))
	case m.diff.Kind == git.DiffConflict:
		content = m.diffPlaceholder(m.th.conflict.Render("Conflict - resolve before viewing diff"))
	default:
		content = m.renderDiffRows(inner, height)
	}

	return m.panelBox().Width(inner).Height(height).Render(content)
}

func (m Model) diffPlaceholder(msg string) string {
	return "\n" + msg
}

func (m Model) renderDiffRows(inner, height int) string {
	rows := buildDiffRows(m.diff, inner)

	scroll := m.diffScroll
	if max := len(rows) - height; scroll > max {
		scroll = max
	}
	if scroll < 0 {
		scroll = 0
	}
	end := scroll + height
	if end > len(rows) {
		end = len(rows)
	}

	var lines []string
	for _, r := range rows[scroll:end] {
		var style lipgloss.Style
		switch r.kind {
		case git.LineHeader, git.LineHunk:
			style = m.th.header
		case git.LineAdded:
			style = m.th.added
		case git.LineDeleted:
			style = m.th.deleted
		default:
			style = m.th.text
		}
		lines = append(lines, m.th.dim.Render(r.gutter+" │")+style.Render(r.prefix+r.content))
	}
	return strings.Join(lines, "\n")
}

// ---- bottom line ----

func (m Model) renderBottomLine() string {
	var line string
	switch {
	case m.confirm != nil:
		line = m.th.prompt.Render(m.confirm.message)
	case m.flash != nil && m.flash.isError:
		line = m.th.flashErr.Render(m.flash.text)
	case m.flash != nil:
		line = m.th.flashOK.Render(m.flash.text)
	default:
		line = m.th.help.Render("s stage · u unstage · d discard · c commit · b branch · p push · l pull")
	}
	return truncate.String(line, uint(m.width))
}

// ---- progress overlay ----

func (m Model) renderProgressModal() string {
	label := m.opLabel
	if m.cancelling {
		label = "Cancelling…"
	}
	box := m.th.modalBox.Render(m.spin.View() + " " + m.th.text.Render(label))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
