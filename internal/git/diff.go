package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// GetDiff produces the diff panel content for one focused entry. Conflicted
// and binary entries short-circuit before any text is generated.
func (r *Repo) GetDiff(entry FileEntry, section Section) (DiffContent, error) {
	if entry.Status == StatusConflict {
		return DiffContent{Kind: DiffConflict}, nil
	}
	if entry.Binary {
		return DiffContent{Kind: DiffBinary}, nil
	}
	if entry.Status == StatusUntracked {
		return r.untrackedDiff(entry.Path)
	}

	args := []string{"diff", "--find-renames", "--no-color", "--no-ext-diff"}
	if section == SectionStaged {
		args = []string{"diff", "--cached", "--find-renames", "--no-color", "--no-ext-diff"}
	}
	args = append(args, "--")
	args = append(args, entry.Path)
	if entry.OldPath != "" {
		args = append(args, entry.OldPath)
	}

	out, err := r.run("diff", args...)
	if err != nil {
		return DiffContent{}, err
	}
	return parseUnifiedDiff(out), nil
}

// parseUnifiedDiff tags each line of git diff output and threads the
// new-side line number through context and added lines.
func parseUnifiedDiff(out string) DiffContent {
	if strings.TrimSpace(out) == "" {
		return DiffContent{Kind: DiffEmpty}
	}
	if !utf8.ValidString(out) {
		return DiffContent{Kind: DiffInvalidUTF8}
	}

	var lines []DiffLine
	newLine := 0
	inHunk := false

	for _, raw := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		switch {
		case strings.HasPrefix(raw, "@@"):
			inHunk = true
			newLine = parseHunkNewStart(raw)
			lines = append(lines, DiffLine{Kind: LineHunk, Content: raw})

		case strings.HasPrefix(raw, "Binary files "):
			return DiffContent{Kind: DiffBinary}

		case !inHunk:
			lines = append(lines, DiffLine{Kind: LineHeader, Content: raw})

		case strings.HasPrefix(raw, "+"):
			lines = append(lines, DiffLine{Kind: LineAdded, Content: raw[1:], NewLine: newLine})
			newLine++

		case strings.HasPrefix(raw, "-"):
			lines = append(lines, DiffLine{Kind: LineDeleted, Content: raw[1:]})

		case strings.HasPrefix(raw, "\\"):
			// "\ No newline at end of file"
			lines = append(lines, DiffLine{Kind: LineHeader, Content: raw})

		default:
			content := raw
			if strings.HasPrefix(raw, " ") {
				content = raw[1:]
			}
			lines = append(lines, DiffLine{Kind: LineContext, Content: content, NewLine: newLine})
			newLine++
		}
	}

	if len(lines) == 0 {
		return DiffContent{Kind: DiffEmpty}
	}
	return DiffContent{Kind: DiffText, Lines: lines}
}

// parseHunkNewStart extracts the new-side start from "@@ -a,b +c,d @@".
func parseHunkNewStart(hunk string) int {
	plus := strings.Index(hunk, "+")
	if plus < 0 {
		return 0
	}
	rest := hunk[plus+1:]
	end := strings.IndexAny(rest, ", @")
	if end < 0 {
		end = len(rest)
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0
	}
	return n
}

// untrackedDiff synthesizes an all-added diff against an empty base.
func (r *Repo) untrackedDiff(path string) (DiffContent, error) {
	content, err := os.ReadFile(filepath.Join(r.root, path))
	if err != nil {
		return DiffContent{Kind: DiffEmpty}, nil
	}
	if !utf8.Valid(content) {
		return DiffContent{Kind: DiffInvalidUTF8}, nil
	}

	lines := []DiffLine{
		{Kind: LineHeader, Content: fmt.Sprintf("diff --git a/%s b/%s", path, path)},
		{Kind: LineHeader, Content: "new file"},
		{Kind: LineHeader, Content: "--- /dev/null"},
		{Kind: LineHeader, Content: fmt.Sprintf("+++ b/%s", path)},
	}

	if len(content) > 0 {
		split := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
		lines = append(lines, DiffLine{
			Kind:    LineHunk,
			Content: fmt.Sprintf("@@ -0,0 +1,%d @@", len(split)),
		})
		for i, l := range split {
			lines = append(lines, DiffLine{Kind: LineAdded, Content: l, NewLine: i + 1})
		}
	}
	return DiffContent{Kind: DiffText, Lines: lines}, nil
}
