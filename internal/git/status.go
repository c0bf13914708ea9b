package git

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// GetStatus collects a full snapshot: both sections, distinct-path counts and
// the branch identity. Entries within a section are sorted by path.
func (r *Repo) GetStatus() (*StatusResult, error) {
	out, err := r.run("status", "status", "--porcelain=v2", "--untracked-files=all", "--ignored=no")
	if err != nil {
		return nil, err
	}

	stagedCounts := r.numstat(SectionStaged)
	unstagedCounts := r.numstat(SectionUnstaged)

	res := &StatusResult{Branch: r.BranchIdentity()}
	stagedPaths := map[string]struct{}{}
	unstagedPaths := map[string]struct{}{}
	untracked := map[string]struct{}{}

	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		switch line[0] {
		case '?':
			path := unquotePath(line[2:])
			untracked[path] = struct{}{}
			unstagedPaths[path] = struct{}{}
			added, binary := r.countWorkdirLines(path)
			res.UnstagedFiles = append(res.UnstagedFiles, FileEntry{
				Path:      path,
				Status:    StatusUntracked,
				Added:     added,
				HasCounts: !binary,
				Binary:    binary,
			})

		case 'u':
			fields := strings.SplitN(line, " ", 11)
			if len(fields) < 11 {
				continue
			}
			path := unquotePath(fields[10])
			unstagedPaths[path] = struct{}{}
			res.UnstagedFiles = append(res.UnstagedFiles, FileEntry{
				Path:   path,
				Status: StatusConflict,
			})

		case '1', '2':
			entry, ok := parseChangedLine(line)
			if !ok {
				continue
			}
			if entry.submodule {
				appendSubmodule(res, entry, stagedPaths, unstagedPaths, stagedCounts)
				continue
			}
			if entry.x != '.' {
				path, old := entry.Path, ""
				if entry.x == 'R' || entry.x == 'C' {
					old = entry.OrigPath
				}
				stagedPaths[path] = struct{}{}
				fe := FileEntry{
					Path:    path,
					OldPath: old,
					Status:  stagedStatus(entry.x),
				}
				applyCounts(&fe, stagedCounts)
				res.StagedFiles = append(res.StagedFiles, fe)
			}
			if entry.y != '.' {
				path, old := entry.Path, ""
				if entry.y == 'R' {
					old = entry.OrigPath
				}
				unstagedPaths[path] = struct{}{}
				fe := FileEntry{
					Path:    path,
					OldPath: old,
					Status:  unstagedStatus(entry.y),
				}
				applyCounts(&fe, unstagedCounts)
				res.UnstagedFiles = append(res.UnstagedFiles, fe)
			}
		}
	}

	sort.Slice(res.StagedFiles, func(i, j int) bool {
		return res.StagedFiles[i].Path < res.StagedFiles[j].Path
	})
	sort.Slice(res.UnstagedFiles, func(i, j int) bool {
		return res.UnstagedFiles[i].Path < res.UnstagedFiles[j].Path
	})

	res.Staged = len(stagedPaths)
	res.Unstaged = len(unstagedPaths)
	res.Untracked = len(untracked)
	return res, nil
}

// changedLine is a parsed "1" or "2" porcelain v2 record.
type changedLine struct {
	x, y      byte
	submodule bool
	Path      string
	OrigPath  string
}

func parseChangedLine(line string) (changedLine, bool) {
	var c changedLine
	renamed := line[0] == '2'

	nFields := 9
	if renamed {
		nFields = 10
	}
	fields := strings.SplitN(line, " ", nFields)
	if len(fields) < nFields {
		return c, false
	}

	xy := fields[1]
	if len(xy) != 2 {
		return c, false
	}
	c.x, c.y = xy[0], xy[1]
	c.submodule = strings.HasPrefix(fields[2], "S")

	rest := fields[nFields-1]
	if renamed {
		newPath, origPath, ok := strings.Cut(rest, "\t")
		if !ok {
			return c, false
		}
		c.Path = unquotePath(newPath)
		c.OrigPath = unquotePath(origPath)
	} else {
		c.Path = unquotePath(rest)
	}
	return c, true
}

// appendSubmodule emits the single entry a submodule gets. With both staged
// and unstaged changes it lands in Staged as Modified but counts toward both
// sections.
func appendSubmodule(res *StatusResult, entry changedLine, stagedPaths, unstagedPaths map[string]struct{}, stagedCounts map[string]numstatEntry) {
	hasStaged := entry.x != '.'
	hasUnstaged := entry.y != '.'
	if !hasStaged && !hasUnstaged {
		return
	}

	fe := FileEntry{Path: entry.Path, Submodule: true}
	switch {
	case hasStaged && hasUnstaged:
		fe.Status = StatusModified
	case hasStaged:
		fe.Status = submoduleStatus(entry.x)
	default:
		fe.Status = submoduleStatus(entry.y)
	}

	if hasStaged {
		stagedPaths[entry.Path] = struct{}{}
		applyCounts(&fe, stagedCounts)
		res.StagedFiles = append(res.StagedFiles, fe)
	} else {
		unstagedPaths[entry.Path] = struct{}{}
		res.UnstagedFiles = append(res.UnstagedFiles, fe)
	}
	if hasUnstaged {
		unstagedPaths[entry.Path] = struct{}{}
	}
}

func stagedStatus(x byte) FileStatus {
	switch x {
	case 'A':
		return StatusAdded
	case 'D':
		return StatusDeleted
	case 'R':
		return StatusRenamed
	case 'C':
		return StatusAdded
	default:
		// M and type changes both render as Modified.
		return StatusModified
	}
}

func unstagedStatus(y byte) FileStatus {
	switch y {
	case 'D':
		return StatusDeleted
	case 'R':
		return StatusRenamed
	default:
		return StatusModified
	}
}

// submoduleStatus maps to Added/Modified/Deleted only.
func submoduleStatus(c byte) FileStatus {
	switch c {
	case 'A':
		return StatusAdded
	case 'D':
		return StatusDeleted
	default:
		return StatusModified
	}
}

type numstatEntry struct {
	added, deleted int
	binary         bool
}

func applyCounts(fe *FileEntry, counts map[string]numstatEntry) {
	n, ok := counts[fe.Path]
	if !ok {
		return
	}
	if n.binary {
		fe.Binary = true
		return
	}
	fe.Added = n.added
	fe.Deleted = n.deleted
	fe.HasCounts = true
}

// numstat maps new-side path to +/- counts for one section. Errors yield an
// empty map; the affected entries simply render without counts.
func (r *Repo) numstat(section Section) map[string]numstatEntry {
	args := []string{"diff", "--numstat", "--find-renames", "-z"}
	if section == SectionStaged {
		args = []string{"diff", "--cached", "--numstat", "--find-renames", "-z"}
	}
	out, err := r.run("numstat", args...)
	if err != nil {
		return map[string]numstatEntry{}
	}
	return parseNumstat(out)
}

func parseNumstat(out string) map[string]numstatEntry {
	counts := map[string]numstatEntry{}
	tokens := strings.Split(out, "\x00")
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == "" {
			continue
		}
		parts := strings.SplitN(tok, "\t", 3)
		if len(parts) < 3 {
			continue
		}
		var entry numstatEntry
		if parts[0] == "-" || parts[1] == "-" {
			entry.binary = true
		} else {
			entry.added, _ = strconv.Atoi(parts[0])
			entry.deleted, _ = strconv.Atoi(parts[1])
		}

		path := parts[2]
		if path == "" {
			// Rename record: the two following tokens are old and new path.
			if i+2 >= len(tokens) {
				break
			}
			path = tokens[i+2]
			i += 2
		}
		counts[path] = entry
	}
	return counts
}

// countWorkdirLines reads an untracked file to produce its synthetic "+N"
// count. A NUL byte marks the file binary.
func (r *Repo) countWorkdirLines(path string) (lines int, binary bool) {
	content, err := os.ReadFile(filepath.Join(r.root, path))
	if err != nil {
		return 0, false
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return 0, true
	}
	return countLines(string(content)), false
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// unquotePath undoes the C-style quoting git applies to unusual paths.
func unquotePath(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if unquoted, err := strconv.Unquote(s); err == nil {
			return unquoted
		}
		return s[1 : len(s)-1]
	}
	return s
}
