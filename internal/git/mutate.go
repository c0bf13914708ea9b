package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Stage adds the given paths to the index. Deleted paths are staged as
// removals.
func (r *Repo) Stage(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "-A", "--"}, paths...)
	_, err := r.run("stage", args...)
	return err
}

// Unstage resets each path's index entry to its HEAD tree entry, or removes
// the entry when the path is not in HEAD.
func (r *Repo) Unstage(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"reset", "-q", "HEAD", "--"}, paths...)
	if _, err := r.run("unstage", args...); err != nil {
		// Before the first commit there is no HEAD to reset to; dropping the
		// index entries is the equivalent.
		args = append([]string{"rm", "--cached", "-r", "-q", "--"}, paths...)
		_, rmErr := r.run("unstage", args...)
		if rmErr != nil {
			return err
		}
	}
	return nil
}

// StageAll stages every unstaged change including untracked files.
func (r *Repo) StageAll() ([]string, error) {
	status, err := r.GetStatus()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(status.UnstagedFiles))
	for _, f := range status.UnstagedFiles {
		paths = append(paths, f.Path)
	}
	if len(paths) == 0 {
		return nil, nil
	}
	return paths, r.Stage(paths)
}

// UnstageAll resets the whole index back to HEAD.
func (r *Repo) UnstageAll() ([]string, error) {
	status, err := r.GetStatus()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(status.StagedFiles))
	for _, f := range status.StagedFiles {
		paths = append(paths, f.Path)
		// A staged rename also removed its original path from the index.
		if f.OldPath != "" {
			paths = append(paths, f.OldPath)
		}
	}
	if len(paths) == 0 {
		return nil, nil
	}
	return paths, r.Unstage(paths)
}

// DiscardUnstaged restores the worktree copy of path from the index. A
// worktree rename is reverted by restoring the original name and removing
// the renamed file.
func (r *Repo) DiscardUnstaged(path, oldPath string) error {
	if oldPath != "" {
		if _, err := r.run("discard", "restore", "--worktree", "--", oldPath); err != nil {
			return err
		}
		if err := os.Remove(filepath.Join(r.root, path)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("discard rename of %s: %w", path, err)
		}
		return nil
	}
	_, err := r.run("discard", "restore", "--worktree", "--", path)
	return err
}

// DiscardUntracked deletes an untracked file from the worktree.
func (r *Repo) DiscardUntracked(path string) error {
	if err := os.Remove(filepath.Join(r.root, path)); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// DiscardStaged resets a single index entry back to HEAD.
func (r *Repo) DiscardStaged(path string) error {
	_, err := r.run("discard staged", "restore", "--staged", "--", path)
	return err
}

// DiscardAllUnstaged applies the per-path discard semantics to every
// unstaged entry: untracked files are deleted, renames reverted, everything
// else restored from the index. Conflicted paths are skipped and counted.
func (r *Repo) DiscardAllUnstaged() (discarded []string, skippedConflicts int, err error) {
	status, err := r.GetStatus()
	if err != nil {
		return nil, 0, err
	}
	for _, f := range status.UnstagedFiles {
		switch f.Status {
		case StatusConflict:
			skippedConflicts++
			continue
		case StatusUntracked:
			if err := r.DiscardUntracked(f.Path); err != nil {
				return discarded, skippedConflicts, err
			}
		default:
			if err := r.DiscardUnstaged(f.Path, f.OldPath); err != nil {
				return discarded, skippedConflicts, err
			}
		}
		discarded = append(discarded, f.Path)
	}
	return discarded, skippedConflicts, nil
}

// Commit records the staged changes. Title and body are joined with a blank
// line; amend rewrites the tip commit instead.
func (r *Repo) Commit(title, body string, amend bool) error {
	message := title
	if body != "" {
		message = title + "\n\n" + body
	}
	args := []string{"commit", "-m", message}
	if amend {
		args = append(args, "--amend")
	}
	_, err := r.run("commit", args...)
	return err
}

// SwitchBranch checks out an existing local branch. It refuses to switch
// while uncommitted changes exist.
func (r *Repo) SwitchBranch(name string) error {
	dirty, err := r.HasUncommittedChanges()
	if err != nil {
		return err
	}
	if dirty {
		return errors.New("You have uncommitted changes. Commit or stash them first.")
	}
	_, err = r.run("switch branch", "checkout", name)
	return err
}

// CreateAndSwitchBranch creates a branch at the current commit and checks it
// out. From a detached HEAD this attaches HEAD to the new branch.
func (r *Repo) CreateAndSwitchBranch(name string) error {
	_, err := r.run("create branch", "checkout", "-b", name)
	return err
}

// StashPushIncludingUntracked stashes worktree and index state, untracked
// files included.
func (r *Repo) StashPushIncludingUntracked() error {
	_, err := r.run("stash", "stash", "push", "--include-untracked")
	return err
}

// StashPop applies and drops the most recent stash entry.
func (r *Repo) StashPop() error {
	_, err := r.run("stash pop", "stash", "pop")
	return err
}
