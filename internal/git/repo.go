package git

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

var (
	// ErrNotARepository is returned when the working directory itself is not
	// a repository root. Parent directories are deliberately not searched.
	ErrNotARepository = errors.New("Not a git repository")
	// ErrBareRepository is returned for repositories without a worktree.
	ErrBareRepository = errors.New("Repository has no working directory")
)

// Repo wraps one opened repository. Reads that do not need the git binary go
// through go-git; status, diffs, mutations and network operations shell out.
type Repo struct {
	root string
	gr   *gogit.Repository
}

// Open opens the repository rooted at path without walking parents.
func Open(path string) (*Repo, error) {
	gr, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, ErrNotARepository
	}
	if _, err := gr.Worktree(); err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return nil, ErrBareRepository
		}
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Repo{root: abs, gr: gr}, nil
}

// Root returns the absolute worktree root.
func (r *Repo) Root() string { return r.root }

// BranchIdentity resolves HEAD to either a branch name or a short commit id.
func (r *Repo) BranchIdentity() BranchIdentity {
	head, err := r.gr.Head()
	if err != nil {
		// An unborn branch has no commit yet but HEAD still names it.
		if ref, rerr := r.gr.Storer.Reference(plumbing.HEAD); rerr == nil && ref.Type() == plumbing.SymbolicReference {
			return BranchIdentity{Name: ref.Target().Short()}
		}
		return BranchIdentity{Short: "unknown", Detached: true}
	}
	if head.Name().IsBranch() {
		return BranchIdentity{Name: head.Name().Short()}
	}
	id := head.Hash().String()
	if len(id) > 7 {
		id = id[:7]
	}
	return BranchIdentity{Short: id, Detached: true}
}

// IsDetachedHead reports whether HEAD points at a commit rather than a branch.
func (r *Repo) IsDetachedHead() bool {
	return r.BranchIdentity().Detached
}

// CurrentBranch returns the checked-out branch name, or "" when detached.
func (r *Repo) CurrentBranch() string {
	b := r.BranchIdentity()
	if b.Detached {
		return ""
	}
	return b.Name
}

// ListLocalBranches returns all local branch names sorted alphabetically.
func (r *Repo) ListLocalBranches() ([]string, error) {
	iter, err := r.gr.Branches()
	if err != nil {
		return nil, err
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// HasRemoteOrigin reports whether a remote named origin is configured.
func (r *Repo) HasRemoteOrigin() bool {
	_, err := r.gr.Remote("origin")
	return err == nil
}

// HasUpstream reports whether the current branch has an upstream configured.
func (r *Repo) HasUpstream() bool {
	name := r.CurrentBranch()
	if name == "" {
		return false
	}
	cfg, err := r.gr.Config()
	if err != nil {
		return false
	}
	b, ok := cfg.Branches[name]
	return ok && b.Merge != ""
}

// HasStashes reports whether any stash entries exist.
func (r *Repo) HasStashes() bool {
	_, err := r.gr.Reference(plumbing.ReferenceName("refs/stash"), true)
	return err == nil
}

// TipMessage returns the title and body of the HEAD commit, for prefilling
// an amend. Both are empty when there is no commit yet.
func (r *Repo) TipMessage() (title, body string) {
	head, err := r.gr.Head()
	if err != nil {
		return "", ""
	}
	commit, err := r.gr.CommitObject(head.Hash())
	if err != nil {
		return "", ""
	}
	msg := strings.TrimRight(commit.Message, "\n")
	title, body, found := strings.Cut(msg, "\n")
	if found {
		body = strings.TrimLeft(body, "\n")
	}
	return strings.TrimSpace(title), body
}

// HasUncommittedChanges reports whether the worktree or index differ from
// HEAD, including untracked files.
func (r *Repo) HasUncommittedChanges() (bool, error) {
	out, err := r.run("status", "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}
