package git

// Network operations run the git binary so the user's credential helpers
// apply unchanged. Captured stderr travels back inside CommandError for the
// flash message.

// Push publishes the current branch. Without an upstream it pushes with an
// explicit set-upstream to origin/<branch>.
func (r *Repo) Push() error {
	if !r.HasUpstream() {
		branch := r.CurrentBranch()
		_, err := r.run("push", "push", "--set-upstream", "origin", branch)
		return err
	}
	_, err := r.run("push", "push")
	return err
}

// ForcePush force-updates the remote branch.
func (r *Repo) ForcePush() error {
	if !r.HasUpstream() {
		branch := r.CurrentBranch()
		_, err := r.run("force push", "push", "--force", "--set-upstream", "origin", branch)
		return err
	}
	_, err := r.run("force push", "push", "--force")
	return err
}

// Pull fetches and integrates the upstream branch.
func (r *Repo) Pull() error {
	_, err := r.run("pull", "pull")
	return err
}

// AbortMerge backs out of a conflicted merge, restoring the pre-pull state.
func (r *Repo) AbortMerge() error {
	_, err := r.run("abort merge", "merge", "--abort")
	return err
}
