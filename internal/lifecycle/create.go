package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/bound"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/git"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/install"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/log"
)

// CreateOptions control worktree creation.
type CreateOptions struct {
	// BaseBranch overrides the configured base-branch fallback order.
	BaseBranch string

	// NoInstall skips dependency installation even when an ecosystem is
	// detected.
	NoInstall bool
}

// Create builds a new worktree for a task. The branch and path are
// derived deterministically from the task ID and description, so two
// invocations with the same arguments target the same worktree and the
// second fails instead of creating a sibling.
func (m *Manager) Create(ctx context.Context, taskID, description string, opts CreateOptions) (git.Worktree, error) {
	var wt git.Worktree

	if taskID == "" || description == "" {
		return wt, inputErrf(
			[]string{"pass a task ID and a short description, e.g.: reaper create 42 \"fix login redirect\""},
			"task ID and description must not be empty")
	}

	slug := slugify(taskID + " " + description)
	if slug == "" {
		return wt, inputErrf(
			[]string{"use a description containing at least one letter or digit"},
			"cannot derive a branch name from %q", description)
	}

	if git.InsideWorktree(ctx) {
		return wt, inputErrf(
			[]string{fmt.Sprintf("cd %s", m.repoPath), "re-run create from the main checkout"},
			"create must run from the main checkout, not from inside a worktree")
	}

	branch := "task/" + slug
	path := filepath.Join(m.WorktreeDir(), slug)

	if _, err := os.Stat(path); err == nil {
		return wt, inputErrf(
			[]string{fmt.Sprintf("inspect it with: reaper status %s", path), "or remove it with: reaper cleanup " + path},
			"worktree already exists at %s", path)
	}
	if git.BranchExists(ctx, m.repoPath, branch) {
		return wt, inputErrf(
			[]string{fmt.Sprintf("delete the stale branch: git branch -d %s", branch), "or pick a different description"},
			"branch %s already exists", branch)
	}

	base := opts.BaseBranch
	if base == "" {
		base = git.ResolveBaseBranch(ctx, m.repoPath, m.cfg.BaseBranches)
	} else if !git.BranchExists(ctx, m.repoPath, base) {
		return wt, inputErrf(
			[]string{"check the branch name: git branch --list"},
			"base branch %s does not exist", base)
	}

	if err := os.MkdirAll(m.WorktreeDir(), 0o755); err != nil {
		return wt, inputErrf(nil, "create worktree directory: %v", err)
	}
	if err := git.CreateWorktree(ctx, m.repoPath, path, branch, base); err != nil {
		return wt, inputErrf(nil, "create worktree: %v", err)
	}
	if err := git.SetCreatedFrom(ctx, m.repoPath, branch, base); err != nil {
		log.FromContext(ctx).Debug("record created-from", "branch", branch, "err", err)
	}

	wt = git.Worktree{Path: path, Branch: branch, BaseBranch: base, CreatedFrom: base}
	if hash, _, err := git.LastCommit(ctx, path); err == nil {
		wt.HeadCommit = hash
	}

	if !opts.NoInstall && !m.cfg.Install.Disabled {
		m.installDeps(ctx, path)
	}

	return wt, nil
}

// installDeps runs the detected ecosystem's install command inside the
// new worktree. Install problems never fail create; the worktree is
// already usable.
func (m *Manager) installDeps(ctx context.Context, path string) {
	step, ok := install.Detect(path)
	if !ok {
		return
	}

	err := bound.Run(ctx, "dependency install", m.cfg.RemoveTimeout(), func(ctx context.Context) error {
		return install.Run(ctx, path, step)
	})
	if err != nil {
		log.FromContext(ctx).Printf("Warning: %v\n", err)
	}
}
