// Package safety classifies how removable a worktree is. A report is
// computed fresh for every decision: worktree state can change between a
// status check and the cleanup that follows it, so reports are never
// cached or reused.
package safety

import (
	"context"
	"fmt"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/git"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/lockcheck"
)

// Report classifies a single worktree at one point in time.
//
// Uncommitted changes are the only hard blocker: losing them is
// unrecoverable. Unmerged commits stay reachable through the branch (and
// the reflog after deletion), so they only warrant a warning.
type Report struct {
	HasUncommittedChanges bool     `json:"has_uncommitted_changes"`
	UnmergedCommitCount   int      `json:"unmerged_commits"`
	IsLocked              bool     `json:"is_locked"`
	LockReasons           []string `json:"lock_reasons,omitempty"`
	OpenHandleWarnings    []string `json:"open_handle_warnings,omitempty"`
}

// Evaluator computes safety reports against a configured base-branch
// fallback order.
type Evaluator struct {
	// BaseBranches is the ordered fallback list for the merge base
	// (default develop, then main).
	BaseBranches []string
}

// Evaluate computes the dirty and unmerged fields for wt. Lock fields are
// populated separately via AddLocks so callers can skip the lock probe.
func (e *Evaluator) Evaluate(ctx context.Context, repoPath string, wt git.Worktree) (Report, error) {
	var r Report

	dirty, err := git.IsDirty(ctx, wt.Path)
	if err != nil {
		return r, fmt.Errorf("evaluate %s: %w", wt.Path, err)
	}
	r.HasUncommittedChanges = dirty

	if !wt.Detached() {
		base := git.ResolveBaseBranch(ctx, repoPath, e.BaseBranches)
		if base != wt.Branch {
			count, err := git.UnmergedCommitCount(ctx, repoPath, wt.Branch, base)
			if err != nil {
				return r, fmt.Errorf("evaluate %s: %w", wt.Path, err)
			}
			r.UnmergedCommitCount = count
		}
	}

	return r, nil
}

// AddLocks merges a lock inspection into the report.
func (r *Report) AddLocks(lr lockcheck.Report) {
	r.IsLocked = lr.Locked
	r.LockReasons = lr.LockReasons
	r.OpenHandleWarnings = lr.OpenHandleWarnings
}

// BaseBranch resolves the effective merge base for repoPath.
func (e *Evaluator) BaseBranch(ctx context.Context, repoPath string) string {
	return git.ResolveBaseBranch(ctx, repoPath, e.BaseBranches)
}
