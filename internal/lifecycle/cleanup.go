package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/bound"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/disposition"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/git"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/lockcheck"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/outcome"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/safety"
)

// CleanupOptions control worktree teardown.
type CleanupOptions struct {
	// Intent is the caller's branch disposition choice. IntentNone on a
	// non-protected branch fails with DispositionRequired.
	Intent disposition.Intent

	// Force overrides the dirty-tree and lock blocks.
	Force bool

	// DryRun reports the plan without executing any of it.
	DryRun bool

	// SkipLockCheck bypasses the lock and open-handle probe.
	SkipLockCheck bool

	// RemoveTimeout and NetworkTimeout override the configured limits
	// when non-zero.
	RemoveTimeout  time.Duration
	NetworkTimeout time.Duration

	// Confirm, when set, is asked before an irreversible branch deletion.
	// A nil Confirm proceeds without asking.
	Confirm func(prompt string) (bool, error)
}

// CleanupResult describes what cleanup did, or with DryRun what it
// would do.
type CleanupResult struct {
	Worktree    git.Worktree            `json:"worktree"`
	Safety      safety.Report           `json:"safety"`
	Disposition disposition.Disposition `json:"disposition"`
	DryRun      bool                    `json:"dry_run,omitempty"`
	Aborted     bool                    `json:"aborted,omitempty"`

	// Plan is the ordered list of steps. With DryRun these are pending;
	// otherwise they have been executed.
	Plan []string `json:"plan"`

	// Warnings carry the non-blocking findings: unmerged commits, open
	// handles, degraded probes.
	Warnings []string `json:"warnings,omitempty"`
}

// Cleanup tears down one worktree: safety evaluation, lock probe, branch
// disposition, bounded removal, registration pruning. Checks run in that
// order and the first blocking finding stops the operation before any
// mutation. Two invocations racing on the same path are only guarded
// best-effort by the lock probe; callers must not target the same
// worktree concurrently.
//
// Callers running from inside the target worktree must relocate first.
// The guard here can refuse the removal, but it cannot move another
// process's working directory out of harm's way.
func (m *Manager) Cleanup(ctx context.Context, target string, opts CleanupOptions) (CleanupResult, error) {
	var res CleanupResult

	wt, err := m.resolveTarget(ctx, target)
	if err != nil {
		return res, err
	}
	res.Worktree = wt

	if within, err := git.CwdWithin(wt.Path); err != nil {
		return res, inputErrf(nil, "%v", err)
	} else if within {
		return res, inputErrf(
			[]string{"cd out of the worktree, e.g.: cd " + m.repoPath, "re-run cleanup"},
			"current directory is inside %s; removing it would corrupt this shell", wt.Path)
	}

	report, err := m.eval.Evaluate(ctx, m.repoPath, wt)
	if err != nil {
		return res, inputErrf(nil, "%v", err)
	}
	if !opts.SkipLockCheck {
		report.AddLocks(lockcheck.Inspect(ctx, wt.Path))
	}
	res.Safety = report
	res.Warnings = append(res.Warnings, report.OpenHandleWarnings...)
	if report.UnmergedCommitCount > 0 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("branch %s has %d commits not on %s", wt.Branch, report.UnmergedCommitCount, m.eval.BaseBranch(ctx, m.repoPath)))
	}

	if report.HasUncommittedChanges && !opts.Force {
		return res, outcome.Failure(outcome.SafetyBlocked,
			fmt.Sprintf("%s has uncommitted changes", wt.Path),
			"commit or stash the changes inside the worktree",
			"or re-run with --force to discard them").Err()
	}
	if report.IsLocked && !opts.Force {
		return res, outcome.Failure(outcome.SafetyBlocked,
			fmt.Sprintf("%s looks in use: %s", wt.Path, strings.Join(report.LockReasons, ", ")),
			"finish or abort the in-progress git operation",
			"or re-run with --force once you are sure nothing is using it").Err()
	}

	disp, err := disposition.Resolve(wt.Branch, opts.Intent, m.cfg.ProtectedBranches)
	if err != nil {
		var required *disposition.ErrIntentRequired
		if errors.As(err, &required) {
			return res, outcome.Failure(outcome.DispositionRequired,
				fmt.Sprintf("branch %s needs an explicit disposition", wt.Branch),
				"re-run with --keep-branch to preserve it",
				"or --delete-branch to remove it").Err()
		}
		return res, inputErrf(nil, "resolve disposition: %v", err)
	}
	res.Disposition = disp
	res.Plan = cleanupPlan(wt, disp)

	if opts.DryRun {
		res.DryRun = true
		return res, nil
	}

	return m.execute(ctx, res, opts)
}

// cleanupPlan renders the ordered steps for one teardown.
func cleanupPlan(wt git.Worktree, disp disposition.Disposition) []string {
	plan := []string{"remove worktree " + wt.Path}
	switch disp {
	case disposition.DeleteLocal:
		plan = append(plan, "delete local branch "+wt.Branch)
	case disposition.DeleteLocalAndRemote:
		plan = append(plan, "delete local branch "+wt.Branch, "delete remote branch origin/"+wt.Branch)
	case disposition.ProtectedSkip:
		plan = append(plan, "keep protected branch "+wt.Branch)
	case disposition.Keep:
		if wt.Branch != "" {
			plan = append(plan, "keep branch "+wt.Branch)
		}
	}
	return append(plan, "prune stale registrations")
}

// execute performs the already-approved plan. Cleanup never reaches this
// point on a dry run.
func (m *Manager) execute(ctx context.Context, res CleanupResult, opts CleanupOptions) (CleanupResult, error) {
	wt := res.Worktree

	if opts.Confirm != nil && deletes(res.Disposition) {
		ok, err := opts.Confirm(fmt.Sprintf("Delete branch %s and worktree %s?", wt.Branch, wt.Path))
		if err != nil {
			return res, inputErrf(nil, "confirm: %v", err)
		}
		if !ok {
			res.Aborted = true
			return res, nil
		}
	}

	removeLimit := opts.RemoveTimeout
	if removeLimit == 0 {
		removeLimit = m.cfg.RemoveTimeout()
	}
	err := bound.Run(ctx, "worktree removal", removeLimit, func(ctx context.Context) error {
		return git.RemoveWorktree(ctx, m.repoPath, wt.Path, opts.Force)
	})
	if err != nil {
		return res, removalErr(err, removeLimit, wt.Path, m.repoPath)
	}

	if err := m.applyDisposition(ctx, res.Disposition, wt, res.Safety, opts); err != nil {
		return res, err
	}

	if err := git.PruneWorktrees(ctx, m.repoPath); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("prune worktrees: %v", err))
	}
	return res, nil
}

func deletes(d disposition.Disposition) bool {
	return d == disposition.DeleteLocal || d == disposition.DeleteLocalAndRemote
}

func removalErr(err error, limit time.Duration, path, repoPath string) error {
	if bound.IsTimeout(err) {
		return outcome.Failure(outcome.Timeout,
			fmt.Sprintf("removing %s did not finish within %s", path, limit),
			fmt.Sprintf("retry with a larger limit: --timeout %d", int(limit.Seconds())*2),
			"or inspect and remove the directory manually, then run: git worktree prune").Err()
	}
	if errors.Is(err, git.ErrInUse) {
		return outcome.Failure(outcome.InputError,
			err.Error(),
			"cd out of the worktree, e.g.: cd "+repoPath,
			"re-run cleanup").Err()
	}
	return outcome.Failure(outcome.InputError,
		fmt.Sprintf("remove worktree: %v", err),
		"inspect the worktree state: git worktree list").Err()
}

// applyDisposition deletes branches after the worktree itself is gone.
// An unmerged local branch still deletes when the caller asked for it;
// the unmerged count was already surfaced as a warning.
func (m *Manager) applyDisposition(ctx context.Context, disp disposition.Disposition, wt git.Worktree, report safety.Report, opts CleanupOptions) error {
	if !deletes(disp) {
		return nil
	}

	forceDelete := opts.Force || report.UnmergedCommitCount > 0
	if err := git.DeleteLocalBranch(ctx, m.repoPath, wt.Branch, forceDelete); err != nil {
		return outcome.Failure(outcome.InputError,
			fmt.Sprintf("worktree removed, but deleting branch %s failed: %v", wt.Branch, err),
			"delete it manually: git branch -D "+wt.Branch).Err()
	}

	if disp != disposition.DeleteLocalAndRemote {
		return nil
	}

	networkLimit := opts.NetworkTimeout
	if networkLimit == 0 {
		networkLimit = m.cfg.NetworkTimeout()
	}
	err := bound.Run(ctx, "remote branch deletion", networkLimit, func(ctx context.Context) error {
		return git.DeleteRemoteBranch(ctx, m.repoPath, wt.Branch)
	})
	if err != nil {
		if bound.IsTimeout(err) {
			return outcome.Failure(outcome.Timeout,
				fmt.Sprintf("worktree and local branch removed, but deleting origin/%s did not finish within %s", wt.Branch, networkLimit),
				fmt.Sprintf("retry the remote deletion with a larger limit: --network-timeout %d", int(networkLimit.Seconds())*2),
				"or delete it manually: git push origin --delete "+wt.Branch).Err()
		}
		return outcome.Failure(outcome.InputError,
			fmt.Sprintf("worktree and local branch removed, but deleting origin/%s failed: %v", wt.Branch, err),
			"delete it manually: git push origin --delete "+wt.Branch).Err()
	}
	return nil
}
