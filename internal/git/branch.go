package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BranchExists checks if a local branch exists.
func BranchExists(ctx context.Context, repoPath, branch string) bool {
	return runGit(ctx, repoPath, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch) == nil
}

// CurrentBranch returns the branch checked out at path, or "" for a
// detached HEAD.
func CurrentBranch(ctx context.Context, path string) (string, error) {
	out, err := outputGit(ctx, path, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("get current branch: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsDirty returns true if the worktree has uncommitted changes or
// untracked files, via `git status --porcelain`.
func IsDirty(ctx context.Context, path string) (bool, error) {
	out, err := outputGit(ctx, path, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("get status: %w", err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// ResolveBaseBranch returns the first branch from order that exists in
// repoPath, falling back to the last entry when none do. The order is
// configuration (default develop, then main), not a constant: the
// fallback sequence is deliberate policy.
func ResolveBaseBranch(ctx context.Context, repoPath string, order []string) string {
	for _, b := range order {
		if BranchExists(ctx, repoPath, b) {
			return b
		}
	}
	if len(order) == 0 {
		return "main"
	}
	return order[len(order)-1]
}

// UnmergedCommitCount returns the number of commits reachable from branch
// but not from base.
func UnmergedCommitCount(ctx context.Context, repoPath, branch, base string) (int, error) {
	out, err := outputGit(ctx, repoPath, "rev-list", "--count", fmt.Sprintf("%s..%s", base, branch))
	if err != nil {
		return 0, fmt.Errorf("count unmerged commits: %w", err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, fmt.Errorf("parse commit count: %w", err)
	}
	return count, nil
}

// AheadBehind returns the commit counts by which the worktree's branch
// leads and trails its tracked upstream. Returns (0, 0, nil) when no
// upstream is configured.
func AheadBehind(ctx context.Context, path string) (ahead, behind int, err error) {
	if runGit(ctx, path, "rev-parse", "--verify", "--quiet", "@{upstream}") != nil {
		return 0, 0, nil
	}
	out, err := outputGit(ctx, path, "rev-list", "--left-right", "--count", "HEAD...@{upstream}")
	if err != nil {
		return 0, 0, fmt.Errorf("count ahead/behind: %w", err)
	}
	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output: %q", out)
	}
	if ahead, err = strconv.Atoi(fields[0]); err != nil {
		return 0, 0, fmt.Errorf("parse ahead count: %w", err)
	}
	if behind, err = strconv.Atoi(fields[1]); err != nil {
		return 0, 0, fmt.Errorf("parse behind count: %w", err)
	}
	return ahead, behind, nil
}

// LastCommit returns the short hash and author date of the most recent
// commit at path.
func LastCommit(ctx context.Context, path string) (hash string, date time.Time, err error) {
	out, err := outputGit(ctx, path, "log", "-1", "--format=%h %at")
	if err != nil {
		return "", time.Time{}, fmt.Errorf("get last commit: %w", err)
	}
	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) != 2 {
		return "", time.Time{}, fmt.Errorf("unexpected log output: %q", out)
	}
	ts, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse commit timestamp: %w", err)
	}
	return fields[0], time.Unix(ts, 0), nil
}

// DeleteLocalBranch deletes a local branch. force uses -D, which discards
// unmerged commits (still recoverable via the reflog).
func DeleteLocalBranch(ctx context.Context, repoPath, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if err := runGit(ctx, repoPath, "branch", flag, branch); err != nil {
		return fmt.Errorf("delete branch %s: %w", branch, err)
	}
	return nil
}

// DeleteRemoteBranch deletes a branch on the origin remote. This is a
// network operation and must run under the network timeout.
func DeleteRemoteBranch(ctx context.Context, repoPath, branch string) error {
	if err := runGit(ctx, repoPath, "push", "origin", "--delete", branch); err != nil {
		return fmt.Errorf("delete remote branch %s: %w", branch, err)
	}
	return nil
}

// reaper records the ref a branch was created from in the branch's git
// config, the same place git keeps upstream and description data.
const branchBaseKey = "reaper-created-from"

// SetCreatedFrom records the ref branch was started from.
func SetCreatedFrom(ctx context.Context, repoPath, branch, base string) error {
	return runGit(ctx, repoPath, "config", fmt.Sprintf("branch.%s.%s", branch, branchBaseKey), base)
}

// CreatedFrom returns the recorded creation base for branch, or "" when
// none was recorded.
func CreatedFrom(ctx context.Context, repoPath, branch string) string {
	out, err := outputGit(ctx, repoPath, "config", fmt.Sprintf("branch.%s.%s", branch, branchBaseKey))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
