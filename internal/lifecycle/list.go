package lifecycle

import (
	"context"
	"sort"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/git"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/lockcheck"
)

// List returns every linked worktree sorted by path. With deep set, each
// entry additionally carries a freshly computed safety report plus
// upstream and last-commit details; the shallow form is a pure
// registration read.
func (m *Manager) List(ctx context.Context, deep bool) ([]Entry, error) {
	worktrees, err := git.ListWorktrees(ctx, m.repoPath)
	if err != nil {
		return nil, inputErrf(nil, "list worktrees: %v", err)
	}
	sort.Slice(worktrees, func(i, j int) bool { return worktrees[i].Path < worktrees[j].Path })

	entries := make([]Entry, 0, len(worktrees))
	for _, wt := range worktrees {
		entry := Entry{Worktree: wt}
		if deep {
			if err := m.inspect(ctx, &entry); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// inspect fills an entry's derived state. Reports are recomputed on
// every call; nothing is cached between invocations.
func (m *Manager) inspect(ctx context.Context, entry *Entry) error {
	report, err := m.eval.Evaluate(ctx, m.repoPath, entry.Worktree)
	if err != nil {
		return inputErrf(nil, "%v", err)
	}
	report.AddLocks(lockcheck.Inspect(ctx, entry.Path))
	entry.Report = report

	if entry.BaseBranch == "" {
		entry.BaseBranch = m.eval.BaseBranch(ctx, m.repoPath)
	}
	if entry.CreatedFrom == "" && !entry.Detached() {
		entry.CreatedFrom = git.CreatedFrom(ctx, m.repoPath, entry.Branch)
	}

	if ahead, behind, err := git.AheadBehind(ctx, entry.Path); err == nil {
		entry.Ahead, entry.Behind = ahead, behind
	}
	if hash, date, err := git.LastCommit(ctx, entry.Path); err == nil {
		entry.LastCommit = hash
		entry.LastCommitDate = date.UTC().Format("2006-01-02T15:04:05Z")
	}
	return nil
}
