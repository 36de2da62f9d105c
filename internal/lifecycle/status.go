package lifecycle

import (
	"context"
	"os"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/git"
)

// Status returns the deep state of one worktree identified by path or
// branch name.
func (m *Manager) Status(ctx context.Context, target string) (Entry, error) {
	var zero Entry

	wt, err := m.resolveTarget(ctx, target)
	if err != nil {
		return zero, err
	}

	if _, err := os.Stat(wt.Path); err != nil {
		return zero, inputErrf(
			[]string{"prune the stale registration: git worktree prune"},
			"worktree directory is missing: %s", wt.Path)
	}
	if !git.IsWorktree(wt.Path) {
		return zero, inputErrf(
			[]string{"the directory exists but is not a linked worktree; inspect it manually"},
			"%s is not a worktree", wt.Path)
	}

	entry := Entry{Worktree: wt}
	if err := m.inspect(ctx, &entry); err != nil {
		return zero, err
	}
	return entry, nil
}
