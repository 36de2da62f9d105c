package lifecycle

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/git"
)

// resolveTarget maps a user-supplied target, a path or a branch name or
// a fragment of either, to a registered worktree. Exact matches win;
// otherwise a fuzzy match is accepted only when it is unambiguous.
func (m *Manager) resolveTarget(ctx context.Context, target string) (git.Worktree, error) {
	var zero git.Worktree
	if target == "" {
		return zero, inputErrf(
			[]string{"pass a worktree path or branch name: reaper list shows both"},
			"no worktree target given")
	}

	worktrees, err := git.ListWorktrees(ctx, m.repoPath)
	if err != nil {
		return zero, inputErrf(nil, "list worktrees: %v", err)
	}

	if abs, err := filepath.Abs(target); err == nil {
		canonical := abs
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			canonical = resolved
		}
		for _, wt := range worktrees {
			if wt.Path == canonical || wt.Path == abs {
				return wt, nil
			}
		}
	}
	for _, wt := range worktrees {
		if wt.Branch == target || filepath.Base(wt.Path) == target {
			return wt, nil
		}
	}

	// Match against "branch (path)" so either half of a fragment hits.
	labels := make([]string, len(worktrees))
	for i, wt := range worktrees {
		labels[i] = fmt.Sprintf("%s %s", wt.Branch, filepath.Base(wt.Path))
	}
	matches := fuzzy.Find(target, labels)

	switch len(matches) {
	case 1:
		return worktrees[matches[0].Index], nil
	case 0:
		return zero, inputErrf(
			[]string{"run: reaper list"},
			"no worktree matches %q", target)
	default:
		candidates := make([]string, len(matches))
		for i, match := range matches {
			candidates[i] = worktrees[match.Index].Path
		}
		return zero, inputErrf(
			[]string{"candidates: " + strings.Join(candidates, ", "), "re-run with the full path or branch name"},
			"%q is ambiguous, matches %d worktrees", target, len(matches))
	}
}
