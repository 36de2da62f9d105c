// Package git is a thin query/command layer over the git CLI. It carries
// no policy: safety classification and branch disposition live in the
// packages that call it.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInUse is returned when a worktree cannot be removed because the
// calling process's working directory is inside it. Removing a directory
// out from under the caller's shell is the failure mode this whole tool
// exists to prevent, so the check lives at the lowest level.
var ErrInUse = errors.New("worktree is in use by the current process")

// Worktree describes one linked working copy.
type Worktree struct {
	Path        string `json:"path"`
	Branch      string `json:"branch,omitempty"` // empty when detached
	HeadCommit  string `json:"head_commit"`
	BaseBranch  string `json:"base_branch,omitempty"`
	CreatedFrom string `json:"created_from,omitempty"`
}

// Detached reports whether the worktree has no branch checked out.
func (w Worktree) Detached() bool {
	return w.Branch == ""
}

// ListWorktrees returns all worktrees registered in repoPath using a
// single `git worktree list --porcelain` call. The main checkout itself
// is excluded: reaper only manages linked worktrees.
func ListWorktrees(ctx context.Context, repoPath string) ([]Worktree, error) {
	out, err := outputGit(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("list worktrees: %w", err)
	}

	var worktrees []Worktree
	var current Worktree
	flush := func() {
		if current.Path != "" && IsWorktree(current.Path) {
			worktrees = append(worktrees, current)
		}
		current = Worktree{}
	}

	for _, line := range strings.Split(string(out), "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			current.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "HEAD "):
			current.HeadCommit = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch refs/heads/"):
			current.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		}
		// "detached" needs no handling: Branch stays empty.
	}
	flush()

	return worktrees, nil
}

// CreateWorktree creates a new worktree at path with a new branch started
// from baseRef.
func CreateWorktree(ctx context.Context, repoPath, path, branch, baseRef string) error {
	args := []string{"worktree", "add", path, "-b", branch}
	if baseRef != "" {
		args = append(args, baseRef)
	}
	if err := runGit(ctx, repoPath, args...); err != nil {
		return fmt.Errorf("create worktree: %w", err)
	}
	return nil
}

// RemoveWorktree removes the worktree at path, unregistering it and
// deleting the directory. It refuses with ErrInUse when the calling
// process's resolved working directory is at or below path.
func RemoveWorktree(ctx context.Context, repoPath, path string, force bool) error {
	inside, err := CwdWithin(path)
	if err != nil {
		return err
	}
	if inside {
		return fmt.Errorf("%w: %s", ErrInUse, path)
	}

	args := []string{"worktree", "remove", path}
	if force {
		// One --force overrides a dirty tree; git wants a second one for
		// a locked tree ("use 'remove -f -f' to override").
		args = append(args, "--force", "--force")
	}
	if err := runGit(ctx, repoPath, args...); err != nil {
		return fmt.Errorf("remove worktree: %w", err)
	}
	return nil
}

// PruneWorktrees drops stale worktree registrations (directories removed
// outside of git).
func PruneWorktrees(ctx context.Context, repoPath string) error {
	return runGit(ctx, repoPath, "worktree", "prune")
}

// CwdWithin reports whether the process working directory equals path or
// lives underneath it. Both sides are resolved through symlinks so that
// /tmp vs /private/tmp style aliasing cannot defeat the check.
func CwdWithin(path string) (bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return false, fmt.Errorf("get working directory: %w", err)
	}
	resolvedCwd, err := filepath.EvalSymlinks(cwd)
	if err != nil {
		resolvedCwd = cwd
	}
	resolvedPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		// Target may already be gone; a nonexistent path cannot contain
		// the cwd.
		return false, nil
	}
	rel, err := filepath.Rel(resolvedPath, resolvedCwd)
	if err != nil {
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}

// IsWorktree returns true if path is a linked git worktree (not a main
// repo). Worktrees have .git as a file pointing back at the main repo,
// while main repos have .git as a directory.
func IsWorktree(path string) bool {
	info, err := os.Lstat(filepath.Join(path, ".git"))
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// GitDir resolves the worktree's private gitdir
// (<main>/.git/worktrees/<name>) from its .git file.
func GitDir(worktreePath string) (string, error) {
	content, err := os.ReadFile(filepath.Join(worktreePath, ".git"))
	if err != nil {
		return "", fmt.Errorf("read .git file: %w", err)
	}

	line := strings.TrimSpace(string(content))
	if idx := strings.Index(line, "\n"); idx != -1 {
		line = strings.TrimSpace(line[:idx])
	}
	gitdir, ok := strings.CutPrefix(line, "gitdir: ")
	if !ok || gitdir == "" {
		return "", errors.New("invalid .git file format: expected 'gitdir: <path>'")
	}

	if !filepath.IsAbs(gitdir) {
		gitdir = filepath.Join(worktreePath, gitdir)
	}
	return filepath.Clean(gitdir), nil
}

// MainRepoPath resolves the main repository path from a worktree's .git
// file. The gitdir looks like /path/to/repo/.git/worktrees/<name>; the
// repo is the parent of the .git component.
func MainRepoPath(worktreePath string) (string, error) {
	gitdir, err := GitDir(worktreePath)
	if err != nil {
		return "", err
	}

	dir := gitdir
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find main repo path from gitdir: %s", gitdir)
		}
		if filepath.Base(dir) == ".git" {
			return parent, nil
		}
		dir = parent
	}
}

// CurrentRepoPath returns the main repository path containing the process
// working directory, following the .git file when invoked from inside a
// worktree. Returns an error when not in a git repository.
func CurrentRepoPath(ctx context.Context) (string, error) {
	out, err := outputGit(ctx, "", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	toplevel := strings.TrimSpace(string(out))

	if IsWorktree(toplevel) {
		return MainRepoPath(toplevel)
	}
	return toplevel, nil
}

// InsideWorktree reports whether the process working directory is inside
// a linked worktree (as opposed to the main checkout).
func InsideWorktree(ctx context.Context) bool {
	out, err := outputGit(ctx, "", "rev-parse", "--show-toplevel")
	if err != nil {
		return false
	}
	return IsWorktree(strings.TrimSpace(string(out)))
}
