package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/log"
)

func testCtx() context.Context {
	l := log.New(&bytes.Buffer{}, false, false)
	return log.WithLogger(context.Background(), l)
}

// setupTestRepo creates a git repository with one commit on main inside a
// fresh temp dir and returns its path. The temp dir is resolved through
// symlinks so path comparisons in assertions are stable on macOS.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("resolve temp dir: %v", err)
	}
	repoPath := filepath.Join(resolved, "repo")
	if err := os.Mkdir(repoPath, 0755); err != nil {
		t.Fatalf("mkdir repo: %v", err)
	}

	runTestGit(t, repoPath, "init", "-b", "main")
	runTestGit(t, repoPath, "config", "user.email", "test@example.com")
	runTestGit(t, repoPath, "config", "user.name", "Test User")

	if err := os.WriteFile(filepath.Join(repoPath, "README.md"), []byte("# test\n"), 0644); err != nil {
		t.Fatalf("write README: %v", err)
	}
	runTestGit(t, repoPath, "add", ".")
	runTestGit(t, repoPath, "commit", "-m", "initial commit")

	return repoPath
}

// addWorktree creates a worktree with a new branch next to the repo and
// returns its path.
func addWorktree(t *testing.T, repoPath, branch string) string {
	t.Helper()
	wtPath := filepath.Join(filepath.Dir(repoPath), "wt-"+branch)
	runTestGit(t, repoPath, "worktree", "add", wtPath, "-b", branch)
	return wtPath
}

func runTestGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}
