package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestListWorktrees(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()

	wtPath := addWorktree(t, repoPath, "feature-a")

	worktrees, err := ListWorktrees(ctx, repoPath)
	if err != nil {
		t.Fatalf("ListWorktrees failed: %v", err)
	}
	if len(worktrees) != 1 {
		t.Fatalf("got %d worktrees, want 1 (main checkout must be excluded)", len(worktrees))
	}
	wt := worktrees[0]
	if wt.Path != wtPath {
		t.Errorf("Path = %q, want %q", wt.Path, wtPath)
	}
	if wt.Branch != "feature-a" {
		t.Errorf("Branch = %q, want feature-a", wt.Branch)
	}
	if wt.HeadCommit == "" {
		t.Error("HeadCommit is empty")
	}
}

func TestListWorktreesDetached(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()

	wtPath := filepath.Join(filepath.Dir(repoPath), "wt-detached")
	runTestGit(t, repoPath, "worktree", "add", "--detach", wtPath)

	worktrees, err := ListWorktrees(ctx, repoPath)
	if err != nil {
		t.Fatalf("ListWorktrees failed: %v", err)
	}
	if len(worktrees) != 1 {
		t.Fatalf("got %d worktrees, want 1", len(worktrees))
	}
	if !worktrees[0].Detached() {
		t.Errorf("worktree should be detached, got branch %q", worktrees[0].Branch)
	}
}

func TestCreateWorktree(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()

	wtPath := filepath.Join(filepath.Dir(repoPath), "wt-created")
	if err := CreateWorktree(ctx, repoPath, wtPath, "task/t1-feat", "main"); err != nil {
		t.Fatalf("CreateWorktree failed: %v", err)
	}

	if !IsWorktree(wtPath) {
		t.Error("created path is not a worktree")
	}
	branch, err := CurrentBranch(ctx, wtPath)
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if branch != "task/t1-feat" {
		t.Errorf("branch = %q, want task/t1-feat", branch)
	}
}

func TestCreateWorktreeExistingBranch(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()
	runTestGit(t, repoPath, "branch", "taken")

	wtPath := filepath.Join(filepath.Dir(repoPath), "wt-dup")
	if err := CreateWorktree(ctx, repoPath, wtPath, "taken", "main"); err == nil {
		t.Error("CreateWorktree with existing branch = nil, want error")
	}
}

func TestRemoveWorktree(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()
	wtPath := addWorktree(t, repoPath, "to-remove")

	if err := RemoveWorktree(ctx, repoPath, wtPath, false); err != nil {
		t.Fatalf("RemoveWorktree failed: %v", err)
	}
	if _, err := os.Stat(wtPath); !os.IsNotExist(err) {
		t.Error("worktree dir should be removed")
	}
}

func TestRemoveWorktreeDirtyNeedsForce(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()
	wtPath := addWorktree(t, repoPath, "dirty-wt")

	if err := os.WriteFile(filepath.Join(wtPath, "scratch.txt"), []byte("wip"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := RemoveWorktree(ctx, repoPath, wtPath, false); err == nil {
		t.Fatal("RemoveWorktree on dirty worktree without force = nil, want error")
	}
	if err := RemoveWorktree(ctx, repoPath, wtPath, true); err != nil {
		t.Fatalf("RemoveWorktree with force failed: %v", err)
	}
}

func TestRemoveWorktreeLockedNeedsForce(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()
	wtPath := addWorktree(t, repoPath, "locked-wt")
	runTestGit(t, repoPath, "worktree", "lock", wtPath)

	if err := RemoveWorktree(ctx, repoPath, wtPath, false); err == nil {
		t.Fatal("RemoveWorktree on locked worktree without force = nil, want error")
	}
	// git wants 'remove -f -f' for a locked tree; force must cover that.
	if err := RemoveWorktree(ctx, repoPath, wtPath, true); err != nil {
		t.Fatalf("RemoveWorktree with force failed: %v", err)
	}
	if _, err := os.Stat(wtPath); !os.IsNotExist(err) {
		t.Error("worktree dir should be removed")
	}
}

func TestRemoveWorktreeFromInside(t *testing.T) {
	// Changes the process working directory; cannot run in parallel.
	repoPath := setupTestRepo(t)
	ctx := testCtx()
	wtPath := addWorktree(t, repoPath, "cwd-trap")

	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	if err := os.Chdir(wtPath); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	err = RemoveWorktree(ctx, repoPath, wtPath, true)
	if !errors.Is(err, ErrInUse) {
		t.Errorf("RemoveWorktree from inside = %v, want ErrInUse", err)
	}
	if _, statErr := os.Stat(wtPath); statErr != nil {
		t.Error("worktree must be left untouched after ErrInUse")
	}
}

func TestPruneWorktrees(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()
	wtPath := addWorktree(t, repoPath, "prune-me")

	// Simulate removal outside of git.
	if err := os.RemoveAll(wtPath); err != nil {
		t.Fatalf("remove worktree dir: %v", err)
	}

	if err := PruneWorktrees(ctx, repoPath); err != nil {
		t.Fatalf("PruneWorktrees failed: %v", err)
	}

	worktrees, err := ListWorktrees(ctx, repoPath)
	if err != nil {
		t.Fatalf("ListWorktrees failed: %v", err)
	}
	for _, wt := range worktrees {
		if wt.Branch == "prune-me" {
			t.Error("pruned worktree should not appear in list")
		}
	}
}

func TestMainRepoPath(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	wtPath := addWorktree(t, repoPath, "main-path")

	got, err := MainRepoPath(wtPath)
	if err != nil {
		t.Fatalf("MainRepoPath failed: %v", err)
	}
	if got != repoPath {
		t.Errorf("MainRepoPath = %q, want %q", got, repoPath)
	}
}

func TestGitDir(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	wtPath := addWorktree(t, repoPath, "gitdir-check")

	gitdir, err := GitDir(wtPath)
	if err != nil {
		t.Fatalf("GitDir failed: %v", err)
	}
	if filepath.Base(filepath.Dir(gitdir)) != "worktrees" {
		t.Errorf("gitdir %q does not point into .git/worktrees", gitdir)
	}
	if _, err := os.Stat(gitdir); err != nil {
		t.Errorf("gitdir does not exist: %v", err)
	}
}

func TestIsWorktree(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	wtPath := addWorktree(t, repoPath, "is-wt")

	if IsWorktree(repoPath) {
		t.Error("main repo misidentified as worktree")
	}
	if !IsWorktree(wtPath) {
		t.Error("worktree not identified")
	}
	if IsWorktree(filepath.Join(repoPath, "nonexistent")) {
		t.Error("missing path identified as worktree")
	}
}
