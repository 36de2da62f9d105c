package git

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBranchExists(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()

	if !BranchExists(ctx, repoPath, "main") {
		t.Error("BranchExists(main) = false")
	}
	if BranchExists(ctx, repoPath, "ghost") {
		t.Error("BranchExists(ghost) = true")
	}
}

func TestIsDirty(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()

	dirty, err := IsDirty(ctx, repoPath)
	if err != nil {
		t.Fatalf("IsDirty failed: %v", err)
	}
	if dirty {
		t.Error("fresh repo reported dirty")
	}

	if err := os.WriteFile(filepath.Join(repoPath, "wip.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	dirty, err = IsDirty(ctx, repoPath)
	if err != nil {
		t.Fatalf("IsDirty failed: %v", err)
	}
	if !dirty {
		t.Error("repo with untracked file reported clean")
	}
}

func TestResolveBaseBranch(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()
	order := []string{"develop", "main"}

	// No develop branch: falls back to main.
	if got := ResolveBaseBranch(ctx, repoPath, order); got != "main" {
		t.Errorf("ResolveBaseBranch = %q, want main", got)
	}

	// develop exists: takes precedence.
	runTestGit(t, repoPath, "branch", "develop")
	if got := ResolveBaseBranch(ctx, repoPath, order); got != "develop" {
		t.Errorf("ResolveBaseBranch = %q, want develop", got)
	}
}

func TestUnmergedCommitCount(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()
	wtPath := addWorktree(t, repoPath, "counted")

	if got, err := UnmergedCommitCount(ctx, repoPath, "counted", "main"); err != nil || got != 0 {
		t.Errorf("UnmergedCommitCount = %d, %v, want 0, nil", got, err)
	}

	for i, name := range []string{"a.txt", "b.txt"} {
		if err := os.WriteFile(filepath.Join(wtPath, name), []byte{byte(i)}, 0644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		runTestGit(t, wtPath, "add", ".")
		runTestGit(t, wtPath, "commit", "-m", "commit "+name)
	}

	if got, err := UnmergedCommitCount(ctx, repoPath, "counted", "main"); err != nil || got != 2 {
		t.Errorf("UnmergedCommitCount = %d, %v, want 2, nil", got, err)
	}
}

func TestAheadBehindNoUpstream(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()

	ahead, behind, err := AheadBehind(ctx, repoPath)
	if err != nil {
		t.Fatalf("AheadBehind failed: %v", err)
	}
	if ahead != 0 || behind != 0 {
		t.Errorf("AheadBehind without upstream = %d/%d, want 0/0", ahead, behind)
	}
}

func TestLastCommit(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()

	hash, date, err := LastCommit(ctx, repoPath)
	if err != nil {
		t.Fatalf("LastCommit failed: %v", err)
	}
	if hash == "" {
		t.Error("LastCommit hash is empty")
	}
	if date.IsZero() {
		t.Error("LastCommit date is zero")
	}
}

func TestDeleteLocalBranch(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()
	runTestGit(t, repoPath, "branch", "doomed")

	if err := DeleteLocalBranch(ctx, repoPath, "doomed", false); err != nil {
		t.Fatalf("DeleteLocalBranch failed: %v", err)
	}
	if BranchExists(ctx, repoPath, "doomed") {
		t.Error("branch still exists after deletion")
	}
}

func TestDeleteLocalBranchUnmergedNeedsForce(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()
	wtPath := addWorktree(t, repoPath, "unmerged")

	if err := os.WriteFile(filepath.Join(wtPath, "new.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	runTestGit(t, wtPath, "add", ".")
	runTestGit(t, wtPath, "commit", "-m", "unmerged work")
	runTestGit(t, repoPath, "worktree", "remove", "--force", wtPath)

	if err := DeleteLocalBranch(ctx, repoPath, "unmerged", false); err == nil {
		t.Error("deleting unmerged branch without force = nil, want error")
	}
	if err := DeleteLocalBranch(ctx, repoPath, "unmerged", true); err != nil {
		t.Errorf("deleting unmerged branch with force failed: %v", err)
	}
}

func TestCreatedFromRoundTrip(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := testCtx()
	runTestGit(t, repoPath, "branch", "tracked")

	if got := CreatedFrom(ctx, repoPath, "tracked"); got != "" {
		t.Errorf("CreatedFrom before set = %q, want empty", got)
	}
	if err := SetCreatedFrom(ctx, repoPath, "tracked", "develop"); err != nil {
		t.Fatalf("SetCreatedFrom failed: %v", err)
	}
	if got := CreatedFrom(ctx, repoPath, "tracked"); got != "develop" {
		t.Errorf("CreatedFrom = %q, want develop", got)
	}
}
