// Package lockcheck inspects a worktree for in-progress use: git-level
// lock artifacts and, best effort, other processes holding open file
// handles under the worktree path.
//
// The handle scan is advisory and non-atomic. Two concurrent cleanups of
// the same path can both pass it; it narrows the race window, it does not
// close it. Callers treat its findings as warnings unless configuration
// elevates them.
package lockcheck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/cmd"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/git"
)

// probeTimeout bounds the whole inspection. It runs on every cleanup, so
// it has to stay fast even when lsof crawls a large dependency tree.
const probeTimeout = 3 * time.Second

// Report is the result of inspecting one worktree.
type Report struct {
	// Locked is true when a git operation left lock artifacts: an
	// explicit `git worktree lock`, an in-progress merge or rebase, or a
	// live index.lock.
	Locked bool

	// LockReasons names the artifacts behind Locked.
	LockReasons []string

	// OpenHandleWarnings lists processes with open handles under the
	// path, or a note that handle detection was unavailable. Never
	// blocking on its own.
	OpenHandleWarnings []string
}

// Inspect examines the worktree at path. It never fails: detection
// capabilities that are missing in the current environment degrade to
// warnings in the report.
func Inspect(ctx context.Context, path string) Report {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var r Report
	r.LockReasons = gitLockArtifacts(path)
	r.Locked = len(r.LockReasons) > 0
	r.OpenHandleWarnings = openHandles(ctx, path)
	return r
}

// gitLockArtifacts checks the worktree's private gitdir for markers of an
// operation in flight.
func gitLockArtifacts(path string) []string {
	gitdir, err := git.GitDir(path)
	if err != nil {
		// Not a worktree or already broken; nothing to report here, the
		// safety evaluator catches invalid targets.
		return nil
	}

	var reasons []string
	markers := []struct {
		name   string
		reason string
	}{
		{"locked", "worktree is locked (git worktree lock)"},
		{"MERGE_HEAD", "merge in progress"},
		{"rebase-merge", "rebase in progress"},
		{"rebase-apply", "rebase or am in progress"},
		{"index.lock", "index is locked by another git process"},
	}
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(gitdir, m.name)); err == nil {
			reasons = append(reasons, m.reason)
		}
	}
	return reasons
}

// openHandles enumerates other processes with open files under path via
// lsof. The absence of lsof, or a scan timeout, is reported as a warning
// rather than silently dropped: a degraded check the caller cannot see is
// worse than no check.
func openHandles(ctx context.Context, path string) []string {
	if !cmd.LookPath("lsof") {
		return []string{"open-handle detection unavailable: lsof not found on PATH"}
	}

	out, err := cmd.OutputContext(ctx, "", "lsof", "-F", "pc", "+D", path)
	if err != nil {
		if ctx.Err() != nil {
			return []string{fmt.Sprintf("open-handle scan timed out after %s", probeTimeout)}
		}
		// lsof exits non-zero when nothing holds files under the path.
		return nil
	}

	self := os.Getpid()
	var warnings []string
	var pid int
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}
		switch line[0] {
		case 'p':
			pid, _ = strconv.Atoi(line[1:])
		case 'c':
			if pid != 0 && pid != self {
				warnings = append(warnings, fmt.Sprintf("process %d (%s) has open files under the worktree", pid, line[1:]))
			}
		}
	}
	return warnings
}
