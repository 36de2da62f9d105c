// Package lifecycle orchestrates worktree creation, inspection, and
// teardown. It is the only package the commands call for mutations; the
// leaf packages (git, safety, lockcheck, disposition, bound) carry no
// policy of their own.
package lifecycle

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/config"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/git"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/outcome"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/safety"
)

// Manager ties the worktree subsystems together. One Manager serves one
// invocation against one main checkout.
type Manager struct {
	repoPath string
	cfg      config.Config
	eval     *safety.Evaluator
}

// NewManager creates a Manager for the repository at repoPath, which must
// be the main checkout, not a linked worktree.
func NewManager(repoPath string, cfg config.Config) *Manager {
	return &Manager{
		repoPath: repoPath,
		cfg:      cfg,
		eval:     &safety.Evaluator{BaseBranches: cfg.BaseBranches},
	}
}

// RepoPath returns the main checkout the Manager operates on.
func (m *Manager) RepoPath() string {
	return m.repoPath
}

// WorktreeDir is where new worktrees are created: the configured
// directory, or a sibling of the main checkout named <repo>-worktrees.
func (m *Manager) WorktreeDir() string {
	if m.cfg.WorktreeDir != "" {
		return m.cfg.WorktreeDir
	}
	return filepath.Join(filepath.Dir(m.repoPath), filepath.Base(m.repoPath)+"-worktrees")
}

// Entry is one worktree with its derived state. The flat JSON shape is
// the machine-readable output of list and status.
type Entry struct {
	git.Worktree
	safety.Report

	Ahead          int    `json:"ahead"`
	Behind         int    `json:"behind"`
	LastCommit     string `json:"last_commit,omitempty"`
	LastCommitDate string `json:"last_commit_date,omitempty"`
}

var nonSlugRuns = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases the description and collapses every run of
// non-alphanumeric characters to a single hyphen.
func slugify(s string) string {
	s = nonSlugRuns.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

func inputErrf(remediation []string, format string, args ...any) error {
	return outcome.Failure(outcome.InputError, fmt.Sprintf(format, args...), remediation...).Err()
}
