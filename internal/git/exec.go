package git

import (
	"context"
	"errors"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/cmd"
)

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// runGit executes a git command with context support and verbose logging.
func runGit(ctx context.Context, dir string, args ...string) error {
	return cmd.RunContext(ctx, "", "git", gitArgs(dir, args)...)
}

// outputGit executes a git command with context support and verbose
// logging, returning stdout.
func outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return cmd.OutputContext(ctx, "", "git", gitArgs(dir, args)...)
}

// CheckGit verifies that the git binary is available.
func CheckGit() error {
	if !cmd.LookPath("git") {
		return errors.New("git not found on PATH")
	}
	return nil
}
