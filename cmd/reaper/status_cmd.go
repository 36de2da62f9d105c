package main

import (
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/log"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/output"
)

func newStatusCmd() *cobra.Command {
	var (
		jsonOutput      bool
		copyToClipboard bool
	)

	cmd := &cobra.Command{
		Use:     "status <path-or-branch>",
		Short:   "Show one worktree's full state",
		GroupID: GroupInspection,
		Args:    cobra.ExactArgs(1),
		Long: `Show the deep state of one worktree: safety report, ahead/behind
counts against its upstream, and the last commit.

The target is a worktree path or branch name; an unambiguous fragment of
either also works.`,
		Example: `  reaper status task/42-fix-login
  reaper status ../myrepo-worktrees/42-fix-login --json
  reaper status 42-fix --copy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			m, err := newManager(ctx)
			if err != nil {
				return err
			}

			entry, err := m.Status(ctx, args[0])
			if err != nil {
				return err
			}

			if copyToClipboard {
				if err := clipboard.WriteAll(entry.Path); err != nil {
					l.Printf("Warning: copy to clipboard: %v\n", err)
				}
			}

			if jsonOutput {
				return out.JSON(entry)
			}

			out.Printf("%s\n", entry.Path)
			branch := entry.Branch
			if entry.Detached() {
				branch = "(detached)"
			}
			out.Printf("  branch:   %s\n", branch)
			if entry.BaseBranch != "" {
				out.Printf("  base:     %s\n", entry.BaseBranch)
			}
			out.Printf("  head:     %s\n", shortHash(entry.HeadCommit))
			out.Printf("  status:   %s\n", statusCell(entry))
			out.Printf("  upstream: %d ahead, %d behind\n", entry.Ahead, entry.Behind)
			if entry.LastCommit != "" {
				out.Printf("  last commit: %s (%s)\n", entry.LastCommit, entry.LastCommitDate)
			}
			for _, warning := range entry.OpenHandleWarnings {
				out.Printf("  warning: %s\n", warning)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Copy the worktree path to the clipboard")

	return cmd
}
