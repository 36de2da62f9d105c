package main

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/lifecycle"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/log"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/output"
)

func newCreateCmd() *cobra.Command {
	var (
		baseBranch      string
		noInstall       bool
		copyToClipboard bool
		jsonOutput      bool
	)

	cmd := &cobra.Command{
		Use:     "create <task-id> <description>...",
		Short:   "Create a worktree and branch for a task",
		GroupID: GroupLifecycle,
		Args:    cobra.MinimumNArgs(2),
		Long: `Create an isolated worktree for one task.

The branch (task/<id>-<slug>) and worktree path are derived from the task
ID and description, branching off the first configured base branch that
exists (develop, then main, by default). Detected project dependencies
are installed unless --no-install is given.

Must run from the main checkout, not from inside a worktree.`,
		Example: `  reaper create 42 fix login redirect
  reaper create 42 "fix login redirect" --base-branch release-1.0
  reaper create 42 parser --no-install --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			m, err := newManager(ctx)
			if err != nil {
				return err
			}

			wt, err := m.Create(ctx, args[0], strings.Join(args[1:], " "), lifecycle.CreateOptions{
				BaseBranch: baseBranch,
				NoInstall:  noInstall,
			})
			if err != nil {
				return err
			}

			if copyToClipboard {
				if err := clipboard.WriteAll(wt.Path); err != nil {
					l.Printf("Warning: copy to clipboard: %v\n", err)
				}
			}

			if jsonOutput {
				return out.JSON(wt)
			}
			out.Printf("Created worktree %s\n", wt.Path)
			out.Printf("  branch %s (from %s)\n", wt.Branch, wt.BaseBranch)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseBranch, "base-branch", "", "Branch to create the worktree from (default: first existing of the configured bases)")
	cmd.Flags().BoolVar(&noInstall, "no-install", false, "Skip dependency installation")
	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Copy the new worktree path to the clipboard")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
