package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/disposition"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/lifecycle"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/output"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/ui/prompt"
)

func newCleanupCmd() *cobra.Command {
	var (
		keepBranch     bool
		deleteBranch   string
		force          bool
		dryRun         bool
		timeoutSecs    int
		netTimeoutSecs int
		skipLockCheck  bool
		yes            bool
		jsonOutput     bool
	)

	cmd := &cobra.Command{
		Use:     "cleanup <path-or-branch>",
		Short:   "Remove a worktree and decide its branch's fate",
		Aliases: []string{"rm"},
		GroupID: GroupLifecycle,
		Args:    cobra.ExactArgs(1),
		Long: `Remove a worktree after checking it is safe to do so.

Uncommitted changes or an in-progress git operation block removal unless
--force is given. The branch needs an explicit decision: --keep-branch
preserves it, --delete-branch removes it locally, --delete-branch=remote
also deletes it from origin. Protected branches (develop, main, master by
default) are never deleted, whatever was asked.

Do not run this from inside the worktree being removed: the directory
would be deleted out from under your shell. Relocate first.`,
		Example: `  reaper cleanup 42-fix-login --delete-branch
  reaper cleanup task/7-parser --keep-branch
  reaper cleanup 42-fix-login --delete-branch=remote --yes
  reaper cleanup 42-fix-login --delete-branch --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			intent, err := cleanupIntent(cmd.Flags().Changed("delete-branch"), keepBranch, deleteBranch)
			if err != nil {
				return err
			}

			m, err := newManager(ctx)
			if err != nil {
				return err
			}

			opts := lifecycle.CleanupOptions{
				Intent:         intent,
				Force:          force,
				DryRun:         dryRun,
				SkipLockCheck:  skipLockCheck,
				RemoveTimeout:  time.Duration(timeoutSecs) * time.Second,
				NetworkTimeout: time.Duration(netTimeoutSecs) * time.Second,
			}
			if !yes && !dryRun && isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()) {
				opts.Confirm = func(question string) (bool, error) {
					res, err := prompt.Confirm(question)
					if err != nil {
						return false, err
					}
					return res.Confirmed && !res.Cancelled, nil
				}
			}

			res, err := m.Cleanup(ctx, args[0], opts)
			if err != nil {
				return err
			}

			if jsonOutput {
				return out.JSON(res)
			}

			if res.Aborted {
				out.Println("Aborted, nothing removed")
				return nil
			}
			for _, warning := range res.Warnings {
				out.Printf("Warning: %s\n", warning)
			}
			if res.DryRun {
				for _, step := range res.Plan {
					out.Printf("Would %s\n", step)
				}
				return nil
			}
			out.Printf("Removed worktree %s\n", res.Worktree.Path)
			if res.Worktree.Branch != "" {
				out.Printf("  branch %s: %s\n", res.Worktree.Branch, res.Disposition)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepBranch, "keep-branch", false, "Preserve the branch after removing the worktree")
	cmd.Flags().StringVar(&deleteBranch, "delete-branch", "", "Delete the branch: 'local' or 'remote' (local plus origin)")
	cmd.Flags().Lookup("delete-branch").NoOptDefVal = "local"
	cmd.MarkFlagsMutuallyExclusive("keep-branch", "delete-branch")
	cmd.Flags().BoolVar(&force, "force", false, "Override the dirty-tree and lock blocks")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the plan without executing it")
	cmd.Flags().IntVar(&timeoutSecs, "timeout", 0, "Removal time limit in seconds (default from config, 120)")
	cmd.Flags().IntVar(&netTimeoutSecs, "network-timeout", 0, "Remote deletion time limit in seconds (default from config, 30)")
	cmd.Flags().BoolVar(&skipLockCheck, "skip-lock-check", false, "Skip the lock and open-handle probe")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// cleanupIntent maps the flag pair onto a disposition intent.
func cleanupIntent(deleteSet, keepBranch bool, deleteBranch string) (disposition.Intent, error) {
	switch {
	case keepBranch:
		return disposition.IntentKeep, nil
	case !deleteSet:
		return disposition.IntentNone, nil
	case deleteBranch == "local":
		return disposition.IntentDeleteLocal, nil
	case deleteBranch == "remote":
		return disposition.IntentDeleteLocalAndRemote, nil
	default:
		return disposition.IntentNone, fmt.Errorf("invalid --delete-branch value %q: want 'local' or 'remote'", deleteBranch)
	}
}
