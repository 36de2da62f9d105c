package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/SpiceLabsHQ/Reaper-sub007/internal/lifecycle"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/output"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/ui"
	"github.com/SpiceLabsHQ/Reaper-sub007/internal/ui/static"
)

func newListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List task worktrees",
		Aliases: []string{"ls"},
		GroupID: GroupInspection,
		Args:    cobra.NoArgs,
		Long: `List every linked worktree of the current repository, sorted by path.

With --verbose each worktree is additionally scanned for uncommitted
changes, unmerged commits, and lock state, which is slower.`,
		Example: `  reaper list
  reaper list --verbose
  reaper list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			m, err := newManager(ctx)
			if err != nil {
				return err
			}

			var progress *ui.Progress
			if verbose && !jsonOutput && isatty.IsTerminal(os.Stdout.Fd()) {
				progress = ui.ShowProgress("Scanning worktrees...")
			}
			entries, err := m.List(ctx, verbose)
			if progress != nil {
				progress.Done()
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return out.JSON(entries)
			}
			if len(entries) == 0 {
				out.Println("No worktrees")
				return nil
			}

			headers, rows := listRows(entries, verbose)
			out.Print(static.RenderTable(headers, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// listRows turns entries into table rows; the verbose form appends the
// scanned state columns.
func listRows(entries []lifecycle.Entry, deep bool) ([]string, [][]string) {
	headers := []string{"PATH", "BRANCH", "HEAD"}
	if deep {
		headers = append(headers, "STATUS", "LAST COMMIT")
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		branch := e.Branch
		if e.Detached() {
			branch = "(detached)"
		}
		row := []string{e.Path, branch, shortHash(e.HeadCommit)}
		if deep {
			row = append(row, statusCell(e), e.LastCommitDate)
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

// statusCell summarizes an entry's safety report in one word where
// possible.
func statusCell(e lifecycle.Entry) string {
	var parts []string
	if e.IsLocked {
		parts = append(parts, "locked")
	}
	if e.HasUncommittedChanges {
		parts = append(parts, "dirty")
	}
	if e.UnmergedCommitCount > 0 {
		parts = append(parts, fmt.Sprintf("%d unmerged", e.UnmergedCommitCount))
	}
	if len(parts) == 0 {
		return "clean"
	}
	return strings.Join(parts, ", ")
}
